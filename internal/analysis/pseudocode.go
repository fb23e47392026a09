package analysis

// HighlightIndex converts the service's 1-based pseudo-code line into the
// zero-based index of the highlighted line. Lines below 1 highlight the first.
func HighlightIndex(line int) int {
	return max(1, line) - 1
}

var pseudoCode = map[Type][]string{
	TypeFirst: {
		"1.  if α = ε ⇒ FIRST(α) = { ε }",
		"2.  if α = aβ, a ∈ T ∧ β ∈ (N ∪ T)* ⇒ FIRST(α) = { a }",
		"3.  if α = Aβ, A ∈ N ∧ β ∈ (N ∪ T)* ⇒",
		"4.      FSTA ← ∅",
		"5.      for each A → γ ∈ P do",
		"6.          if A is not a prefix of γ then",
		"7.              FSTA ← FSTA ∪ FIRST(γ)",
		"8.          end if",
		"9.      end for",
		"10.     if ε ∈ FSTA then",
		"11.         FSTA ← (FSTA ∖ { ε }) ∪ FIRST(β)",
		"12.     end if",
		"13.     return FSTA",
		"14. end if",
		"15. FIRST sets stabilized",
	},
	TypeFollow: {
		"1.  FLW(A) ← ∅",
		"2.  if A = S then",
		"3.      FLW(A) ← { $ }",
		"4.  end if",
		"5.  for each B → αAβ ∈ P, α, β ∈ (N ∪ T)* do",
		"6.      FLW(A) ← FLW(A) ∪ (FIRST(β) ∖ { ε })",
		"7.      if ε ∈ FIRST(β) then",
		"8.          FLW(A) ← FLW(A) ∪ FOLLOW(B)",
		"9.      end if",
		"10. end for",
		"11. return FLW(A)",
	},
	TypePredict: {
		"1.  compute FIRST(α)",
		"2.  if ε ∈ FIRST(α), remove ε and add FOLLOW(A)",
		"3.  otherwise PREDICT(A → α) = FIRST(α)",
		"4.  done",
	},
}

// PseudoCode returns the listing displayed next to a stepping analysis.
// LL(1) has no listing.
func PseudoCode(t Type) []string {
	lines := pseudoCode[t]
	out := make([]string, len(lines))
	copy(out, lines)
	return out
}
