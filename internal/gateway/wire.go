package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
)

type analyzeRequest struct {
	Grammar string `json:"grammar"`
}

type stepRequest struct {
	AnalysisType string `json:"analysisType"`
	StepIndex    int    `json:"stepIndex"`
	Grammar      string `json:"grammar"`
}

type analyzeResponse struct {
	TransformedGrammar string   `json:"transformedGrammar"`
	LL1                bool     `json:"ll1"`
	ProductionRuleList []string `json:"productionRuleList"`
}

// stepResponse keeps the map-valued fields raw so their key order can be
// read back as sent.
type stepResponse struct {
	PartialResult         json.RawMessage `json:"partialResult"`
	CurrentStepDetails    json.RawMessage `json:"currentStepDetails"`
	LL1Table              json.RawMessage `json:"ll1Table"`
	LL1                   *bool           `json:"ll1"`
	LL1Description        string          `json:"ll1Description"`
	ProductionRuleList    []string        `json:"productionRuleList"`
	ProductionRuleNumbers map[string]int  `json:"productionRuleNumbers"`
	PseudoCodeLine        int             `json:"pseudoCodeLine"`
	CurrentStepIndex      int             `json:"currentStepIndex"`
	TotalSteps            *int            `json:"totalSteps"`
}

type errorResponse struct {
	Timestamp json.RawMessage `json:"timestamp"`
	Status    json.RawMessage `json:"status"`
	Errors    *[]string       `json:"errors"`
}

func decodeStep(body []byte) (*analysis.StepResult, error) {
	var wire stepResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, err
	}

	res := &analysis.StepResult{
		LL1Description: wire.LL1Description,
		Rules:          wire.ProductionRuleList,
		RuleNumbers:    wire.ProductionRuleNumbers,
		PseudoCodeLine: wire.PseudoCodeLine,
		StepIndex:      wire.CurrentStepIndex,
	}
	if wire.LL1 != nil {
		res.LL1 = *wire.LL1
	}
	if wire.TotalSteps != nil {
		res.TotalSteps = *wire.TotalSteps
	}
	if res.RuleNumbers == nil {
		res.RuleNumbers = map[string]int{}
	}

	err := eachField(wire.PartialResult, func(key string, raw json.RawMessage) error {
		var symbols []string
		if err := decodeNullable(raw, &symbols); err != nil {
			return fmt.Errorf("partialResult[%q]: %w", key, err)
		}
		res.Partial = append(res.Partial, analysis.Entry{Key: key, Symbols: symbols})
		return nil
	})
	if err != nil {
		return nil, err
	}

	var details []string
	err = eachField(wire.CurrentStepDetails, func(key string, raw json.RawMessage) error {
		var lines []string
		if err := decodeNullable(raw, &lines); err != nil {
			return fmt.Errorf("currentStepDetails[%q]: %w", key, err)
		}
		details = append(details, lines...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Details = strings.Join(details, "\n")

	err = eachField(wire.LL1Table, func(nonTerminal string, raw json.RawMessage) error {
		row := analysis.Row{NonTerminal: nonTerminal}
		err := eachField(raw, func(terminal string, cell json.RawMessage) error {
			var value string
			if err := decodeNullable(cell, &value); err != nil {
				return fmt.Errorf("ll1Table[%q][%q]: %w", nonTerminal, terminal, err)
			}
			row.Cells = append(row.Cells, analysis.ParseCell(terminal, value))
			return nil
		})
		if err != nil {
			return err
		}
		res.Table.Rows = append(res.Table.Rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func decodeNullable(raw json.RawMessage, dst any) error {
	if isNull(raw) {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// eachField walks a JSON object in document order. Absent or null objects
// yield no fields.
func eachField(raw json.RawMessage, fn func(key string, value json.RawMessage) error) error {
	if isNull(raw) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

// decodeRemoteError reports whether body is a structured error payload.
func decodeRemoteError(status int, body []byte) (*RemoteError, bool) {
	var wire errorResponse
	if err := json.Unmarshal(body, &wire); err != nil || wire.Errors == nil {
		return nil, false
	}
	return &RemoteError{Status: status, Errors: *wire.Errors}, true
}
