package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
	"github.com/unkn0wn-root/grammarviz/internal/errdef"
	"github.com/unkn0wn-root/grammarviz/internal/telemetry"
)

const stepBody = `{
  "partialResult": {"S": ["a", "b"], "A": ["c", "epsilon"], "B": null},
  "currentStepDetails": {"S": ["Processing S -> 'a' A"], "A": ["Add c", "Add epsilon"]},
  "ll1Table": {
    "S": {"a": "S -> 'a' A", "$": "", "b": "S -> 'b' B"},
    "A": {"c": "A -> 'c', A -> epsilon", "$": "A -> epsilon"}
  },
  "ll1": false,
  "ll1Description": "conflict at A/c",
  "productionRuleList": ["S -> 'a' A", "S -> 'b' B", "A -> 'c'", "A -> epsilon"],
  "productionRuleNumbers": {"S -> 'a' A": 1, "S -> 'b' B": 2, "A -> 'c'": 3, "A -> epsilon": 4},
  "pseudoCodeLine": 4,
  "currentStepIndex": 2,
  "totalSteps": 9
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{BaseURL: srv.URL})
	require.NoError(t, err)
	c.SetLogger(zaptest.NewLogger(t))
	return c
}

func TestFetchStepDecodesOrderedResponse(t *testing.T) {
	var got stepRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/grammar/step" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing request id header")
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, stepBody)
	})

	res, err := c.FetchStep(context.Background(), analysis.TypeFirst, "S -> a", 2)
	require.NoError(t, err)
	require.Equal(t, stepRequest{AnalysisType: "FIRST", StepIndex: 2, Grammar: "S -> a"}, got)

	wantPartial := []analysis.Entry{
		{Key: "S", Symbols: []string{"a", "b"}},
		{Key: "A", Symbols: []string{"c", "epsilon"}},
		{Key: "B"},
	}
	if diff := cmp.Diff(wantPartial, res.Partial); diff != "" {
		t.Fatalf("partial result mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "Processing S -> 'a' A\nAdd c\nAdd epsilon", res.Details)
	require.Equal(t, 2, res.StepIndex)
	require.Equal(t, 9, res.TotalSteps)
	require.Equal(t, 4, res.PseudoCodeLine)
	require.False(t, res.LL1)
	require.Equal(t, "conflict at A/c", res.LL1Description)
	require.Len(t, res.Rules, 4)
	require.Equal(t, 3, res.RuleNumbers["A -> 'c'"])

	require.Len(t, res.Table.Rows, 2)
	require.Equal(t, []string{"a", "b", "c", "$"}, res.Table.Terminals())
	cell := res.Table.Lookup("A", "c")
	require.True(t, cell.Conflict())
	require.Equal(t, []string{"A -> 'c'", "A -> epsilon"}, cell.Rules)
	require.True(t, res.Table.Lookup("S", "$").Empty())
}

func TestFetchStepDefaultsMissingFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"currentStepIndex": 0}`)
	})
	res, err := c.FetchStep(context.Background(), analysis.TypeLL1, "S -> a", 0)
	require.NoError(t, err)
	require.Empty(t, res.Partial)
	require.Empty(t, res.Details)
	require.True(t, res.Table.Empty())
	require.NotNil(t, res.RuleNumbers)
	require.Equal(t, 0, analysis.HighlightIndex(res.PseudoCodeLine))
}

func TestAnalyzeReturnsTransformedGrammar(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/grammar/analyze" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req analyzeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Grammar != "S -> [a]" {
			t.Errorf("unexpected grammar %q", req.Grammar)
		}
		_, _ = io.WriteString(w, `{"transformedGrammar": "S -> _opt1\n_opt1 -> a | epsilon", "ll1": true}`)
	})
	res, err := c.Analyze(context.Background(), "S -> [a]")
	require.NoError(t, err)
	require.Equal(t, "S -> _opt1\n_opt1 -> a | epsilon", res.TransformedGrammar)
	require.True(t, res.LL1)
}

func TestRemoteErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"timestamp":"2024-05-01T10:00:00","status":"BAD_REQUEST",`+
			`"errors":["Invalid syntax: each rule must contain '->'. Rule: S A"]}`)
	})
	_, err := c.Analyze(context.Background(), "S A")
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, http.StatusBadRequest, remote.Status)
	require.Equal(t, []string{"Invalid syntax: each rule must contain '->'. Rule: S A"}, remote.Errors)
}

func TestUnstructuredFailureIsTransport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})
	_, err := c.FetchStep(context.Background(), analysis.TypeFirst, "S -> a", 0)
	require.Error(t, err)
	var remote *RemoteError
	require.False(t, errors.As(err, &remote))
	require.Equal(t, errdef.CodeHTTP, errdef.CodeOf(err))
}

func TestMalformedBodyIsParseError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"partialResult": [1, 2]}`)
	})
	_, err := c.FetchStep(context.Background(), analysis.TypeFirst, "S -> a", 0)
	require.Equal(t, errdef.CodeParse, errdef.CodeOf(err))
}

func TestCancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, stepBody)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.FetchStep(ctx, analysis.TypeFirst, "S -> a", 0)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFetchStepRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer, err := telemetry.New(telemetry.Config{ServiceName: "grammarviz-test"},
		telemetry.WithSpanProcessor(recorder))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, stepBody)
	})
	c.SetTracer(tracer)
	_, err = c.FetchStep(context.Background(), analysis.TypeFollow, "S -> a", 2)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "grammar.step", spans[0].Name())
}

func TestNewClientEndpoint(t *testing.T) {
	cases := []struct {
		opts Options
		want string
	}{
		{Options{BaseURL: "http://localhost:8080"}, "http://localhost:8080/api"},
		{Options{BaseURL: "http://localhost:8080/"}, "http://localhost:8080/api"},
		{Options{BaseURL: "http://localhost:8080/api"}, "http://localhost:8080/api"},
		{Options{BaseURL: "https://svc.example", APIPrefix: "/"}, "https://svc.example"},
		{Options{BaseURL: "https://svc.example", APIPrefix: "v2"}, "https://svc.example/v2"},
	}
	for _, tc := range cases {
		c, err := NewClient(tc.opts)
		require.NoError(t, err)
		require.Equal(t, tc.want, c.Endpoint())
	}
	_, err := NewClient(Options{})
	require.Equal(t, errdef.CodeConfig, errdef.CodeOf(err))
}

func TestProxyURL(t *testing.T) {
	c, err := NewClient(Options{BaseURL: "http://localhost:8080", ProxyURL: "http://proxy.internal:3128"})
	require.NoError(t, err)
	tr, ok := c.http.Transport.(*http.Transport)
	require.True(t, ok)
	req, err := http.NewRequest(http.MethodPost, c.Endpoint()+stepPath, nil)
	require.NoError(t, err)
	proxied, err := tr.Proxy(req)
	require.NoError(t, err)
	require.Equal(t, "proxy.internal:3128", proxied.Host)

	_, err = NewClient(Options{BaseURL: "http://localhost:8080", ProxyURL: "not a url"})
	require.Equal(t, errdef.CodeConfig, errdef.CodeOf(err))
}

func TestResolveBaseURL(t *testing.T) {
	cases := []struct {
		origin string
		want   string
	}{
		{"http://localhost:3000", "http://localhost:8080"},
		{"127.0.0.1", "http://127.0.0.1:8080"},
		{"https://someone.github.io/grammar", ProductionURL},
		{"https://grammar.example.org:8443/app", "https://grammar.example.org:8443"},
		{"grammar.example.org", "http://grammar.example.org"},
	}
	for _, tc := range cases {
		got, err := ResolveBaseURL(tc.origin)
		if err != nil {
			t.Fatalf("ResolveBaseURL(%q): %v", tc.origin, err)
		}
		if got != tc.want {
			t.Fatalf("ResolveBaseURL(%q) = %q, want %q", tc.origin, got, tc.want)
		}
	}
	if _, err := ResolveBaseURL("  "); err == nil {
		t.Fatalf("expected error for empty origin")
	}
}
