package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
	"github.com/unkn0wn-root/grammarviz/internal/errdef"
	"github.com/unkn0wn-root/grammarviz/internal/telemetry"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultAPIPrefix = "/api"

	analyzePath = "/grammar/analyze"
	stepPath    = "/grammar/step"

	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 16 << 20
)

type Options struct {
	BaseURL            string
	APIPrefix          string
	Timeout            time.Duration
	InsecureSkipVerify bool
	ProxyURL           string
	HTTP2              bool
}

type Client struct {
	opts        Options
	endpoint    string
	httpFactory func(Options) (*http.Client, error)
	http        *http.Client
	tracer      telemetry.Tracer
	log         *zap.Logger
	now         func() time.Time
}

// NewClient validates opts and builds the underlying HTTP client.
func NewClient(opts Options) (*Client, error) {
	c := &Client{
		tracer: telemetry.Noop(),
		log:    zap.NewNop(),
		now:    time.Now,
	}
	c.httpFactory = c.buildHTTPClient
	if err := c.configure(opts); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) configure(opts Options) error {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return errdef.New(errdef.CodeConfig, "analysis service base url is empty")
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = DefaultAPIPrefix
	}
	prefix := "/" + strings.Trim(opts.APIPrefix, "/")
	if prefix == "/" || strings.HasSuffix(base, prefix) {
		prefix = ""
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	client, err := c.httpFactory(opts)
	if err != nil {
		return err
	}
	c.opts = opts
	c.endpoint = base + prefix
	c.http = client
	return nil
}

// SetHTTPFactory allows callers to override how the http.Client is created.
// Passing nil restores the default factory.
func (c *Client) SetHTTPFactory(factory func(Options) (*http.Client, error)) error {
	if factory == nil {
		factory = c.buildHTTPClient
	}
	c.httpFactory = factory
	return c.configure(c.opts)
}

// SetTracer sets where call spans go. Passing nil disables tracing.
func (c *Client) SetTracer(t telemetry.Tracer) {
	if t == nil {
		t = telemetry.Noop()
	}
	c.tracer = t
}

func (c *Client) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	c.log = log
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) Analyze(ctx context.Context, grammar string) (AnalyzeResult, error) {
	var wire analyzeResponse
	err := c.post(ctx, analyzePath, analyzeRequest{Grammar: grammar}, telemetry.Call{
		Operation:    "analyze",
		GrammarBytes: len(grammar),
	}, func(body []byte) (int, error) {
		if err := json.Unmarshal(body, &wire); err != nil {
			return 0, errdef.Wrap(errdef.CodeParse, err, "decode analyze response")
		}
		return 0, nil
	})
	if err != nil {
		return AnalyzeResult{}, err
	}
	return AnalyzeResult{
		TransformedGrammar: wire.TransformedGrammar,
		LL1:                wire.LL1,
		Rules:              wire.ProductionRuleList,
	}, nil
}

func (c *Client) FetchStep(
	ctx context.Context,
	t analysis.Type,
	grammar string,
	index int,
) (*analysis.StepResult, error) {
	if !t.Valid() {
		return nil, errdef.New(errdef.CodeConfig, "unknown analysis type %q", string(t))
	}
	var res *analysis.StepResult
	err := c.post(ctx, stepPath, stepRequest{
		AnalysisType: string(t),
		StepIndex:    index,
		Grammar:      grammar,
	}, telemetry.Call{
		Operation:    "step",
		AnalysisType: string(t),
		StepIndex:    index,
		GrammarBytes: len(grammar),
	}, func(body []byte) (int, error) {
		decoded, err := decodeStep(body)
		if err != nil {
			return 0, errdef.Wrap(errdef.CodeParse, err, "decode step response")
		}
		res = decoded
		return decoded.TotalSteps, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// post sends payload and hands a 2xx body to decode, which reports the
// step count for the span. decode runs inside the request span so decode
// failures are recorded against the call.
func (c *Client) post(
	ctx context.Context,
	path string,
	payload any,
	info telemetry.Call,
	decode func([]byte) (int, error),
) (err error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return errdef.Wrap(errdef.CodeParse, err, "encode %s request", info.Operation)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(raw))
	if err != nil {
		return errdef.Wrap(errdef.CodeHTTP, err, "build %s request", info.Operation)
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, reqID)

	info.Method = req.Method
	info.URL = req.URL
	info.RequestID = reqID
	spanCtx, span := c.tracer.StartCall(req.Context(), info)
	req = req.WithContext(spanCtx)

	var (
		status int
		total  int
	)
	start := c.now()
	defer func() {
		elapsed := c.now().Sub(start)
		span.End(telemetry.Outcome{
			Err:        err,
			StatusCode: status,
			TotalSteps: total,
			Elapsed:    elapsed,
		})
		fields := []zap.Field{
			zap.String("op", info.Operation),
			zap.String("request_id", reqID),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
		}
		if info.AnalysisType != "" {
			fields = append(fields,
				zap.String("type", info.AnalysisType),
				zap.Int("step", info.StepIndex),
			)
		}
		if err != nil {
			c.log.Debug("analysis request failed", append(fields, zap.Error(err))...)
			return
		}
		c.log.Debug("analysis request", fields...)
	}()

	resp, err := c.http.Do(req)
	if err != nil {
		return errdef.Wrap(errdef.CodeHTTP, err, "perform %s request", info.Operation)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return errdef.Wrap(errdef.CodeHTTP, err, "read %s response", info.Operation)
	}

	if status < 200 || status > 299 {
		if remote, ok := decodeRemoteError(status, body); ok {
			return remote
		}
		return errdef.New(
			errdef.CodeHTTP,
			"%s request failed: %s",
			info.Operation,
			http.StatusText(status),
		)
	}

	total, err = decode(body)
	return err
}
