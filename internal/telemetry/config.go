package telemetry

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const DefaultServiceName = "grammarviz"

const (
	envEndpoint    = "GRAMMARVIZ_OTEL_ENDPOINT"
	envInsecure    = "GRAMMARVIZ_OTEL_INSECURE"
	envService     = "GRAMMARVIZ_OTEL_SERVICE"
	envDialTimeout = "GRAMMARVIZ_OTEL_DIAL_TIMEOUT"
	envHeaders     = "GRAMMARVIZ_OTEL_HEADERS"
	envSampleRatio = "GRAMMARVIZ_OTEL_SAMPLE_RATIO"
)

// Config controls span export. Tracing stays off until Endpoint is set.
// SampleRatio of zero means every call is sampled.
type Config struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
	Version     string
	DialTimeout time.Duration
	Headers     map[string]string
	SampleRatio float64
}

func (c Config) Enabled() bool { return c.Endpoint != "" }

func (c Config) sampleRatio() float64 {
	if c.SampleRatio <= 0 || c.SampleRatio > 1 {
		return 1
	}
	return c.SampleRatio
}

// ConfigFromEnv reads the GRAMMARVIZ_OTEL_* variables through getenv
// (os.Getenv when nil). Malformed values are skipped and reported together
// in the returned error; the Config is usable either way.
func ConfigFromEnv(getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg := Config{
		Endpoint:    get(envEndpoint),
		ServiceName: get(envService),
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}

	var errs []error
	bad := func(key, raw string, err error) {
		errs = append(errs, fmt.Errorf("%s=%q: %w", key, raw, err))
	}
	if raw := get(envInsecure); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			bad(envInsecure, raw, err)
		}
		cfg.Insecure = v
	}
	if raw := get(envDialTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		switch {
		case err != nil:
			bad(envDialTimeout, raw, err)
		case d <= 0:
			bad(envDialTimeout, raw, errors.New("must be positive"))
		default:
			cfg.DialTimeout = d
		}
	}
	if raw := get(envSampleRatio); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		switch {
		case err != nil:
			bad(envSampleRatio, raw, err)
		case r <= 0 || r > 1:
			bad(envSampleRatio, raw, errors.New("must be in (0, 1]"))
		default:
			cfg.SampleRatio = r
		}
	}
	headers, err := ParseHeaders(get(envHeaders))
	if err != nil {
		bad(envHeaders, get(envHeaders), err)
	}
	cfg.Headers = headers
	return cfg, errors.Join(errs...)
}

// ParseHeaders parses a comma separated "key=value" list. Values may be
// empty; keys may not.
func ParseHeaders(raw string) (map[string]string, error) {
	var out map[string]string
	for _, pair := range strings.Split(raw, ",") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		key, val, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("header %q is not key=value", strings.TrimSpace(pair))
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[key] = strings.TrimSpace(val)
	}
	return out, nil
}
