package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
	"github.com/unkn0wn-root/grammarviz/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalOptions are the flags shared by every command. Set flags override
// the settings file.
type globalOptions struct {
	baseURL      string
	host         string
	analysisType string
	theme        string
	timeout      time.Duration
	insecure     bool
	proxy        string
	http2        bool
	cacheLimit   int
	debug        bool
	logFile      string
	logLevel     string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "grammarviz [grammar-file]",
		Short: "Step through FIRST, FOLLOW, PREDICT and LL(1) analysis of a grammar",
		Long: heredoc.Doc(`
			grammarviz visualizes how the FIRST, FOLLOW and PREDICT sets and the
			LL(1) parsing table of a context-free grammar are computed, one
			algorithm step at a time. The analysis itself runs on a remote
			grammar analysis service.

			Grammars use one production per line, for example:

			  S -> 'a' [B] {'c' | 'd'}
			  B -> 'b' | epsilon

			Passing a grammar file loads it into the editor and reloads it
			whenever the file changes on disk.
		`),
		Example: heredoc.Doc(`
			grammarviz
			grammarviz grammars/expr.txt --type FOLLOW
			grammarviz --host localhost
			grammarviz steps grammars/expr.txt --format yaml
		`),
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runInteractive(cmd, opts, path)
		},
	}

	opts.bind(root.PersistentFlags())
	root.AddCommand(newStepsCmd(opts), newVersionCmd())
	return root
}

func (o *globalOptions) bind(flags *pflag.FlagSet) {
	flags.StringVar(&o.baseURL, "base-url", "", "Analysis service base URL (overrides --host)")
	flags.StringVar(&o.host, "host", "", "Host the service URL is derived from (localhost, *.github.io, or an origin)")
	flags.StringVarP(&o.analysisType, "type", "t", "", "Initial analysis type: FIRST, FOLLOW, PREDICT or LL1")
	flags.StringVar(&o.theme, "theme", "", "Theme key (dark, light or a user theme)")
	flags.DurationVar(&o.timeout, "timeout", 0, "Request timeout")
	flags.BoolVar(&o.insecure, "insecure", false, "Skip TLS certificate verification")
	flags.StringVar(&o.proxy, "proxy", "", "HTTP proxy URL (defaults to the environment proxy)")
	flags.BoolVar(&o.http2, "http2", false, "Force HTTP/2 for the service connection")
	flags.IntVar(&o.cacheLimit, "cache-limit", 0, "Maximum number of cached steps (0 means unbounded)")
	flags.BoolVar(&o.debug, "debug", false, "Log at debug level")
	flags.StringVar(&o.logFile, "log-file", "", "Write logs to this file")
	flags.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn or error")
}

// override applies every flag the user set on top of s.
func (o *globalOptions) override(flags *pflag.FlagSet, s config.Settings) (config.Settings, error) {
	if flags.Changed("base-url") {
		s.BaseURL = o.baseURL
	}
	if flags.Changed("host") {
		s.Host = o.host
	}
	if flags.Changed("type") {
		t, err := analysis.ParseType(o.analysisType)
		if err != nil {
			return s, err
		}
		s.DefaultType = string(t)
	}
	if flags.Changed("theme") {
		s.Theme = strings.ToLower(strings.TrimSpace(o.theme))
	}
	if flags.Changed("timeout") {
		if o.timeout <= 0 {
			return s, fmt.Errorf("--timeout must be positive, got %s", o.timeout)
		}
		s.Timeout = config.Duration(o.timeout)
	}
	if flags.Changed("insecure") {
		s.Insecure = o.insecure
	}
	if flags.Changed("proxy") {
		s.Proxy = o.proxy
	}
	if flags.Changed("http2") {
		s.HTTP2 = o.http2
	}
	if flags.Changed("cache-limit") {
		s.CacheLimit = o.cacheLimit
	}
	if flags.Changed("log-file") {
		s.LogFile = o.logFile
	}
	if flags.Changed("log-level") {
		s.LogLevel = o.logLevel
	}
	return config.Normalise(s), nil
}
