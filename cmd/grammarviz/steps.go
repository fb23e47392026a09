package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/grammarviz/internal/analysis"
	"github.com/unkn0wn-root/grammarviz/internal/errclass"
	"github.com/unkn0wn-root/grammarviz/internal/input"
	"github.com/unkn0wn-root/grammarviz/internal/report"
)

type stepsOptions struct {
	format   string
	types    []string
	maxSteps int
}

func newStepsCmd(global *globalOptions) *cobra.Command {
	opts := &stepsOptions{}
	cmd := &cobra.Command{
		Use:   "steps <grammar-file|->",
		Short: "Walk every analysis step without the UI and print a report",
		Long: heredoc.Doc(`
			Submits the grammar, walks every step of each requested analysis
			type from the first step to the result, and prints what each step
			showed. The LL(1) type contributes its parsing table.

			Use "-" to read the grammar from standard input.
		`),
		Example: heredoc.Doc(`
			grammarviz steps grammar.txt
			grammarviz steps grammar.txt --type FIRST --type FOLLOW --format json
			cat grammar.txt | grammarviz steps - --format yaml
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSteps(cmd, global, opts, args[0])
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.format, "format", "o", string(report.FormatText), "Output format: text, json or yaml")
	flags.StringSliceVar(&opts.types, "types", nil, "Analysis types to walk, in order (default all)")
	flags.IntVar(&opts.maxSteps, "max-steps", report.DefaultMaxSteps, "Stop walking a type after this many steps")
	return cmd
}

func runSteps(cmd *cobra.Command, global *globalOptions, opts *stepsOptions, path string) error {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	types, err := parseTypes(opts.types)
	if err != nil {
		return err
	}
	grammar, err := readGrammar(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	grammar = input.Normalize(grammar)

	a, err := newApp(cmd, global, appOptions{stderrLogs: true})
	if err != nil {
		return err
	}
	defer a.close()

	rep, err := report.Collect(cmd.Context(), a.controller(0), grammar, report.Options{
		Types:    types,
		MaxSteps: opts.maxSteps,
	})
	if err != nil {
		a.log.Debug("walk stopped", zap.Error(err))
		if len(rep.Sections) == 0 {
			return describeFailure(err)
		}
	}
	if werr := report.Write(cmd.OutOrStdout(), rep, format); werr != nil {
		return werr
	}
	if err != nil {
		return describeFailure(err)
	}
	return nil
}

func parseTypes(raw []string) ([]analysis.Type, error) {
	var out []analysis.Type
	seen := make(map[analysis.Type]bool)
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			t, err := analysis.ParseType(part)
			if err != nil {
				return nil, err
			}
			if seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out, nil
}

// describeFailure flattens a classified failure into the lines shown in
// the editor.
func describeFailure(err error) error {
	var f *errclass.Failure
	if errors.As(err, &f) {
		return fmt.Errorf("analysis failed (%s):\n  %s", f.Category, strings.Join(f.Lines(), "\n  "))
	}
	return err
}
