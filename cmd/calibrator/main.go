// Command calibrator is a thin CLI shell: it parses flags, wires the
// concrete collaborators (driver, navigator, catalog loader, promoter),
// and delegates immediately to internal/orchestrator. Dispatch shape
// (parse → build args → call → format → exit code) built on cobra.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/brennhill/calibrator/internal/logging"
)

func main() {
	os.Exit(run())
}

type rootOptions struct {
	build, runMode, dryRun, explore, promote bool
	profilePath                              string
	headless                                 bool
	sets                                      []string
	serviceID                                 string
}

// run builds and executes the root command, separated from main for
// testability.
func run() int {
	opts := &rootOptions{}
	log := logging.New(os.Stderr, "calibrator")

	cmd := &cobra.Command{
		Use:           "calibrator",
		Short:         "Automates configuration of an online pricing calculator.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := resolveMode(opts)
			if err != nil {
				return fail(exitPreflightFailure, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			switch mode {
			case modeBuild:
				return runBuild(opts)
			case modeRun:
				return runProfileMode(ctx, opts, log, false)
			case modeDryRun:
				return runProfileMode(ctx, opts, log, true)
			case modeExplore:
				return runExploreMode(ctx, opts, log)
			case modePromote:
				return runPromoteMode(ctx, opts)
			default:
				return fail(exitPreflightFailure, fmt.Errorf("no mode flag given: one of --build|--run|--dry-run|--explore|--promote is required"))
			}
		},
	}

	cmd.Flags().BoolVar(&opts.build, "build", false, "validate a profile for the interactive builder (builder UI itself is an external collaborator)")
	cmd.Flags().BoolVar(&opts.runMode, "run", false, "fill a profile against the live calculator")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "locate every dimension in a profile without filling it")
	cmd.Flags().BoolVar(&opts.explore, "explore", false, "discover a service's dimensions via state-graph exploration")
	cmd.Flags().BoolVar(&opts.promote, "promote", false, "promote a service's draft catalog to the validated catalog path")
	cmd.Flags().StringVar(&opts.profilePath, "profile", "", "path to a profile YAML document (--run, --dry-run, --build)")
	cmd.Flags().BoolVar(&opts.headless, "headless", true, "launch the browser headless")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, `override "<group>.<service>.<dimension>=<value>" (repeatable)`)
	cmd.Flags().StringVar(&opts.serviceID, "service", "", "service id (--explore, --promote)")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if me, ok := err.(*modeError); ok {
			return me.code
		}
		return exitPreflightFailure
	}
	return exitSuccess
}

type mode int

const (
	modeNone mode = iota
	modeBuild
	modeRun
	modeDryRun
	modeExplore
	modePromote
)

// resolveMode enforces that exactly one mode flag was given.
func resolveMode(opts *rootOptions) (mode, error) {
	candidates := []struct {
		m  mode
		on bool
	}{
		{modeBuild, opts.build},
		{modeRun, opts.runMode},
		{modeDryRun, opts.dryRun},
		{modeExplore, opts.explore},
		{modePromote, opts.promote},
	}
	chosen := modeNone
	count := 0
	for _, c := range candidates {
		if c.on {
			chosen = c.m
			count++
		}
	}
	if count != 1 {
		return modeNone, fmt.Errorf("exactly one of --build|--run|--dry-run|--explore|--promote is required, got %d", count)
	}
	return chosen, nil
}
