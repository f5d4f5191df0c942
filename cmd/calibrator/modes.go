package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/brennhill/calibrator/internal/artifacts"
	"github.com/brennhill/calibrator/internal/browser/playwrightdriver"
	"github.com/brennhill/calibrator/internal/catalog"
	"github.com/brennhill/calibrator/internal/config"
	"github.com/brennhill/calibrator/internal/coreerr"
	"github.com/brennhill/calibrator/internal/logging"
	"github.com/brennhill/calibrator/internal/orchestrator"
	"github.com/brennhill/calibrator/internal/runid"
)

// loadProfile reads and applies --set overrides to the profile YAML at path.
func loadProfile(path string, sets []string) (orchestrator.Profile, error) {
	if path == "" {
		return orchestrator.Profile{}, fmt.Errorf("--profile is required for this mode")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return orchestrator.Profile{}, fmt.Errorf("reading profile %s: %w", path, err)
	}
	var profile orchestrator.Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return orchestrator.Profile{}, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	for _, set := range sets {
		group, service, dim, value, err := parseSet(set)
		if err != nil {
			return orchestrator.Profile{}, err
		}
		orchestrator.ApplyOverride(&profile, group, service, dim, value)
	}
	return profile, nil
}

// parseSet splits "<group>.<service>.<dimension>=<value>".
func parseSet(set string) (group, service, dim, value string, err error) {
	eq := strings.SplitN(set, "=", 2)
	if len(eq) != 2 {
		return "", "", "", "", fmt.Errorf("--set %q: expected <group>.<service>.<dimension>=<value>", set)
	}
	path := strings.SplitN(eq[0], ".", 3)
	if len(path) != 3 {
		return "", "", "", "", fmt.Errorf("--set %q: expected <group>.<service>.<dimension>=<value>", set)
	}
	return path[0], path[1], path[2], eq[1], nil
}

// profileServiceIDs collects every distinct service name in a profile, the
// FileCatalogLoader's unit of loading.
func profileServiceIDs(profile orchestrator.Profile) []string {
	var ids []string
	seen := map[string]bool{}
	for _, g := range profile.Groups {
		for _, svc := range g.Services {
			if seen[svc.Name] {
				continue
			}
			seen[svc.Name] = true
			ids = append(ids, svc.Name)
		}
	}
	return ids
}

// runBuild validates a profile document. The interactive builder itself
// (layout engine, YAML preview, prompts) stays external — this mode only
// exercises the parse/override path the other modes share, and reports a
// summary.
func runBuild(opts *rootOptions) error {
	profile, err := loadProfile(opts.profilePath, opts.sets)
	if err != nil {
		return fail(exitPreflightFailure, err)
	}
	services := 0
	dimensions := 0
	for _, g := range profile.Groups {
		services += len(g.Services)
		for _, svc := range g.Services {
			dimensions += len(svc.Dimensions)
		}
	}
	fmt.Printf("profile ok: %d groups, %d services, %d dimensions\n", len(profile.Groups), services, dimensions)
	return nil
}

func runProfileMode(ctx context.Context, opts *rootOptions, log logging.Logger, dryRun bool) error {
	profile, err := loadProfile(opts.profilePath, opts.sets)
	if err != nil {
		return fail(exitPreflightFailure, err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fail(exitPreflightFailure, err)
	}
	layout := artifacts.Layout{ProjectRoot: cwd}

	loader := &orchestrator.FileCatalogLoader{Layout: layout}
	if err := loader.Load(profileServiceIDs(profile)); err != nil {
		return fail(exitPreflightFailure, err)
	}

	driver, err := playwrightdriver.Launch(opts.headless)
	if err != nil {
		return fail(exitBrowserLaunch, err)
	}
	defer driver.Close()

	nav := orchestrator.DriverNavigator{Driver: driver}
	runID := runid.New(logging.Now())

	run, err := orchestrator.RunProfileMode(ctx, driver, nav.NavigateFunc(loader), loader, profile, layout, runID, log, dryRun)
	if err != nil {
		if ctx.Err() != nil {
			return fail(exitInterrupted, err)
		}
		if coreerr.KindOf(err) == coreerr.KindBrowserCrash {
			return fail(exitBrowserLaunch, err)
		}
		return fail(exitPreflightFailure, err)
	}

	if err := writeJSON(layout.RunResultPath(runID), run); err != nil {
		return fail(exitArtifactWrite, err)
	}

	fmt.Printf("run %s: %s (%d filled, %d skipped, %d failed)\n", runID, run.Status, run.Metrics.Filled, run.Metrics.Skipped, run.Metrics.Failed)
	if code := exitCodeForRun(run.Status); code != exitSuccess {
		return fail(code, fmt.Errorf("run finished with status %s", run.Status))
	}
	return nil
}

func runExploreMode(ctx context.Context, opts *rootOptions, log logging.Logger) error {
	if opts.serviceID == "" {
		return fail(exitPreflightFailure, fmt.Errorf("--service is required for --explore"))
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fail(exitPreflightFailure, err)
	}
	layout := artifacts.Layout{ProjectRoot: cwd}

	cfg, err := config.Load("")
	if err != nil {
		return fail(exitPreflightFailure, err)
	}

	driver, err := playwrightdriver.Launch(opts.headless)
	if err != nil {
		return fail(exitBrowserLaunch, err)
	}
	defer driver.Close()

	nav := orchestrator.DriverNavigator{Driver: driver}
	draft, err := orchestrator.RunExplorer(ctx, driver, nav, cfg, orchestrator.ExploreInput{
		ServiceID: opts.serviceID,
		UIMapping: catalog.UIMapping{CardTitle: opts.serviceID},
	}, layout, log)
	if err != nil {
		if ctx.Err() != nil {
			return fail(exitInterrupted, err)
		}
		if coreerr.KindOf(err) == coreerr.KindArtifactWrite {
			return fail(exitArtifactWrite, err)
		}
		return fail(exitPreflightFailure, err)
	}

	fmt.Printf("explored %s: %d sections, review at %s\n", draft.ServiceID, len(draft.Sections), layout.ReviewNotesPath(draft.ServiceID))
	return nil
}

func runPromoteMode(ctx context.Context, opts *rootOptions) error {
	if opts.serviceID == "" {
		return fail(exitPreflightFailure, fmt.Errorf("--service is required for --promote"))
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fail(exitPreflightFailure, err)
	}
	layout := artifacts.Layout{ProjectRoot: cwd}

	data, err := os.ReadFile(layout.DraftPath(opts.serviceID))
	if err != nil {
		return fail(exitPreflightFailure, fmt.Errorf("reading draft for %s: %w", opts.serviceID, err))
	}
	var draft catalog.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return fail(exitPreflightFailure, fmt.Errorf("parsing draft for %s: %w", opts.serviceID, err))
	}

	promoter := orchestrator.FilePromoter{Layout: layout}
	if err := promoter.Promote(ctx, opts.serviceID, draft); err != nil {
		return fail(exitArtifactWrite, err)
	}

	fmt.Printf("promoted %s to %s\n", opts.serviceID, layout.ValidatedCatalogPath(opts.serviceID))
	return nil
}

// writeJSON is the same indented-JSON-plus-mkdir helper orchestrator's
// internal writers use; duplicated at this boundary since it is the only
// artifact write the CLI itself (not the orchestrator) is responsible for.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
