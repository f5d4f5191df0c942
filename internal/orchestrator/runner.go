package orchestrator

import (
	"context"

	"github.com/brennhill/calibrator/internal/artifacts"
	"github.com/brennhill/calibrator/internal/browser"
	"github.com/brennhill/calibrator/internal/coreerr"
	"github.com/brennhill/calibrator/internal/interactor"
	"github.com/brennhill/calibrator/internal/locator"
	"github.com/brennhill/calibrator/internal/logging"
	"github.com/brennhill/calibrator/internal/retry"
)

// RunProfile implements runner mode: iterate groups then services then
// dimensions, calling nav once per service and, for each dimension, the
// locator and interactor wrapped in a single withRetry call. A navigation
// failure is fatal and aborts the run, returning the partial RunResult
// built from the groups completed so far plus the services of the current
// group that finished before the failure.
func RunProfile(ctx context.Context, d browser.Driver, nav NavigateFunc, loader CatalogLoader, profile Profile, layout artifacts.Layout, runID string, log logging.Logger) (RunResult, error) {
	return RunProfileMode(ctx, d, nav, loader, profile, layout, runID, log, false)
}

// RunProfileMode is RunProfile with an explicit dry-run switch: each
// dimension is still located and retried on the same schedule as a real
// run, so an unreachable control is still reported as failed/skipped, but
// a located control is never filled.
func RunProfileMode(ctx context.Context, d browser.Driver, nav NavigateFunc, loader CatalogLoader, profile Profile, layout artifacts.Layout, runID string, log logging.Logger, dryRun bool) (RunResult, error) {
	var groupResults []GroupResult

	for _, g := range profile.Groups {
		var serviceResults []ServiceResult

		for _, svc := range g.Services {
			entry, _ := loader.GetServiceByName(svc.Name)

			if err := nav(ctx, g.Name, svc.Name); err != nil {
				groupResults = append(groupResults, BuildGroupResult(g.Name, serviceResults))
				return BuildRunResult(runID, groupResults), err
			}

			dimResults := fillService(ctx, d, entry, g.Name, svc, layout, runID, log, dryRun)
			serviceResults = append(serviceResults, BuildServiceResult(svc.Name, dimResults))
		}

		groupResults = append(groupResults, BuildGroupResult(g.Name, serviceResults))
	}

	return BuildRunResult(runID, groupResults), nil
}

func fillService(ctx context.Context, d browser.Driver, entry ServiceCatalogEntry, groupName string, svc ProfileService, layout artifacts.Layout, runID string, log logging.Logger, dryRun bool) []DimensionResult {
	results := make([]DimensionResult, 0, len(svc.Dimensions))

	for _, dv := range svc.Dimensions {
		catDim, known := entry.Dimensions[dv.Key]
		required := dv.Required
		primaryCSS := ""
		if known {
			required = catDim.Required
			primaryCSS = catDim.CSSSelector
		}

		stepSlug := artifacts.Slugify(dv.Key)
		var screenshotPath string

		shot := func(ctx context.Context, dimensionKey string) error {
			dir := layout.ScreenshotDir(entry.ServiceID)
			path := layout.FailureScreenshotPath(dir, runID, artifacts.Slugify(groupName), artifacts.Slugify(svc.Name), stepSlug, logging.Now())
			if err := d.Screenshot(ctx, path); err != nil {
				return err
			}
			screenshotPath = path
			return nil
		}

		logf := func(dimensionKey string, fields map[string]any) {
			merged := map[string]any{"dimension": dimensionKey, "service": svc.Name}
			for k, v := range fields {
				merged[k] = v
			}
			log.Warn("locator_not_found", merged)
		}

		step := func(ctx context.Context) (struct{}, error) {
			res, lerr := locator.FindElement(ctx, d, dv.Key, locator.Options{PrimaryCSS: primaryCSS, Required: required, Context: svc.Name}, shot, logf)
			if lerr != nil {
				return struct{}{}, lerr
			}
			if dryRun {
				return struct{}{}, nil
			}
			return struct{}{}, interactor.Fill(ctx, d, res.Element, res.FieldType, dv.Value)
		}
		retryOpts := retry.Options{
			StepName: "fill:" + dv.Key,
			Optional: !required,
			Emit: func(event string, fields map[string]any) {
				merged := map[string]any{"dimension": dv.Key, "service": svc.Name}
				for k, v := range fields {
					merged[k] = v
				}
				if event == "retry_exhausted" {
					log.Error(event, merged)
				} else {
					log.Warn(event, merged)
				}
			},
		}

		_, err := retry.WithRetry(ctx, step, retryOpts)

		results = append(results, dimensionResultFrom(dv.Key, err, screenshotPath))
	}

	return results
}

func dimensionResultFrom(key string, err error, screenshotPath string) DimensionResult {
	if err == nil {
		return DimensionResult{Key: key, Status: DimensionFilled}
	}
	status := DimensionFailed
	if coreerr.KindOf(err) == coreerr.KindRetrySkipped {
		status = DimensionSkipped
	}
	return DimensionResult{Key: key, Status: status, ErrorDetail: err.Error(), ScreenshotPath: screenshotPath}
}
