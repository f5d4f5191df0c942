package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildServiceResult_FailedDimensionForcesFailedStatus(t *testing.T) {
	t.Parallel()
	svc := BuildServiceResult("ec2", []DimensionResult{
		{Key: "a", Status: DimensionFilled},
		{Key: "b", Status: DimensionFailed},
		{Key: "c", Status: DimensionSkipped},
	})
	assert.Equal(t, StatusFailed, svc.Status)
	assert.Equal(t, Metrics{Filled: 1, Skipped: 1, Failed: 1}, svc.Metrics)
}

func TestBuildServiceResult_SkippedWithoutFailureIsPartialSuccess(t *testing.T) {
	t.Parallel()
	svc := BuildServiceResult("ec2", []DimensionResult{
		{Key: "a", Status: DimensionFilled},
		{Key: "b", Status: DimensionSkipped},
	})
	assert.Equal(t, StatusPartialSuccess, svc.Status)
}

func TestBuildServiceResult_AllFilledIsSuccess(t *testing.T) {
	t.Parallel()
	svc := BuildServiceResult("ec2", []DimensionResult{{Key: "a", Status: DimensionFilled}})
	assert.Equal(t, StatusSuccess, svc.Status)
}

func TestBuildGroupResult_WorstOfItsServices(t *testing.T) {
	t.Parallel()
	group := BuildGroupResult("compute", []ServiceResult{
		{Name: "ec2", Status: StatusSuccess},
		{Name: "lambda", Status: StatusPartialSuccess},
	})
	assert.Equal(t, StatusPartialSuccess, group.Status)
}

func TestBuildRunResult_PartialThenOneFailureMakesRunFailed(t *testing.T) {
	t.Parallel()
	run := BuildRunResult("run_20260731_000000", []GroupResult{
		{Name: "compute", Status: StatusSuccess},
		{Name: "storage", Status: StatusPartialSuccess},
	})
	assert.Equal(t, StatusPartialSuccess, run.Status)

	run2 := BuildRunResult("run_20260731_000000", []GroupResult{
		{Name: "compute", Status: StatusSuccess},
		{Name: "storage", Status: StatusPartialSuccess},
		{Name: "network", Status: StatusFailed},
	})
	assert.Equal(t, StatusFailed, run2.Status)
}

func TestRunResult_FailedServiceNamesSortedAndQualified(t *testing.T) {
	t.Parallel()
	run := BuildRunResult("run_x", []GroupResult{
		{Name: "compute", Services: []ServiceResult{
			{Name: "lambda", Status: StatusFailed},
			{Name: "ec2", Status: StatusSuccess},
		}, Status: StatusFailed},
		{Name: "storage", Services: []ServiceResult{
			{Name: "ebs", Status: StatusFailed},
		}, Status: StatusFailed},
	})
	require.Equal(t, []string{"compute/lambda", "storage/ebs"}, run.FailedServiceNames())
}
