package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/codecov/cli/internal/api"
)

func TestReportResultsOutcome(t *testing.T) {
	logger = zap.NewNop()

	finished := api.ReportResults{State: api.StateFinished, Result: json.RawMessage(`{"state":"pass"}`)}
	assert.NoError(t, reportResultsOutcome(finished, true))

	failed := api.ReportResults{State: api.StateError}
	assert.Error(t, reportResultsOutcome(failed, false))

	pending := api.ReportResults{State: api.StatePending}
	assert.NoError(t, reportResultsOutcome(pending, false),
		"running out of poll attempts is not a failure")
}
