package cli

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	redeemscan "github.com/klppl/digg-invite-brutforce/backend/scanner/redeem"
	"github.com/klppl/digg-invite-brutforce/backend/state"
	"github.com/klppl/digg-invite-brutforce/backend/verdict"
)

func TestWriteSummary(t *testing.T) {
	found := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	s := &redeemscan.Summary{
		Elapsed:   90 * time.Second,
		Total:     100,
		Completed: 60,
		Tested:    60,
		LogPath:   "results/valid_codes_20260304_050600.txt",
		Accepted: []state.Record{
			{Token: "abcxyz", Verdict: verdict.Accepted, FoundAt: found},
			{Token: "qqqqqq", Verdict: verdict.AcceptedLowConfidence, FoundAt: found},
		},
		Workers: []redeemscan.WorkerReport{
			{ID: 1, State: redeemscan.StateStopped, Assigned: 50, Tested: 50},
			{ID: 2, State: redeemscan.StateStopped, Assigned: 50, Tested: 10, Orphaned: 40, Err: errors.New("browser crashed")},
		},
		Interrupted: true,
	}

	var out bytes.Buffer
	writeSummary(&out, s)
	text := out.String()

	require.Contains(t, text, "Summary (interrupted):")
	require.Contains(t, text, "Time elapsed: 90.00 seconds")
	require.Contains(t, text, "Total codes tested: 60")
	require.Contains(t, text, "Valid codes found: 2 (1 confirmed, 1 unconfirmed)")
	require.Contains(t, text, "Results saved to: results/valid_codes_20260304_050600.txt")
	require.Contains(t, text, "40 tokens left untested")
	require.Contains(t, text, "worker 2: browser crashed")
	require.Contains(t, text, "abcxyz (accepted, 2026-03-04 05:06:07)")
	require.Contains(t, text, "qqqqqq (low-confidence, 2026-03-04 05:06:07)")
}

func TestWriteSummaryNothingFound(t *testing.T) {
	var out bytes.Buffer
	writeSummary(&out, &redeemscan.Summary{Total: 5, Completed: 5, Tested: 5})
	text := out.String()

	require.Contains(t, text, "Summary:")
	require.Contains(t, text, "Valid codes found: 0")
	require.NotContains(t, text, "Results saved to")
	require.NotContains(t, text, "Worker failures")
}
