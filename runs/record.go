package runs

import (
	"encoding/json"
	"fmt"

	"github.com/pevans/tempo"
)

// FromScrapeRun builds the history row for a finished scrape run. err is
// the fatal error returned by the pipeline, if any.
func FromScrapeRun(run *tempo.ScrapeRun, err error) (*Run, error) {
	options, marshalErr := json.Marshal(run.Metadata().Options)
	if marshalErr != nil {
		return nil, fmt.Errorf("failed to marshal options: %w", marshalErr)
	}

	record := &Run{
		Kind:         run.Kind,
		Status:       StatusCompleted,
		StartedAt:    run.StartedAt,
		Options:      options,
		PagesScanned: run.PagesScanned,
		PagesFailed:  run.PagesFailed,
		Summaries:    len(run.Summaries),
		Contents:     len(run.Contents),
	}
	if !run.FinishedAt.IsZero() {
		finished := run.FinishedAt
		record.FinishedAt = &finished
	}
	if run.OutputPath != "" {
		path := run.OutputPath
		record.OutputPath = &path
	}

	for _, f := range run.Failures {
		record.Failures = append(record.Failures, FailureDetail{
			Stage: string(f.Stage),
			Page:  f.Page,
			URL:   f.URL,
			Error: f.Err.Error(),
		})
	}

	switch {
	case err != nil:
		record.Status = StatusFailed
		msg := err.Error()
		record.LastError = &msg
	case run.Err() != nil:
		record.Status = StatusPartial
		msg := run.Err().Error()
		record.LastError = &msg
	}

	return record, nil
}
