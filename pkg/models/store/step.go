package store

import "time"

// StepRecord is one step-count observation from an export file. Start is the
// wall-clock time of the record stored as UTC.
type StepRecord struct {
	Start   time.Time
	Steps   float64
	Missing bool
}

type DailyStepSummary struct {
	Date       time.Time
	TotalSteps float64
	Records    int
}
