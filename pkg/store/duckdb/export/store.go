package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/activity-atlas/pkg/models/store"
	"github.com/de-tools/activity-atlas/pkg/store/duckdb"
)

// StepCountType is the record type of step counts in health exports.
const StepCountType = "HKQuantityTypeIdentifierStepCount"

// Store holds the step records of one export file.
type Store interface {
	Add(ctx context.Context, records []store.StepRecord) error
	ImportCSV(ctx context.Context, path string) (int64, error)
	RecordsOn(ctx context.Context, date time.Time) ([]store.StepRecord, error)
	DailySummary(ctx context.Context, date time.Time) (store.DailyStepSummary, error)
	Count(ctx context.Context) (int64, error)
}

type exportStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &exportStore{db: db}, nil
}

func (s *exportStore) Add(ctx context.Context, records []store.StepRecord) error {
	if len(records) == 0 {
		return nil
	}

	stmt, err := duckdb.Conn(ctx, s.db).PrepareContext(ctx,
		`INSERT INTO step_records (start_time, steps) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		var steps sql.NullFloat64
		if !record.Missing {
			steps = sql.NullFloat64{Float64: record.Steps, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, record.Start, steps); err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}
	return nil
}

// ImportCSV loads the step-count rows of a tabular export. Timestamps keep
// their wall-clock part; any trailing UTC offset is dropped.
func (s *exportStore) ImportCSV(ctx context.Context, path string) (int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO step_records (start_time, steps)
		SELECT TRY_CAST(left("startDate", 19) AS TIMESTAMP), TRY_CAST("value" AS DOUBLE)
		FROM read_csv_auto('%s', header = true, all_varchar = true)
		WHERE "type" = '%s' AND TRY_CAST(left("startDate", 19) AS TIMESTAMP) IS NOT NULL
	`, quoteLiteral(path), StepCountType)

	res, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("import csv %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("import csv %s: %w", path, err)
	}
	return n, nil
}

func (s *exportStore) RecordsOn(ctx context.Context, date time.Time) ([]store.StepRecord, error) {
	from, to := dayBounds(date)
	rows, err := s.db.QueryContext(ctx, `
		SELECT start_time, steps
		FROM step_records
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query step records: %w", err)
	}
	defer rows.Close()

	records := make([]store.StepRecord, 0)
	for rows.Next() {
		var (
			start time.Time
			steps sql.NullFloat64
		)
		if err := rows.Scan(&start, &steps); err != nil {
			return nil, err
		}
		records = append(records, store.StepRecord{
			Start:   start,
			Steps:   steps.Float64,
			Missing: !steps.Valid,
		})
	}
	return records, rows.Err()
}

func (s *exportStore) DailySummary(ctx context.Context, date time.Time) (store.DailyStepSummary, error) {
	from, to := dayBounds(date)
	summary := store.DailyStepSummary{Date: from}

	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(steps), 0), COUNT(*)
		FROM step_records
		WHERE start_time >= ? AND start_time < ?
	`, from, to).Scan(&summary.TotalSteps, &summary.Records)
	if err != nil {
		return store.DailyStepSummary{}, fmt.Errorf("daily summary: %w", err)
	}
	return summary, nil
}

func (s *exportStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM step_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count step records: %w", err)
	}
	return n, nil
}

func dayBounds(date time.Time) (time.Time, time.Time) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}

func quoteLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
