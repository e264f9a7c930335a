package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/okian/freethrow/internal/domain/model"
	"github.com/okian/freethrow/pkg/logger"
	"github.com/okian/freethrow/pkg/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	participant_id TEXT NOT NULL,
	spread TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS trial_summaries (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	trial_number INTEGER NOT NULL,
	trial_id TEXT NOT NULL,
	participant_id TEXT NOT NULL,
	outcome TEXT NOT NULL,
	frames INTEGER NOT NULL,
	PRIMARY KEY (run_id, trial_number)
);

CREATE TABLE IF NOT EXISTS joint_summaries (
	run_id TEXT NOT NULL,
	trial_number INTEGER NOT NULL,
	metric TEXT NOT NULL,
	joint TEXT NOT NULL,
	count INTEGER NOT NULL,
	mean REAL,
	spread REAL,
	max REAL,
	PRIMARY KEY (run_id, trial_number, metric, joint),
	FOREIGN KEY (run_id, trial_number) REFERENCES trial_summaries(run_id, trial_number) ON DELETE CASCADE
);
`

// Metric names stored in joint_summaries.metric.
const (
	metricDeviation        = "deviation"
	metricShoulderDistance = "shoulder_distance"
)

// SQLiteStore persists runs in a SQLite database. Missing statistics are
// stored as NULL.
type SQLiteStore struct {
	db            *sql.DB
	logger        logger.Logger
	busyTimeoutMs int
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a private in-memory database.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		busyTimeoutMs: 5000,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("sqlite")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)", path, s.busyTimeoutMs)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", ErrStore, err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping database: %w", ErrStore, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: apply schema: %w", ErrStore, err)
	}

	s.db = db
	s.logger.Info(ctx, "sqlite store opened", logger.String("path", path))
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, run Run) error {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrStore, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, participant_id, spread, created_at) VALUES (?, ?, ?, ?)`,
		run.ID.String(), run.ParticipantID, run.Spread, run.CreatedAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("%w: insert run: %w", ErrStore, err)
	}

	for i := range run.Summaries {
		ts := &run.Summaries[i]
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO trial_summaries (run_id, trial_number, trial_id, participant_id, outcome, frames)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID.String(), ts.Number, ts.TrialID, ts.ParticipantID, string(ts.Outcome), ts.Frames,
		); err != nil {
			return fmt.Errorf("%w: insert trial %s: %w", ErrStore, ts.TrialID, err)
		}
		if err := insertJointSummaries(ctx, tx, run.ID, ts.Number, metricDeviation, ts.Deviation); err != nil {
			return err
		}
		if err := insertJointSummaries(ctx, tx, run.ID, ts.Number, metricShoulderDistance, ts.ShoulderDistance); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrStore, err)
	}

	metrics.RecordStoreSave(float64(time.Since(start).Microseconds()) / 1000)
	s.logger.Debug(ctx, "run saved",
		logger.String("run_id", run.ID.String()),
		logger.Int("trials", len(run.Summaries)),
	)
	return nil
}

func insertJointSummaries(ctx context.Context, tx *sql.Tx, runID uuid.UUID, number int, metric string, byJoint map[model.Joint]model.Summary) error {
	for _, j := range model.Joints() {
		sum, ok := byJoint[j]
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO joint_summaries (run_id, trial_number, metric, joint, count, mean, spread, max)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID.String(), number, metric, string(j), sum.Count,
			toNull(sum.Mean), toNull(sum.Spread), toNull(sum.Max),
		); err != nil {
			return fmt.Errorf("%w: insert %s summary: %w", ErrStore, metric, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Latest(ctx context.Context) (Run, error) {
	run, err := s.latestRun(ctx)
	if err != nil {
		return Run{}, err
	}
	run.Summaries, err = s.summaries(ctx, run.ID, "")
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

func (s *SQLiteStore) Trials(ctx context.Context) ([]model.TrialSummary, error) {
	run, err := s.latestRun(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.summaries(ctx, run.ID, "")
}

func (s *SQLiteStore) Trial(ctx context.Context, trialID string) (model.TrialSummary, error) {
	run, err := s.latestRun(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.TrialSummary{}, fmt.Errorf("%w: trial %s", ErrNotFound, trialID)
		}
		return model.TrialSummary{}, err
	}
	out, err := s.summaries(ctx, run.ID, trialID)
	if err != nil {
		return model.TrialSummary{}, err
	}
	if len(out) == 0 {
		return model.TrialSummary{}, fmt.Errorf("%w: trial %s", ErrNotFound, trialID)
	}
	return out[0], nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM trial_summaries
		WHERE run_id = (SELECT id FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1)
	`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count trials: %w", ErrStore, err)
	}
	return n, nil
}

func (s *SQLiteStore) latestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, participant_id, spread, created_at
		FROM runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`)

	var run Run
	var id string
	var createdAt int64
	if err := row.Scan(&id, &run.ParticipantID, &run.Spread, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, fmt.Errorf("%w: no run saved", ErrNotFound)
		}
		return Run{}, fmt.Errorf("%w: scan run: %w", ErrStore, err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Run{}, fmt.Errorf("%w: run id %q: %w", ErrStore, id, err)
	}
	run.ID = parsed
	run.CreatedAt = time.Unix(0, createdAt).UTC()
	return run, nil
}

// summaries loads the trial summaries of a run, restricted to trialID when non-empty.
func (s *SQLiteStore) summaries(ctx context.Context, runID uuid.UUID, trialID string) ([]model.TrialSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT trial_number, trial_id, participant_id, outcome, frames
		FROM trial_summaries
		WHERE run_id = ? AND (? = '' OR trial_id = ?)
		ORDER BY trial_number ASC
	`, runID.String(), trialID, trialID)
	if err != nil {
		return nil, fmt.Errorf("%w: query trials: %w", ErrStore, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.TrialSummary
	byNumber := make(map[int]int)
	for rows.Next() {
		var ts model.TrialSummary
		var outcome string
		if err := rows.Scan(&ts.Number, &ts.TrialID, &ts.ParticipantID, &outcome, &ts.Frames); err != nil {
			return nil, fmt.Errorf("%w: scan trial: %w", ErrStore, err)
		}
		ts.Outcome = model.Outcome(outcome)
		ts.Deviation = make(map[model.Joint]model.Summary, len(model.Joints()))
		ts.ShoulderDistance = make(map[model.Joint]model.Summary, len(model.Joints()))
		byNumber[ts.Number] = len(out)
		out = append(out, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate trials: %w", ErrStore, err)
	}
	if len(out) == 0 {
		return out, nil
	}

	jrows, err := s.db.QueryContext(ctx, `
		SELECT trial_number, metric, joint, count, mean, spread, max
		FROM joint_summaries
		WHERE run_id = ?
	`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: query joint summaries: %w", ErrStore, err)
	}
	defer func() { _ = jrows.Close() }()

	for jrows.Next() {
		var number int
		var metric, joint string
		var sum model.Summary
		var mean, spread, maxv sql.NullFloat64
		if err := jrows.Scan(&number, &metric, &joint, &sum.Count, &mean, &spread, &maxv); err != nil {
			return nil, fmt.Errorf("%w: scan joint summary: %w", ErrStore, err)
		}
		i, ok := byNumber[number]
		if !ok {
			continue
		}
		sum.Mean, sum.Spread, sum.Max = fromNull(mean), fromNull(spread), fromNull(maxv)
		switch metric {
		case metricDeviation:
			out[i].Deviation[model.Joint(joint)] = sum
		case metricShoulderDistance:
			out[i].ShoulderDistance[model.Joint(joint)] = sum
		}
	}
	if err := jrows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate joint summaries: %w", ErrStore, err)
	}
	return out, nil
}

func toNull(v model.Value) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v.V, Valid: v.Valid}
}

func fromNull(n sql.NullFloat64) model.Value {
	if !n.Valid {
		return model.None()
	}
	return model.Some(n.Float64)
}
