package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/promptsmith/promptsmith/internal/chain"
	"github.com/promptsmith/promptsmith/internal/prompt"
)

// ErrNotFound is returned when a named record does not exist.
var ErrNotFound = errors.New("not found")

// Store provides persistence for templates, scenarios, and run history.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Template is a stored RICCE template.
type Template struct {
	ID        string
	Name      string
	Spec      prompt.Spec
	CreatedAt string
	UpdatedAt string
}

// SaveTemplate inserts or updates the named template.
func (s *Store) SaveTemplate(ctx context.Context, name string, spec prompt.Spec) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `INSERT INTO templates(id, name, role, instruction, context, constraints, evaluation, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			role=excluded.role,
			instruction=excluded.instruction,
			context=excluded.context,
			constraints=excluded.constraints,
			evaluation=excluded.evaluation,
			updated_at=excluded.updated_at`,
		uuid.New().String(), name, spec.Role, spec.Instruction, spec.Context, spec.Constraints, spec.Evaluation, now, now)
	if err != nil {
		return fmt.Errorf("save template %q: %w", name, err)
	}
	return nil
}

// GetTemplate loads the named template.
func (s *Store) GetTemplate(ctx context.Context, name string) (Template, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, role, instruction, context, constraints, evaluation, created_at, updated_at
		FROM templates WHERE name = ?`, name)
	var t Template
	err := row.Scan(&t.ID, &t.Name, &t.Spec.Role, &t.Spec.Instruction, &t.Spec.Context, &t.Spec.Constraints, &t.Spec.Evaluation, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Template{}, fmt.Errorf("template %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return Template{}, fmt.Errorf("get template %q: %w", name, err)
	}
	return t, nil
}

// ListTemplates returns all templates ordered by name.
func (s *Store) ListTemplates(ctx context.Context) ([]Template, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, role, instruction, context, constraints, evaluation, created_at, updated_at
		FROM templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Spec.Role, &t.Spec.Instruction, &t.Spec.Context, &t.Spec.Constraints, &t.Spec.Evaluation, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteTemplate removes the named template.
func (s *Store) DeleteTemplate(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete template %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("template %q: %w", name, ErrNotFound)
	}
	return nil
}

// Scenario is a stored named variable set.
type Scenario struct {
	ID        string
	Name      string
	Vars      prompt.Scope
	CreatedAt string
	UpdatedAt string
}

// SaveScenario inserts or updates the named scenario.
func (s *Store) SaveScenario(ctx context.Context, name string, vars prompt.Scope) error {
	raw, err := json.Marshal(vars)
	if err != nil {
		return fmt.Errorf("encode scenario vars: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `INSERT INTO scenarios(id, name, vars, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET vars=excluded.vars, updated_at=excluded.updated_at`,
		uuid.New().String(), name, string(raw), now, now)
	if err != nil {
		return fmt.Errorf("save scenario %q: %w", name, err)
	}
	return nil
}

// GetScenario loads the named scenario.
func (s *Store) GetScenario(ctx context.Context, name string) (Scenario, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, vars, created_at, updated_at FROM scenarios WHERE name = ?`, name)
	var sc Scenario
	var raw string
	err := row.Scan(&sc.ID, &sc.Name, &raw, &sc.CreatedAt, &sc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Scenario{}, fmt.Errorf("scenario %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return Scenario{}, fmt.Errorf("get scenario %q: %w", name, err)
	}
	if err := json.Unmarshal([]byte(raw), &sc.Vars); err != nil {
		return Scenario{}, fmt.Errorf("decode scenario %q vars: %w", name, err)
	}
	return sc, nil
}

// ListScenarios returns all scenarios ordered by name.
func (s *Store) ListScenarios(ctx context.Context) ([]Scenario, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, vars, created_at, updated_at FROM scenarios ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	var out []Scenario
	for rows.Next() {
		var sc Scenario
		var raw string
		if err := rows.Scan(&sc.ID, &sc.Name, &raw, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &sc.Vars); err != nil {
			return nil, fmt.Errorf("decode scenario %q vars: %w", sc.Name, err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// DeleteScenario removes the named scenario.
func (s *Store) DeleteScenario(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete scenario %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("scenario %q: %w", name, ErrNotFound)
	}
	return nil
}

// RunRecord is a recorded chain run.
type RunRecord struct {
	RunID       string
	ChainName   string
	StartedAt   string
	Duration    time.Duration
	Status      string
	FailedStage string
}

// StageRecord is the recorded outcome of one stage.
type StageRecord struct {
	StageIndex int
	Name       string
	Status     string
	Output     string
}

// RecordRun persists a finished chain run and its per-stage outcomes.
func (s *Store) RecordRun(ctx context.Context, res chain.RunResult) (string, error) {
	runID := uuid.New().String()
	status := "failed"
	if res.Success() {
		status = "completed"
	}
	startedAt := time.Now().UTC().Add(-res.Duration).Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return "", fmt.Errorf("begin record run: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO runs(run_id, chain_name, started_at, duration_ms, status, failed_stage)
		VALUES(?, ?, ?, ?, ?, ?)`,
		runID, res.Chain, startedAt, res.Duration.Milliseconds(), status, res.FailedStage); err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("insert run: %w", err)
	}
	for i, st := range res.Stages {
		if _, err := tx.ExecContext(ctx, `INSERT INTO run_stages(run_id, stage_index, name, status, output)
			VALUES(?, ?, ?, ?, ?)`,
			runID, i+1, st.Name, string(st.Status), st.Output); err != nil {
			_ = tx.Rollback()
			return "", fmt.Errorf("insert run stage %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit record run: %w", err)
	}
	return runID, nil
}

// ListRuns returns up to limit most recent runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, chain_name, started_at, duration_ms, status, failed_stage
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var ms int64
		if err := rows.Scan(&r.RunID, &r.ChainName, &r.StartedAt, &ms, &r.Status, &r.FailedStage); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun loads one run and its stage outcomes.
func (s *Store) GetRun(ctx context.Context, runID string) (RunRecord, []StageRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT run_id, chain_name, started_at, duration_ms, status, failed_stage
		FROM runs WHERE run_id = ?`, runID)
	var r RunRecord
	var ms int64
	err := row.Scan(&r.RunID, &r.ChainName, &r.StartedAt, &ms, &r.Status, &r.FailedStage)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, nil, fmt.Errorf("run %q: %w", runID, ErrNotFound)
	}
	if err != nil {
		return RunRecord{}, nil, fmt.Errorf("get run %q: %w", runID, err)
	}
	r.Duration = time.Duration(ms) * time.Millisecond

	rows, err := s.db.QueryContext(ctx, `SELECT stage_index, name, status, output
		FROM run_stages WHERE run_id = ? ORDER BY stage_index`, runID)
	if err != nil {
		return RunRecord{}, nil, fmt.Errorf("get run stages: %w", err)
	}
	defer rows.Close()

	var stages []StageRecord
	for rows.Next() {
		var st StageRecord
		if err := rows.Scan(&st.StageIndex, &st.Name, &st.Status, &st.Output); err != nil {
			return RunRecord{}, nil, fmt.Errorf("scan run stage: %w", err)
		}
		stages = append(stages, st)
	}
	return r, stages, rows.Err()
}
