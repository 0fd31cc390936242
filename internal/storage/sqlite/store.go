package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	sqlitemigrate "github.com/Ellipz/ManaSourceCalc/internal/platform/storage/sqlitemigrate"
	"github.com/Ellipz/ManaSourceCalc/internal/sim"
	"github.com/Ellipz/ManaSourceCalc/internal/storage/sqlite/migrations"
)

// Run kinds.
const (
	KindScenario = "scenario"
	KindAnalysis = "analysis"
)

var ErrNotConfigured = errors.New("storage is not configured")

// Run is one persisted simulation. Scenario runs fill Scenario; analysis
// runs fill Spells and leave the scenario land counts from the deck.
type Run struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
	Label     string            `json:"label,omitempty"`
	Scenario  sim.Scenario      `json:"scenario"`
	Seed      uint64            `json:"seed,omitempty"`
	Result    sim.Result        `json:"result"`
	Spells    []sim.SpellResult `json:"spells,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Store provides SQLite-backed run history.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a run history database and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// RecordRun persists a run, assigning ID and CreatedAt when empty, and
// returns the stored record.
func (s *Store) RecordRun(ctx context.Context, run Run) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	if s == nil || s.sqlDB == nil {
		return Run{}, ErrNotConfigured
	}
	run.Kind = strings.TrimSpace(run.Kind)
	if run.Kind != KindScenario && run.Kind != KindAnalysis {
		return Run{}, fmt.Errorf("unknown run kind %q", run.Kind)
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.Scenario.Mulligan == "" {
		run.Scenario.Mulligan = sim.MulliganBottom
	}

	var spells string
	if len(run.Spells) > 0 {
		b, err := json.Marshal(run.Spells)
		if err != nil {
			return Run{}, fmt.Errorf("encode spells: %w", err)
		}
		spells = string(b)
	}

	sc := run.Scenario
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO runs (
	id, kind, label,
	deck_size, total_lands, colored_sources, turn, colored_needed,
	mulligan, tapped_delay, seed,
	trials, success, color_failure, not_enough_lands,
	spells, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		run.ID, run.Kind, run.Label,
		sc.DeckSize, sc.TotalLands, sc.ColoredSources, sc.Turn, sc.ColoredNeeded,
		string(sc.Mulligan), sc.TappedDelay, int64(run.Seed),
		run.Result.Trials, run.Result.Success, run.Result.ColorFailure, run.Result.InsufficientLands,
		spells, run.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	return run, nil
}

// ListRuns lists runs newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, ErrNotConfigured
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT
	id, kind, label,
	deck_size, total_lands, colored_sources, turn, colored_needed,
	mulligan, tapped_delay, seed,
	trials, success, color_failure, not_enough_lands,
	spells, created_at
FROM runs
ORDER BY created_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		var (
			run       Run
			mulligan  string
			seed      int64
			spells    string
			createdAt int64
		)
		sc := &run.Scenario
		if err := rows.Scan(
			&run.ID, &run.Kind, &run.Label,
			&sc.DeckSize, &sc.TotalLands, &sc.ColoredSources, &sc.Turn, &sc.ColoredNeeded,
			&mulligan, &sc.TappedDelay, &seed,
			&run.Result.Trials, &run.Result.Success, &run.Result.ColorFailure, &run.Result.InsufficientLands,
			&spells, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		sc.Mulligan = sim.MulliganVariant(mulligan)
		sc.Trials = run.Result.Trials
		run.Seed = uint64(seed)
		run.CreatedAt = time.UnixMilli(createdAt).UTC()
		if spells != "" {
			if err := json.Unmarshal([]byte(spells), &run.Spells); err != nil {
				return nil, fmt.Errorf("decode spells for run %s: %w", run.ID, err)
			}
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
