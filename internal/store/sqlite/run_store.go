package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/scanalign/internal/geom"
	"github.com/banshee-data/scanalign/internal/registration"
	"github.com/banshee-data/scanalign/internal/timeutil"
)

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = errors.New("run not found")

// Run is a persisted registration run.
type Run struct {
	RunID         string        `json:"run_id"`
	SourcePath    string        `json:"source_path"`
	MinOverlap    int           `json:"min_overlap"`
	ScannerCount  int           `json:"scanner_count"`
	UniqueBeacons int           `json:"unique_beacons"`
	MaxDistance   int           `json:"max_distance"`
	Sweeps        int           `json:"sweeps"`
	Duration      time.Duration `json:"duration_ns"`
	CreatedAt     int64         `json:"created_at"`
	Scanners      []RunScanner  `json:"scanners,omitempty"`
}

// RunScanner is the stored pose of one scanner in a run.
type RunScanner struct {
	ScannerID     int        `json:"scanner_id"`
	Position      geom.Point `json:"position"`
	RotationIndex int        `json:"rotation_index"`
	ReferenceID   int        `json:"reference_id"`
}

// NewRun builds a Run from a registration result and its summary.
func NewRun(sourcePath string, minOverlap int, res *registration.Result, sum registration.Summary) *Run {
	run := &Run{
		SourcePath:    sourcePath,
		MinOverlap:    minOverlap,
		ScannerCount:  len(sum.Scanners),
		UniqueBeacons: sum.UniqueBeacons,
		MaxDistance:   sum.MaxDistance,
		Sweeps:        sum.Sweeps,
		Duration:      res.Duration,
	}
	for _, p := range sum.Scanners {
		run.Scanners = append(run.Scanners, RunScanner{
			ScannerID:     p.ID,
			Position:      p.Position,
			RotationIndex: p.RotationIndex,
			ReferenceID:   p.ReferenceID,
		})
	}
	return run
}

// RunStore provides persistence for registration runs.
type RunStore struct {
	db    *DB
	clock timeutil.Clock
}

// NewRunStore creates a RunStore using the real clock.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db, clock: timeutil.RealClock{}}
}

// SetClock replaces the clock used for created_at.
func (s *RunStore) SetClock(c timeutil.Clock) {
	s.clock = c
}

// Insert persists a run and its scanner poses in one transaction. If RunID is
// empty, a UUID is generated; CreatedAt defaults to now.
func (s *RunStore) Insert(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = s.clock.Now().UnixNano()
	}

	return retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback()

		_, err = tx.Exec(`
			INSERT INTO registration_runs (
				run_id, source_path, min_overlap, scanner_count,
				unique_beacons, max_distance, sweeps, duration_ns, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.SourcePath, run.MinOverlap, run.ScannerCount,
			run.UniqueBeacons, run.MaxDistance, run.Sweeps, int64(run.Duration), run.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for _, sc := range run.Scanners {
			_, err = tx.Exec(`
				INSERT INTO registration_scanners (
					run_id, scanner_id, x, y, z, rotation_index, reference_id
				) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				run.RunID, sc.ScannerID, sc.Position.X, sc.Position.Y, sc.Position.Z,
				sc.RotationIndex, sc.ReferenceID,
			)
			if err != nil {
				return fmt.Errorf("insert scanner %d: %w", sc.ScannerID, err)
			}
		}
		return tx.Commit()
	})
}

// Get returns a run with its scanner poses.
func (s *RunStore) Get(runID string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT run_id, source_path, min_overlap, scanner_count,
		       unique_beacons, max_distance, sweeps, duration_ns, created_at
		FROM registration_runs
		WHERE run_id = ?`, runID)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT scanner_id, x, y, z, rotation_index, reference_id
		FROM registration_scanners
		WHERE run_id = ?
		ORDER BY scanner_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query scanners: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sc RunScanner
		if err := rows.Scan(&sc.ScannerID, &sc.Position.X, &sc.Position.Y, &sc.Position.Z,
			&sc.RotationIndex, &sc.ReferenceID); err != nil {
			return nil, fmt.Errorf("scan scanner row: %w", err)
		}
		run.Scanners = append(run.Scanners, sc)
	}
	return run, rows.Err()
}

// List returns the most recent runs without scanner poses, newest first.
// A non-positive limit returns every run.
func (s *RunStore) List(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT run_id, source_path, min_overlap, scanner_count,
		       unique_beacons, max_distance, sweeps, duration_ns, created_at
		FROM registration_runs
		ORDER BY created_at DESC, run_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Delete removes a run and, by cascade, its scanner poses.
func (s *RunStore) Delete(runID string) error {
	return retryOnBusy(func() error {
		result, err := s.db.Exec(`DELETE FROM registration_runs WHERE run_id = ?`, runID)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var durationNs int64
	err := row.Scan(
		&r.RunID, &r.SourcePath, &r.MinOverlap, &r.ScannerCount,
		&r.UniqueBeacons, &r.MaxDistance, &r.Sweeps, &durationNs, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Duration = time.Duration(durationNs)
	return &r, nil
}
