package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrRunNotFound is returned when a run ID is not in the database.
var ErrRunNotFound = errors.New("run not found")

// FileFingerprint records which input file a run read.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile fingerprints an on-disk input file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Run is one recorded invocation of a riboqc command.
type Run struct {
	ID        int64
	Command   string
	FASTA     FileFingerprint
	GFF       FileFingerprint
	CreatedAt time.Time
}

// BeginRun records a new run and returns its ID.
func (s *Store) BeginRun(command string, fasta, gff FileFingerprint) (int64, error) {
	var id int64
	err := s.db.QueryRow(`INSERT INTO runs
		(run_id, command, fasta_path, fasta_size, fasta_modtime, gff_path, gff_size, gff_modtime, created_at)
		VALUES (nextval('run_id_seq'), ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING run_id`,
		command,
		fasta.Path, fasta.Size, fasta.ModTime.UTC(),
		gff.Path, gff.Size, gff.ModTime.UTC(),
		time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// LookupRun returns the run with the given ID.
func (s *Store) LookupRun(runID int64) (Run, error) {
	r := Run{ID: runID}
	err := s.db.QueryRow(`SELECT
		command, fasta_path, fasta_size, fasta_modtime, gff_path, gff_size, gff_modtime, created_at
		FROM runs WHERE run_id=?`, runID).Scan(
		&r.Command,
		&r.FASTA.Path, &r.FASTA.Size, &r.FASTA.ModTime,
		&r.GFF.Path, &r.GFF.Size, &r.GFF.ModTime,
		&r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}
	if err != nil {
		return Run{}, fmt.Errorf("query run: %w", err)
	}
	return r, nil
}

// Runs returns every recorded run, oldest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(`SELECT
		run_id, command, fasta_path, fasta_size, fasta_modtime, gff_path, gff_size, gff_modtime, created_at
		FROM runs ORDER BY run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID, &r.Command,
			&r.FASTA.Path, &r.FASTA.Size, &r.FASTA.ModTime,
			&r.GFF.Path, &r.GFF.Size, &r.GFF.ModTime,
			&r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
