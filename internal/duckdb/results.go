package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/riboqc/internal/codon"
	"github.com/inodb/riboqc/internal/issues"
)

// appendRows bulk-loads rows into table using the Appender API.
func (s *Store) appendRows(table string, n int, row func(i int) []driver.Value) error {
	if n == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for i := 0; i < n; i++ {
		if err := appender.AppendRow(row(i)...); err != nil {
			return fmt.Errorf("append %s row: %w", table, err)
		}
	}

	return appender.Flush()
}

// WriteIssues stores the issues of a run, keeping their order.
func (s *Store) WriteIssues(runID int64, list []issues.Issue) error {
	return s.appendRows("issues", len(list), func(i int) []driver.Value {
		is := list[i]
		return []driver.Value{
			runID, int64(i),
			is.Sequence.String(), is.Feature.String(), string(is.Kind), is.Data.String(),
		}
	})
}

// WriteCodons stores the codon table of a run, keeping row order.
func (s *Store) WriteCodons(runID int64, records []codon.Record) error {
	return s.appendRows("codons", len(records), func(i int) []driver.Value {
		r := records[i]
		return []driver.Value{runID, int64(i), r.Gene, int64(r.Pos), r.Codon}
	})
}

// IssueCounts returns the number of issues of each kind recorded for a run.
func (s *Store) IssueCounts(runID int64) (map[issues.Kind]int, error) {
	rows, err := s.db.Query(`SELECT issue_type, count(*)
		FROM issues WHERE run_id=? GROUP BY issue_type`, runID)
	if err != nil {
		return nil, fmt.Errorf("query issue counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[issues.Kind]int)
	for rows.Next() {
		var name string
		var n int64
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan issue count: %w", err)
		}
		kind, err := issues.ParseKind(name)
		if err != nil {
			return nil, err
		}
		counts[kind] = int(n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issue counts: %w", err)
	}
	return counts, nil
}

// LookupIssues returns the issues recorded for a run in their original order.
func (s *Store) LookupIssues(runID int64) ([]issues.Issue, error) {
	rows, err := s.db.Query(`SELECT sequence, feature, issue_type, issue_data
		FROM issues WHERE run_id=? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("query issues: %w", err)
	}
	defer rows.Close()

	var list []issues.Issue
	for rows.Next() {
		var seqCol, featCol, kindCol, dataCol string
		if err := rows.Scan(&seqCol, &featCol, &kindCol, &dataCol); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		kind, err := issues.ParseKind(kindCol)
		if err != nil {
			return nil, err
		}
		data, err := issues.ParseData(kind, dataCol)
		if err != nil {
			return nil, err
		}
		list = append(list, issues.New(issues.ParseRef(seqCol), issues.ParseRef(featCol), kind, data))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issues: %w", err)
	}
	return list, nil
}

// LookupCodons returns the codon table recorded for a run, optionally
// restricted to one gene. An empty gene returns every row.
func (s *Store) LookupCodons(runID int64, gene string) ([]codon.Record, error) {
	query := `SELECT gene, pos, codon FROM codons WHERE run_id=?`
	args := []any{runID}
	if gene != "" {
		query += ` AND gene=?`
		args = append(args, gene)
	}
	query += ` ORDER BY idx`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query codons: %w", err)
	}
	defer rows.Close()

	var records []codon.Record
	for rows.Next() {
		var r codon.Record
		var pos int64
		if err := rows.Scan(&r.Gene, &pos, &r.Codon); err != nil {
			return nil, fmt.Errorf("scan codon: %w", err)
		}
		r.Pos = int(pos)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate codons: %w", err)
	}
	return records, nil
}
