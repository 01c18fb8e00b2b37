// Package archive provides the optional Postgres sink that mirrors accepted
// readings into a relational table, one batch per completed minute window.
// The day files remain the durable record; this is reporting convenience.
package archive

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/volttrace/volttrace/internal/domain"
	"github.com/volttrace/volttrace/internal/ports"
)

type PostgresArchive struct {
	db    *sql.DB
	table string
}

func NewPostgresArchive(db *sql.DB, table string) *PostgresArchive {
	if table == "" {
		table = "readings"
	}
	return &PostgresArchive{db: db, table: table}
}

func (a *PostgresArchive) Name() string { return "postgres" }

func (a *PostgresArchive) WriteBatch(readings []domain.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(a.table)
	b.WriteString(" (taken_at, current_amps, voltage_volts) VALUES ")

	args := make([]any, 0, len(readings)*3)
	for i, r := range readings {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "($%d,$%d,$%d)", len(args)+1, len(args)+2, len(args)+3)
		args = append(args, r.TakenAt, r.Current, r.Voltage)
	}

	// Replays after a failed flush must not duplicate rows.
	b.WriteString(" ON CONFLICT (taken_at) DO NOTHING")

	_, err := a.db.Exec(b.String(), args...)
	return err
}

var _ ports.ArchiveSink = (*PostgresArchive)(nil)
