package archive

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/volttrace/volttrace/internal/domain"
)

func TestPostgresArchiveWriteBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	a := NewPostgresArchive(db, "readings")
	ts := time.Now()

	readings := []domain.Reading{
		{Current: 1.234, Voltage: 12.6, TakenAt: ts},
		{Current: 1.235, Voltage: 12.5, TakenAt: ts.Add(time.Second)},
	}

	expectedQuery := regexp.QuoteMeta("INSERT INTO readings (taken_at, current_amps, voltage_volts) VALUES ($1,$2,$3),($4,$5,$6) ON CONFLICT (taken_at) DO NOTHING")
	mock.ExpectExec(expectedQuery).
		WithArgs(ts, 1.234, 12.6, ts.Add(time.Second), 1.235, 12.5).
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := a.WriteBatch(readings); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresArchiveWriteBatchEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	a := NewPostgresArchive(db, "readings")
	if err := a.WriteBatch(nil); err != nil {
		t.Fatalf("expected nil error for empty batch, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresArchiveName(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	if got := NewPostgresArchive(db, "").Name(); got != "postgres" {
		t.Fatalf("expected name postgres, got %s", got)
	}
}
