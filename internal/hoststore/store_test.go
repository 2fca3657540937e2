package hoststore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func setupMockDB(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	return OpenDB(db), mock
}

func TestReadDataReturnsEmptyOnNoRows(t *testing.T) {
	s, mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT content FROM skill_data`).
		WithArgs("skill-1", "notes.txt").
		WillReturnError(sql.ErrNoRows)

	content, err := s.ReadData(context.Background(), "skill-1", "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "" {
		t.Fatalf("expected empty content, got %q", content)
	}
}

func TestReadDataReturnsStoredContent(t *testing.T) {
	s, mock := setupMockDB(t)
	rows := sqlmock.NewRows([]string{"content"}).AddRow("hello")
	mock.ExpectQuery(`SELECT content FROM skill_data`).
		WithArgs("skill-1", "notes.txt").
		WillReturnRows(rows)

	content, err := s.ReadData(context.Background(), "skill-1", "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "hello" {
		t.Fatalf("expected %q, got %q", "hello", content)
	}
}

func TestWriteDataUpserts(t *testing.T) {
	s, mock := setupMockDB(t)
	mock.ExpectExec(`INSERT INTO skill_data`).
		WithArgs("skill-1", "notes.txt", "hello").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.WriteData(context.Background(), "skill-1", "notes.txt", "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetStateReturnsEmptyMapWhenUnset(t *testing.T) {
	s, mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT document FROM skill_state`).
		WithArgs("skill-1").
		WillReturnError(sql.ErrNoRows)

	state, err := s.GetState(context.Background(), "skill-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state) != 0 {
		t.Fatalf("expected empty state, got %v", state)
	}
}

func TestSetStateMergesOverExisting(t *testing.T) {
	s, mock := setupMockDB(t)
	rows := sqlmock.NewRows([]string{"document"}).AddRow(`{"count":1}`)
	mock.ExpectQuery(`SELECT document FROM skill_state`).
		WithArgs("skill-1").
		WillReturnRows(rows)
	mock.ExpectExec(`INSERT INTO skill_state`).
		WithArgs("skill-1", `{"count":1,"name":"loop"}`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := s.SetState(context.Background(), "skill-1", map[string]any{"name": "loop"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
