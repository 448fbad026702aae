package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get group: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
	if isNotFound(fmt.Errorf("connection reset")) {
		t.Fatalf("expected unrelated error to be ignored")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches unique code", func(t *testing.T) {
		err := fmt.Errorf("insert prediction: %w", &pq.Error{Code: "23505"})
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for unique violation")
		}
	})

	t.Run("ignores other codes", func(t *testing.T) {
		if isUniqueViolation(&pq.Error{Code: "23503"}) {
			t.Fatalf("expected false for foreign key violation")
		}
	})
}
