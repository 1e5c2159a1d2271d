package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestWithRetry_RetriesConnectionErrors(t *testing.T) {
	r := &PostgresRepository{}

	attempts := 0
	err := r.withRetry(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("write tcp: connection reset by peer")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withRetry error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestWithRetry_RetriesSerializationFailure(t *testing.T) {
	r := &PostgresRepository{}

	attempts := 0
	err := r.withRetry(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return &pgconn.PgError{Code: pgerrcode.SerializationFailure}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withRetry error: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
}

func TestWithRetry_NotFoundIsNotRetried(t *testing.T) {
	// ErrAlertNotFound — ответ по существу, а не временный сбой:
	// пометка прочтения не должна повторяться и замедлять 404.
	r := &PostgresRepository{}

	attempts := 0
	err := r.withRetry(context.Background(), func(ctx context.Context) error {
		attempts++
		return ErrAlertNotFound
	})
	if !errors.Is(err, ErrAlertNotFound) {
		t.Fatalf("err = %v, want ErrAlertNotFound", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestWithRetry_ContextCancelStops(t *testing.T) {
	r := &PostgresRepository{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := r.withRetry(ctx, func(ctx context.Context) error {
		attempts++
		return context.Canceled
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{errors.New("dial tcp 127.0.0.1:5432: connection refused"), true},
		{errors.New("write: broken pipe"), true},
		{errors.New("read: connection reset by peer"), true},
		{errors.New("duplicate key value violates unique constraint"), false},
		{ErrAlertNotFound, false},
	}

	for _, tt := range tests {
		if got := isConnectionError(tt.err); got != tt.want {
			t.Fatalf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
