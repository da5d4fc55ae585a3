package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

func withStubbedPostgres(t *testing.T, pingErr error) {
	t.Helper()
	origNewPool := newPool
	origPing := pingDB
	origClose := closePool
	origPool := Pool
	t.Cleanup(func() {
		newPool = origNewPool
		pingDB = origPing
		closePool = origClose
		Pool = origPool
	})

	Pool = nil
	newPool = func(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
		return &pgxpool.Pool{}, nil
	}
	pingDB = func(ctx context.Context, pool *pgxpool.Pool) error { return pingErr }
	closePool = func(*pgxpool.Pool) {}
}

func TestInitPostgresWithoutURLLeavesPoolNil(t *testing.T) {
	withStubbedPostgres(t, nil)

	InitPostgres(context.Background(), "")
	if Pool != nil {
		t.Fatal("expected nil pool without a database URL")
	}
}

func TestInitPostgresConnects(t *testing.T) {
	withStubbedPostgres(t, nil)

	InitPostgres(context.Background(), "postgres://example/coinsage")
	if Pool == nil {
		t.Fatal("expected pool to be set")
	}
}

func TestInitPostgresPingFailureLeavesPoolNil(t *testing.T) {
	withStubbedPostgres(t, errors.New("connection refused"))

	InitPostgres(context.Background(), "postgres://example/coinsage")
	if Pool != nil {
		t.Fatal("expected nil pool after ping failure")
	}
}
