package db

import (
	"context"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

var (
	newPool = pgxpool.New
	pingDB  = func(ctx context.Context, pool *pgxpool.Pool) error {
		return pool.Ping(ctx)
	}
	closePool = func(pool *pgxpool.Pool) { pool.Close() }
)

// InitPostgres connects the shared pool. Postgres only backs the chat
// history; when it is absent the chat endpoint runs stateless, so
// connection failure is a warning, not a fatal.
func InitPostgres(ctx context.Context, dsn string) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		log.Println("DATABASE_URL not set, conversation history disabled")
		return
	}

	pool, err := newPool(ctx, dsn)
	if err != nil {
		log.Printf("failed to create Postgres pool, conversation history disabled: %v", err)
		return
	}
	if err := pingDB(ctx, pool); err != nil {
		log.Printf("failed to connect to Postgres, conversation history disabled: %v", err)
		closePool(pool)
		return
	}

	Pool = pool
	log.Println("Connected to Postgres")
}
