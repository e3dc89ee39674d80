// Package pg stores record store tables in a single Postgres JSONB table, for
// deployments that run without NocoDB.
package pg

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/Serubin/AJD-Site/shared/config"
	"github.com/Serubin/AJD-Site/shared/logger"
)

//go:embed migrations/init.sql
var schema string

type Storage struct {
	db    *sql.DB
	table string
	log   *slog.Logger
}

// New connects and makes sure the records table exists.
func New(ctx context.Context, cfg config.Pg) (*Storage, error) {
	log := logger.Component("pg")
	log.Info("connecting to db", "host", cfg.Host, "dbname", cfg.Dbname)
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("pg: apply schema: %w", err)
	}
	log.Info("successfully connected to db")
	return &Storage{db: db, table: pq.QuoteIdentifier("records"), log: log}, nil
}

func Connect(ctx context.Context, cfg config.Pg) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// Ping reports whether the database answers.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Table returns the recordstore.Table for ref. Views have no meaning here.
func (s *Storage) Table(ref config.TableRef) *Table {
	return &Table{s: s, tableID: ref.TableID}
}
