package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MasterOfBinary/seqbatch/example"
)

// Writer appends records to a database readable by Extractor.
type Writer struct {
	cfg *Config
	db  *sql.DB
}

// NewWriter opens (creating if needed) the database at filename. Only the
// Codec setting of the configuration is used.
func NewWriter(filename string, configFuncs ...ConfigFunc) (*Writer, error) {
	cfg := newConfig(configFuncs)

	db, err := open(filename)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := setup(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("setup: %w", err)
	}

	return &Writer{cfg: cfg, db: db}, nil
}

// Insert stores records in a single transaction, in order. It returns the
// number of rows in the table afterwards.
func (w *Writer) Insert(ctx context.Context, records ...*example.Record) (int, error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for i, r := range records {
		data, err := w.cfg.codec.Encode(r)
		if err != nil {
			return 0, fmt.Errorf("encode record %d: %w", i, err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`insert into example (data) values (:data)`,
			sql.Named("data", data),
		); err != nil {
			return 0, fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	var count int
	if err := tx.QueryRowContext(ctx, `select count(*) from example`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return count, nil
}

// Close closes the database.
func (w *Writer) Close() error {
	return w.db.Close()
}
