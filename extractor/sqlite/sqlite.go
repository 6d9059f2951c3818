// Package sqlite stores example records in a SQLite database and implements
// an extractor.Extractor that reads them back in insertion order.
//
// The filename passed to the extractor is the path of the database file.
// Records live in a single table:
//
//	create table example (
//		id   integer primary key,
//		data blob not null
//	)
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	msgpcodec "github.com/MasterOfBinary/seqbatch/codec/msgp"
	"github.com/MasterOfBinary/seqbatch/example"
	"github.com/MasterOfBinary/seqbatch/extractor"
)

// ErrClosed is returned once the Extractor has been closed.
var ErrClosed = errors.New("extractor is closed")

// Extractor reads records from SQLite databases, keeping one connection pool
// and cursor per filename. It is safe for concurrent use.
type Extractor struct {
	cfg *Config

	mu      sync.Mutex
	closed  bool
	cursors map[string]*cursor
}

var _ extractor.Extractor = (*Extractor)(nil)

type cursor struct {
	db      *sql.DB
	after   int64
	epoch   int
	records int
	done    bool
}

// New creates an Extractor with the provided configuration functions.
//
// Default configuration:
//   - Codec: MessagePack
//   - Epochs: 1
func New(configFuncs ...ConfigFunc) *Extractor {
	cfg := newConfig(configFuncs)
	return &Extractor{
		cfg:     cfg,
		cursors: make(map[string]*cursor),
	}
}

func newConfig(configFuncs []ConfigFunc) *Config {
	cfg := &Config{}
	cfg.Codec(msgpcodec.New())
	cfg.Epochs(1)
	for _, cf := range configFuncs {
		cf(cfg)
	}
	return cfg
}

// ReadAndDecodeSingleExample implements extractor.Extractor.
func (e *Extractor) ReadAndDecodeSingleExample(ctx context.Context, filename string) (*example.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}

	c, err := e.cursor(filename)
	if err != nil {
		return nil, err
	}
	if c.done {
		return nil, io.EOF
	}

	id, data, err := next(ctx, c.db, c.after)
	if errors.Is(err, sql.ErrNoRows) {
		c.epoch++
		if (e.cfg.epochs != 0 && c.epoch >= e.cfg.epochs) || c.records == 0 {
			c.done = true
			return nil, io.EOF
		}
		id, data, err = next(ctx, c.db, 0)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", filename, err)
	}
	c.after = id
	c.records++

	rec, err := e.cfg.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s row %d: %w", filename, id, err)
	}
	return rec, nil
}

func next(ctx context.Context, db *sql.DB, after int64) (int64, []byte, error) {
	var (
		id   int64
		data []byte
	)
	err := db.QueryRowContext(
		ctx,
		`
		select id, data from example
		where id > :after
		order by id asc
		limit 1
		`,
		sql.Named("after", after),
	).Scan(&id, &data)
	return id, data, err
}

func (e *Extractor) cursor(filename string) (*cursor, error) {
	if c, ok := e.cursors[filename]; ok {
		return c, nil
	}

	db, err := open(filename)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := setup(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("setup: %w", err)
	}

	c := &cursor{db: db}
	e.cursors[filename] = c
	return c, nil
}

// Close closes every open database. Later reads return ErrClosed.
func (e *Extractor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	var errs []error
	for name, c := range e.cursors {
		if err := c.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	e.cursors = nil
	return errors.Join(errs...)
}

func open(filename string) (*sql.DB, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, errors.New("filename can't be blank")
	}
	if strings.Contains(filename, "?") {
		return nil, errors.New("filename can't contain ?")
	}

	params := url.Values{}
	params.Add("_timeout", "5000") // 5s
	params.Add("_journal", "wal")
	params.Add("_sync", "normal")

	uri := url.URL{Scheme: "file", Opaque: filename, RawQuery: params.Encode()}
	db, err := sql.Open("sqlite3", uri.String())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(0)
	db.SetConnMaxLifetime(0)

	return db, nil
}

func setup(db *sql.DB) error {
	if _, err := db.Exec(
		`
		create table if not exists example (
			id   integer primary key,
			data blob not null
		) strict
		`,
	); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}
