// Package sqlite — встроенное документное хранилище (коллекции JSON-документов по ключу)
// на SQLite. Обслуживает локальное зеркало корзины и локальный режим без сервера.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // database/sql driver name = "sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store — файл SQLite с таблицей documents.
type Store struct {
	db *sql.DB
}

// Open — открыть (или создать) базу по пути; ":memory:" — база в памяти процесса.
// Одно соединение: SQLite допускает одного писателя, а база в памяти живёт в соединении.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Collection — коллекция документов вне транзакции.
func (s *Store) Collection(name string) *Collection {
	return &Collection{q: s.db, name: name}
}

// WithTx — fn в одной транзакции; коммит только при nil-ошибке.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	// после Commit вернёт ErrTxDone
	defer func() { _ = sqlTx.Rollback() }()

	if err := fn(&Tx{tx: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Tx — транзакция хранилища.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Collection(name string) *Collection {
	return &Collection{q: t.tx, name: name}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Document — документ коллекции.
type Document struct {
	Key       string
	Owner     string
	Body      []byte
	UpdatedAt time.Time
}

// Collection — именованная коллекция; реализует ports.KeyValueStore.
type Collection struct {
	q    querier
	name string
}

// Get — (body, true, nil) при наличии, (nil, false, nil) при отсутствии ключа.
func (c *Collection) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var body []byte
	err := c.q.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND key = ?`, c.name, key,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", c.name, key, err)
	}
	return body, true, nil
}

// Put — записать документ без владельца (перезапись).
func (c *Collection) Put(ctx context.Context, key string, body []byte) error {
	return c.PutOwned(ctx, key, "", body)
}

// PutOwned — записать документ с владельцем (для выборок по пользователю).
func (c *Collection) PutOwned(ctx context.Context, key, owner string, body []byte) error {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO documents (collection, key, owner, body, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, key) DO UPDATE SET
			owner = excluded.owner,
			body = excluded.body,
			updated_at = excluded.updated_at
	`, c.name, key, owner, body, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", c.name, key, err)
	}
	return nil
}

// Delete — удалить документ; отсутствие не ошибка.
func (c *Collection) Delete(ctx context.Context, key string) error {
	if _, err := c.q.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND key = ?`, c.name, key,
	); err != nil {
		return fmt.Errorf("delete %s/%s: %w", c.name, key, err)
	}
	return nil
}

// List — документы коллекции (owner == "" — все), в порядке ключей.
func (c *Collection) List(ctx context.Context, owner string) ([]Document, error) {
	query := `SELECT key, owner, body, updated_at FROM documents WHERE collection = ?`
	args := []any{c.name}
	if owner != "" {
		query += ` AND owner = ?`
		args = append(args, owner)
	}
	query += ` ORDER BY key`

	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.name, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			d       Document
			updated string
		)
		if err := rows.Scan(&d.Key, &d.Owner, &d.Body, &updated); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.name, err)
		}
		d.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s rows: %w", c.name, err)
	}
	return docs, nil
}
