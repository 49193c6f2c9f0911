package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"

	"github.com/roach88/oneof/internal/docbridge"
	"github.com/roach88/oneof/internal/tree"
	"github.com/roach88/oneof/internal/union"
)

var (
	// ErrNotFound is returned when no document is stored under a key.
	ErrNotFound = errors.New("store: document not found")

	// ErrCorrupt is returned when a stored document no longer matches its
	// content hash.
	ErrCorrupt = errors.New("store: content hash mismatch")
)

// Record describes a stored document without its content.
type Record struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	TypeID      string `json:"type"`
	ContentHash string `json:"content_hash"`
	Encoding    string `json:"encoding"`
	Size        int    `json:"size"`
	Seq         int64  `json:"seq"`
}

// ListOptions filters List results.
type ListOptions struct {
	// TypeID limits results to envelopes with this "type" identifier.
	TypeID string
}

// Get reads the document under key and decodes it as a union of unionType.
func (s *Store) Get(ctx context.Context, key string, unionType reflect.Type) (union.Union, Record, error) {
	rec, raw, err := s.load(ctx, key)
	if err != nil {
		return nil, Record{}, err
	}
	u, err := s.bridge.Unmarshal(raw, unionType)
	if err != nil {
		return nil, rec, fmt.Errorf("get %q: %w", key, err)
	}
	return u, rec, nil
}

// GetEnvelope reads the document under key as compact envelope JSON.
func (s *Store) GetEnvelope(ctx context.Context, key string) ([]byte, Record, error) {
	rec, raw, err := s.load(ctx, key)
	if err != nil {
		return nil, Record{}, err
	}
	data, err := docbridge.BSONToJSON(raw)
	if err != nil {
		return nil, rec, fmt.Errorf("get %q: %w", key, err)
	}
	return data, rec, nil
}

// Stat returns the record under key without reading its document.
func (s *Store) Stat(ctx context.Context, key string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, key, type_id, content_hash, encoding, size, seq
		FROM documents
		WHERE key = ?
	`, key)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("stat %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("stat %q: %w", key, err)
	}
	return rec, nil
}

// List returns stored records ordered by seq ASC, key ASC COLLATE BINARY.
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Record, error) {
	query := `
		SELECT id, key, type_id, content_hash, encoding, size, seq
		FROM documents
	`
	var args []any
	if opts.TypeID != "" {
		query += ` WHERE type_id = ?`
		args = append(args, opts.TypeID)
	}
	query += ` ORDER BY seq ASC, key COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return records, nil
}

// load returns the record and raw BSON under key, verifying the content
// hash.
func (s *Store) load(ctx context.Context, key string) (Record, []byte, error) {
	var (
		rec  Record
		blob []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, key, type_id, content_hash, encoding, size, seq, doc
		FROM documents
		WHERE key = ?
	`, key).Scan(&rec.ID, &rec.Key, &rec.TypeID, &rec.ContentHash, &rec.Encoding, &rec.Size, &rec.Seq, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, nil, fmt.Errorf("get %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return Record{}, nil, fmt.Errorf("get %q: %w", key, err)
	}

	raw := blob
	switch rec.Encoding {
	case EncodingBSON:
	case EncodingBrotli:
		raw, err = decompress(blob)
		if err != nil {
			return Record{}, nil, fmt.Errorf("get %q: %w", key, err)
		}
	default:
		return Record{}, nil, fmt.Errorf("get %q: unknown encoding %q", key, rec.Encoding)
	}

	env, err := docbridge.FromRaw(raw)
	if err != nil {
		return Record{}, nil, fmt.Errorf("get %q: %w", key, err)
	}
	hash, err := tree.Hash(tree.DomainEnvelope, env)
	if err != nil {
		return Record{}, nil, fmt.Errorf("get %q: %w", key, err)
	}
	if hash != rec.ContentHash {
		return Record{}, nil, fmt.Errorf("get %q: %w", key, ErrCorrupt)
	}
	return rec, raw, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.Key, &rec.TypeID, &rec.ContentHash, &rec.Encoding, &rec.Size, &rec.Seq)
	return rec, err
}
