package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"

	"github.com/roach88/oneof/internal/codec"
	"github.com/roach88/oneof/internal/docbridge"
	"github.com/roach88/oneof/internal/schema"
	"github.com/roach88/oneof/internal/tree"
	"github.com/roach88/oneof/internal/union"
)

// Document encodings stored in documents.encoding.
const (
	EncodingBSON   = "bson"
	EncodingBrotli = "bson+br"
)

// recordNamespace scopes name-based record IDs.
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/roach88/oneof/store"))

// ErrEmptyKey is returned when a record key is empty.
var ErrEmptyKey = errors.New("store: empty key")

// Put stores u as an envelope under key, replacing any previous document.
// Writing identical content again is a no-op and keeps the record's seq.
//
// The store's codec must be in envelope mode: transparent output cannot be
// read back.
func (s *Store) Put(ctx context.Context, key string, u union.Union) (Record, error) {
	c := s.bridge.Codec()
	if c.Mode() != codec.ModeEnvelope {
		return Record{}, fmt.Errorf("put %q: %w", key,
			&codec.Error{Code: codec.ErrCodeWriteOnly, Message: "store requires an envelope-mode codec"})
	}
	env, err := c.EncodeUnion(u)
	if err != nil {
		return Record{}, fmt.Errorf("put %q: %w", key, err)
	}
	return s.put(ctx, key, env.(tree.Object))
}

// PutEnvelope stores envelope JSON text under key without resolving its
// type. The text must pass schema.Validate.
func (s *Store) PutEnvelope(ctx context.Context, key string, data []byte) (Record, error) {
	if err := schema.Validate(data); err != nil {
		return Record{}, fmt.Errorf("put %q: %w", key, err)
	}
	n, err := tree.ParseJSON(data)
	if err != nil {
		return Record{}, fmt.Errorf("put %q: %w", key, err)
	}
	return s.put(ctx, key, n.(tree.Object))
}

func (s *Store) put(ctx context.Context, key string, env tree.Object) (Record, error) {
	if key == "" {
		return Record{}, ErrEmptyKey
	}

	typeNode, _ := env.Get(codec.FieldType)
	typeID, _ := typeNode.(tree.String)

	hash, err := tree.Hash(tree.DomainEnvelope, env)
	if err != nil {
		return Record{}, fmt.Errorf("put %q: %w", key, err)
	}

	raw, err := docbridge.EncodeTree(env)
	if err != nil {
		return Record{}, fmt.Errorf("put %q: %w", key, err)
	}

	blob, encoding := []byte(raw), EncodingBSON
	if s.compress {
		blob, err = compress(raw)
		if err != nil {
			return Record{}, fmt.Errorf("put %q: %w", key, err)
		}
		encoding = EncodingBrotli
	}

	// Identical content leaves the row (and its seq) untouched.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents
		(id, key, type_id, content_hash, encoding, doc, size, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM documents))
		ON CONFLICT(key) DO UPDATE SET
			type_id = excluded.type_id,
			content_hash = excluded.content_hash,
			encoding = excluded.encoding,
			doc = excluded.doc,
			size = excluded.size,
			seq = excluded.seq
		WHERE documents.content_hash != excluded.content_hash
			OR documents.encoding != excluded.encoding
	`,
		recordID(key),
		key,
		string(typeID),
		hash,
		encoding,
		blob,
		len(raw),
	)
	if err != nil {
		return Record{}, fmt.Errorf("put %q: %w", key, err)
	}

	s.logger.Debug("document stored", "key", key, "type", string(typeID), "encoding", encoding)
	return s.Stat(ctx, key)
}

// Delete removes the document stored under key.
// Returns ErrNotFound if there is none.
func (s *Store) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %q: %w", key, ErrNotFound)
	}
	s.logger.Debug("document deleted", "key", key)
	return nil
}

func recordID(key string) string {
	return uuid.NewSHA1(recordNamespace, []byte(key)).String()
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return out, nil
}
