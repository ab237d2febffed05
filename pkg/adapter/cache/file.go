package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/snappy"

	domaincache "github.com/damianoneill/go-pipeline/pkg/domain/cache"
)

var (
	_ domaincache.Store              = (*FileStore)(nil)
	_ domaincache.MiddlewareProvider = (*FileStore)(nil)
)

const headerSize = 8

// FileStore writes each entry to its own snappy-compressed file under dir.
// The first 8 bytes of a file hold the expiry in unix nanoseconds, zero for
// entries that never expire.
type FileStore struct {
	localStrategy
	dir        string
	defaultTTL time.Duration
	now        func() time.Time
}

func NewFileStore(dir string, defaultTTL time.Duration) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store requires a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &FileStore{dir: dir, defaultTTL: defaultTTL, now: time.Now}, nil
}

func (s *FileStore) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	name := hex.EncodeToString(sum[:])
	return filepath.Join(s.dir, name[:2], name)
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.read(ctx, key, func() ([]byte, error) {
		return s.load(key)
	})
}

func (s *FileStore) load(key string) ([]byte, error) {
	raw, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domaincache.ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}
	if len(raw) < headerSize {
		return nil, fmt.Errorf("cache entry for %q is truncated", key)
	}

	if exp := int64(binary.BigEndian.Uint64(raw[:headerSize])); exp != 0 && s.now().UnixNano() > exp {
		_ = os.Remove(s.path(key))
		return nil, domaincache.ErrMiss
	}

	value, err := snappy.Decode(nil, raw[headerSize:])
	if err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

func (s *FileStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var exp int64
	if t := expiry(s.now(), ttl, s.defaultTTL); !t.IsZero() {
		exp = t.UnixNano()
	}

	encoded := snappy.Encode(nil, value)
	buf := make([]byte, headerSize+len(encoded))
	binary.BigEndian.PutUint64(buf[:headerSize], uint64(exp))
	copy(buf[headerSize:], encoded)

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}

	s.write(ctx, key, value)
	return nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.forget(ctx, key)
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry but keeps the directory.
func (s *FileStore) Clear(ctx context.Context) error {
	s.reset(ctx)
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(s.dir, e.Name())); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
	}
	return nil
}
