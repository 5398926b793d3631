package local

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
)

const randomNameBytes = 16

// ErrNotFound is returned by Open when no blob exists under the given name.
var ErrNotFound = errors.New("blob not found")

// Store persists uploaded blobs on the local filesystem under a single
// directory. Names are generated, never taken from the client, so concurrent
// writers cannot collide.
type Store struct {
	dir string
}

// New creates the upload directory if absent and returns a store bound to it.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the backing directory.
func (s *Store) Dir() string {
	return s.dir
}

// GenerateName builds a stored filename from a cryptographically random token
// plus the original file's extension. The extension is untrusted client
// metadata; it is carried along but never used to interpret content.
func GenerateName(ext string) (string, error) {
	buf := make([]byte, randomNameBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating blob name: %w", err)
	}
	return hex.EncodeToString(buf) + sanitizeExt(ext), nil
}

func sanitizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if strings.ContainsAny(ext[1:], "./\\") {
		return ""
	}
	return strings.ToLower(ext)
}

// Save streams r into the blob named name. A failed copy removes the partial
// file so no blob outlives its failure path.
func (s *Store) Save(ctx context.Context, name string, r io.Reader) (int64, error) {
	if err := validName(name); err != nil {
		return 0, err
	}

	dst := filepath.Join(s.dir, name)
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("creating blob %q: %w", name, err)
	}

	written, copyErr := io.Copy(f, contextReader{ctx: ctx, r: r})
	closeErr := f.Close()

	if err := multierr.Combine(copyErr, closeErr); err != nil {
		if rmErr := os.Remove(dst); rmErr != nil {
			err = multierr.Append(err, rmErr)
		}
		return 0, fmt.Errorf("writing blob %q: %w", name, err)
	}
	return written, nil
}

// Remove deletes the named blob. Missing blobs are not an error.
func (s *Store) Remove(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Open returns a seekable reader over the named blob.
func (s *Store) Open(name string) (io.ReadSeekCloser, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func validName(name string) error {
	if name == "" {
		return errors.New("blob name is required")
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("invalid blob name %q", name)
	}
	return nil
}

// contextReader aborts an in-flight copy once the request context is done,
// so a client disconnect discards the partial file instead of blocking.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
