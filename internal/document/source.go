package document

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Source yields the raw bytes of one contract document.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name identifies the source in errors and logs.
	Name() string
}

// File is a Source backed by a path on the local disk.
type File struct{ path string }

// NewFile returns a Source that reads path. It is safe for concurrent use.
func NewFile(path string) *File { return &File{path: path} }

func (f *File) Name() string { return f.path }

// Open returns the context error without touching the filesystem when ctx
// is already done. Filesystem errors are wrapped with the path and still
// match fs.ErrNotExist.
func (f *File) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	r, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("document: open %s: %w", f.path, err)
	}
	return r, nil
}

// Reader is a Source over an already open stream such as stdin. Open hands
// out the stream once; Close on the result is a no-op.
type Reader struct {
	name string
	r    io.Reader
}

func NewReader(name string, r io.Reader) *Reader { return &Reader{name: name, r: r} }

func (r *Reader) Name() string { return r.name }

func (r *Reader) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return io.NopCloser(r.r), nil
}
