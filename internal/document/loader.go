// Package document reads contract documents from YAML or JSON into the
// generic tree of mappings, sequences and scalars that contract.Decode
// consumes. It knows nothing about the contract schema.
package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// ParseError reports a document that is not well-formed YAML or JSON.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("document: parse: %v", e.Err)
	}
	return fmt.Sprintf("document: parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsNotFound reports whether err was caused by a missing file.
func IsNotFound(err error) bool { return errors.Is(err, fs.ErrNotExist) }

// Parse decodes data as YAML. JSON input parses too, being a subset of YAML.
// Only the first document of a multi-document stream is returned; an empty
// input yields nil.
func Parse(data []byte) (any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Err: err}
	}
	return doc, nil
}

// Load reads and parses the file at path.
func Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("document: read %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// LoadSource reads and parses one document from src.
func LoadSource(ctx context.Context, src Source) (any, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("document: read %s: %w", src.Name(), err)
	}
	doc, err := Parse(data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = src.Name()
		}
		return nil, err
	}
	return doc, nil
}

// Loaded is the outcome of reading one source.
type Loaded struct {
	Name string
	Doc  any
	Err  error
}

// LoadAll reads every source concurrently, at most limit at a time (no
// limit when limit <= 0), and returns one result per source in input order.
// A failed source does not stop the others.
func LoadAll(ctx context.Context, srcs []Source, limit int) []Loaded {
	out := make([]Loaded, len(srcs))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, src := range srcs {
		g.Go(func() error {
			doc, err := LoadSource(ctx, src)
			out[i] = Loaded{Name: src.Name(), Doc: doc, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
