// Package storage gives previews access to the local file system.
package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/djherbis/times"

	"datpeek/internal/errors"
	"datpeek/internal/log"
	"datpeek/internal/preview"
)

// Local implements preview.Storage on the local file system.
type Local struct {
	perm os.FileMode
}

// NewLocal returns a file system storage writing files with mode 0644.
func NewLocal() *Local {
	return &Local{perm: 0644}
}

var _ preview.Storage = (*Local)(nil)

// ReadFile reads the whole file.
func (l *Local) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.FromOS(err, path, "cannot read file")
	}
	return data, nil
}

// WriteFile creates or replaces path with data. Missing parent directories are
// created.
func (l *Local) WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewFileError("cannot create target directory", filepath.Dir(path), errors.FileCreateFailed, err)
	}
	if err := os.WriteFile(path, data, l.perm); err != nil {
		return errors.NewFileError("cannot write file", path, errors.FileCreateFailed, err)
	}
	log.LogWithFields(log.F("path", path), log.F("bytes", len(data))).Debug("Wrote file")
	return nil
}

// Stat reports size and creation time. File systems that do not record a
// birth time report the modification time instead.
func (l *Local) Stat(ctx context.Context, path string) (preview.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return preview.Metadata{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return preview.Metadata{}, errors.FromOS(err, path, "cannot stat file")
	}

	created := info.ModTime()
	if ts := times.Get(info); ts.HasBirthTime() {
		created = ts.BirthTime()
	}
	return preview.Metadata{Size: info.Size(), CreatedAt: created}, nil
}

// ListDirectory returns the names of the regular files in dir in the order
// the directory yields them.
func (l *Local) ListDirectory(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(dir)
	if err != nil {
		return nil, errors.FromOS(err, dir, "cannot open directory")
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, errors.FromOS(err, dir, "cannot read directory")
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
