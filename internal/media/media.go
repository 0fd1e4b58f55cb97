// Package media removes product image files from local disk and S3.
package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Remover deletes stored product images.
type Remover interface {
	// DeleteFile removes the named image and reports whether anything was removed.
	DeleteFile(ctx context.Context, name string) (bool, error)
}

// fileRemover implements Remover for a local upload directory.
type fileRemover struct {
	dir    string
	logger zerolog.Logger
}

// NewFileRemover creates a remover for images stored under dir.
func NewFileRemover(dir string, logger zerolog.Logger) Remover {
	return &fileRemover{
		dir:    dir,
		logger: logger.With().Str("component", "file-remover").Logger(),
	}
}

// DeleteFile removes dir/name. Only the base name is used so a stored name
// can never escape the upload directory.
func (r *fileRemover) DeleteFile(ctx context.Context, name string) (bool, error) {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return false, nil
	}

	path := filepath.Join(r.dir, base)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Debug().Str("path", path).Msg("image file already gone")
			return false, nil
		}
		r.logger.Error().Err(err).Str("path", path).Msg("failed to delete image file")
		return false, fmt.Errorf("failed to delete image file %s: %w", path, err)
	}

	r.logger.Info().Str("path", path).Msg("image file deleted")
	return true, nil
}

// fallbackRemover deletes from S3 when enabled and always from local disk,
// so images uploaded before S3 was switched on are cleaned up too.
type fallbackRemover struct {
	s3Remover   Remover
	fileRemover Remover
	s3Prefix    string
	s3Enabled   bool
	logger      zerolog.Logger
}

// NewFallbackRemover combines an S3 remover and a local remover. If
// s3Remover is nil, only the local remover is used.
func NewFallbackRemover(s3Remover, fileRemover Remover, s3Prefix string, s3Enabled bool, logger zerolog.Logger) Remover {
	return &fallbackRemover{
		s3Remover:   s3Remover,
		fileRemover: fileRemover,
		s3Prefix:    s3Prefix,
		s3Enabled:   s3Enabled,
		logger:      logger.With().Str("component", "fallback-remover").Logger(),
	}
}

// DeleteFile removes prefix+name from S3 and name from local disk. It
// reports true if either copy existed. Both are attempted even if one fails.
func (r *fallbackRemover) DeleteFile(ctx context.Context, name string) (bool, error) {
	var removed bool
	var errs []error

	if r.s3Enabled && r.s3Remover != nil {
		key := r.s3Prefix + filepath.Base(name)
		ok, err := r.s3Remover.DeleteFile(ctx, key)
		if err != nil {
			r.logger.Warn().Err(err).Str("s3_key", key).Msg("failed to delete image from S3")
			errs = append(errs, err)
		}
		removed = removed || ok
	}

	ok, err := r.fileRemover.DeleteFile(ctx, name)
	if err != nil {
		errs = append(errs, err)
	}
	removed = removed || ok

	return removed, errors.Join(errs...)
}
