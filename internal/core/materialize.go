package core

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	goerrors "github.com/goliatone/go-errors"

	"github.com/ryotapoi/mdpack/internal/logging"
)

// FailureCategory classifies a per-file copy failure.
type FailureCategory string

const (
	FailureUnresolved FailureCategory = "unresolved"
	FailureNotFound   FailureCategory = "not_found"
	FailurePermission FailureCategory = "permission"
	FailureIO         FailureCategory = "io"
)

func (c FailureCategory) textCode() string {
	switch c {
	case FailureUnresolved:
		return "COPY_UNRESOLVED"
	case FailureNotFound:
		return "COPY_SOURCE_NOT_FOUND"
	case FailurePermission:
		return "COPY_PERMISSION_DENIED"
	default:
		return "COPY_IO_ERROR"
	}
}

// CopyRecord describes one copied file.
type CopyRecord struct {
	Path   string // canonical path
	Source string
	Dest   string
	Size   int64
}

// FailureRecord describes one file that could not be copied.
type FailureRecord struct {
	Path     string
	Source   string
	Dest     string
	Category FailureCategory
	Err      error
}

// MaterializeOptions controls Materialize.
type MaterializeOptions struct {
	DryRun bool // compute destinations only
	Logger logging.Logger
}

// MaterializeResult aggregates per-file outcomes.
type MaterializeResult struct {
	Copied   []CopyRecord
	Failures []FailureRecord
}

// Bytes returns the total size of copied files.
func (r *MaterializeResult) Bytes() int64 {
	var n int64
	for _, c := range r.Copied {
		n += c.Size
	}
	return n
}

// Materialize copies every path from the index root into destRoot,
// mirroring the relative layout and overwriting existing files. Per-file
// failures are recorded in the result; only failing to create destRoot is
// returned as an error.
func Materialize(ix *Index, paths []string, destRoot string, opts MaterializeOptions) (*MaterializeResult, error) {
	log := logging.OrNoOp(opts.Logger)

	if !opts.DryRun {
		if err := os.MkdirAll(destRoot, 0o755); err != nil {
			return nil, setupError(err, codeDestRoot, "cannot create destination %s", destRoot)
		}
	}

	result := &MaterializeResult{}
	for _, p := range paths {
		rel, ok := ix.Resolve(p)
		if !ok {
			f := newFailure(p, "", "", FailureUnresolved, errors.New("no index entry"))
			log.Warn("cannot map file", "path", p)
			result.Failures = append(result.Failures, f)
			continue
		}
		src := ix.AbsPath(rel)
		dst := filepath.Join(destRoot, filepath.FromSlash(rel))

		var size int64
		var err error
		if opts.DryRun {
			size, err = statRegular(src)
		} else {
			size, err = copyFile(src, dst)
		}
		if err != nil {
			f := newFailure(rel, src, dst, categorize(err), err)
			log.Error("copy failed", "path", rel, "source", src, "dest", dst, "category", string(f.Category), "error", err)
			result.Failures = append(result.Failures, f)
			continue
		}
		if !opts.DryRun {
			log.Info("copied", "file", filepath.Base(rel))
		}
		result.Copied = append(result.Copied, CopyRecord{Path: rel, Source: src, Dest: dst, Size: size})
	}
	return result, nil
}

func newFailure(path, src, dst string, cat FailureCategory, err error) FailureRecord {
	wrapped := goerrors.Wrap(err, CategoryCopy, "copy "+path).
		WithTextCode(cat.textCode())
	return FailureRecord{Path: path, Source: src, Dest: dst, Category: cat, Err: wrapped}
}

func categorize(err error) FailureCategory {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return FailureNotFound
	case errors.Is(err, fs.ErrPermission):
		return FailurePermission
	default:
		return FailureIO
	}
}

func statRegular(src string) (int64, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("not a regular file: %s", src)
	}
	return info.Size(), nil
}

// copyFile copies src to dst with src's permission bits, creating parent
// directories of dst.
func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("not a regular file: %s", src)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, err
	}
	if err := out.Close(); err != nil {
		return n, err
	}
	return n, os.Chmod(dst, info.Mode().Perm())
}
