package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/openmined/assetextract/internal/utils"
)

const lockFileName = ".assetextract.lock"

// CopyStatus is the outcome of extracting a single entry.
type CopyStatus string

const (
	StatusCopied           CopyStatus = "copied"
	StatusOverwritten      CopyStatus = "overwritten"
	StatusSkippedMissing   CopyStatus = "skipped-missing"
	StatusSkippedMalformed CopyStatus = "skipped-malformed"
	StatusFailed           CopyStatus = "failed"
)

// CopyResult is the per-entry outcome of an extraction. Err is set for every
// status except copied and overwritten.
type CopyResult struct {
	Path        string
	Hash        string
	Source      string
	Destination string
	Status      CopyStatus
	Bytes       int64
	Err         error
}

// Report summarises an extraction run.
type Report struct {
	Results     []CopyResult
	Copied      int
	Overwritten int
	Missing     int
	Malformed   int
	Failed      int
	Bytes       int64
}

// Processed is the number of entries the run looked at.
func (r *Report) Processed() int {
	return len(r.Results)
}

// Written is the number of destination files produced.
func (r *Report) Written() int {
	return r.Copied + r.Overwritten
}

func (r *Report) add(res CopyResult) {
	r.Results = append(r.Results, res)
	switch res.Status {
	case StatusCopied:
		r.Copied++
	case StatusOverwritten:
		r.Overwritten++
	case StatusSkippedMissing:
		r.Missing++
	case StatusSkippedMalformed:
		r.Malformed++
	case StatusFailed:
		r.Failed++
	}
	r.Bytes += res.Bytes
}

// ExtractOptions tunes how objects are written.
type ExtractOptions struct {
	PreserveTimes bool
}

// Extractor copies store objects to <output>/<logical path>.
type Extractor struct {
	store       *Store
	outputDir   string
	opts        ExtractOptions
	logger      *slog.Logger
	createdDirs mapset.Set[string]
}

// NewExtractor expands outputDir; nothing is created until Extract runs.
func NewExtractor(store *Store, outputDir string, opts ExtractOptions, logger *slog.Logger) (*Extractor, error) {
	out, err := utils.ExpandPath(outputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output %q: %w", outputDir, err)
	}
	return &Extractor{
		store:       store,
		outputDir:   out,
		opts:        opts,
		logger:      logger,
		createdDirs: mapset.NewThreadUnsafeSet[string](),
	}, nil
}

// OutputDir is the expanded absolute output directory.
func (x *Extractor) OutputDir() string {
	return x.outputDir
}

// Extract creates the output directory, locks it for the duration of the run
// and copies every entry. Per-entry problems are recorded in the report and
// logged as warnings. The returned error is only set when the output
// directory cannot be prepared or ctx is cancelled.
func (x *Extractor) Extract(ctx context.Context, entries []Entry) (*Report, error) {
	if !utils.DirExists(x.outputDir) {
		x.logger.Warn(x.outputDir + " not found - creating")
	}
	if err := x.ensureDir(x.outputDir); err != nil {
		return nil, fmt.Errorf("create output %s: %w", x.outputDir, err)
	}

	lock := flock.New(filepath.Join(x.outputDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock output %s: %w", x.outputDir, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", x.outputDir, ErrOutputLocked)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			x.logger.Warn("failed to unlock output", "path", lock.Path(), "error", err)
			return
		}
		_ = os.Remove(lock.Path())
	}()

	x.logger.Info("Starting", "items", len(entries), "output", x.outputDir)

	report := &Report{Results: make([]CopyResult, 0, len(entries))}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.add(x.ExtractEntry(e))
	}

	x.logger.Info("Finished.",
		"processed", report.Processed(),
		"written", report.Written(),
		"missing", report.Missing,
		"size", humanize.Bytes(uint64(report.Bytes)),
	)
	return report, nil
}

// ExtractEntry copies a single entry. It never aborts; the outcome is in the result.
func (x *Extractor) ExtractEntry(e Entry) CopyResult {
	res := CopyResult{Path: e.Path, Hash: e.Hash}

	if err := e.Validate(); err != nil {
		x.logger.Warn("skipping malformed entry", "path", e.Path, "error", err)
		return x.result(res, StatusSkippedMalformed, err)
	}
	if filepath.Clean(filepath.FromSlash(e.Path)) == lockFileName {
		err := fmt.Errorf("%w: %s collides with the output lock file", ErrMalformedEntry, e.Path)
		x.logger.Warn("skipping malformed entry", "path", e.Path, "error", err)
		return x.result(res, StatusSkippedMalformed, err)
	}

	x.logger.Debug("Finding hash " + e.Hash)
	src, err := x.store.ObjectPath(e.Hash)
	if err != nil {
		x.logger.Warn("skipping malformed entry", "path", e.Path, "error", err)
		return x.result(res, StatusSkippedMalformed, err)
	}
	res.Source = src

	if !utils.FileExists(src) {
		x.logger.Warn(fmt.Sprintf("Can't find hash %s (at %s)", e.Hash, src))
		return x.result(res, StatusSkippedMissing, fmt.Errorf("object %s: %w", src, ErrNotFound))
	}

	dst := filepath.Join(x.outputDir, filepath.FromSlash(e.Path))
	res.Destination = dst

	if err := x.ensureDir(filepath.Dir(dst)); err != nil {
		x.logger.Warn("failed to create directory", "path", filepath.Dir(dst), "error", err)
		return x.result(res, StatusFailed, err)
	}

	status := StatusCopied
	if info, err := os.Stat(dst); err == nil {
		if info.IsDir() {
			err := fmt.Errorf("destination %s is a directory", dst)
			x.logger.Warn("failed to copy", "path", e.Path, "error", err)
			return x.result(res, StatusFailed, err)
		}
		x.logger.Warn(dst + " already exists - overwriting")
		status = StatusOverwritten
	} else if !errors.Is(err, os.ErrNotExist) {
		x.logger.Warn("failed to stat destination", "path", dst, "error", err)
		return x.result(res, StatusFailed, err)
	}

	x.logger.Debug("Copying file", "src", src, "dst", dst)
	n, err := utils.CopyFile(src, dst, utils.CopyOptions{PreserveTimes: x.opts.PreserveTimes})
	if err != nil {
		x.logger.Warn("failed to copy", "path", e.Path, "error", err)
		return x.result(res, StatusFailed, err)
	}
	x.logger.Debug("Copied file", "path", e.Path, "size", humanize.Bytes(uint64(n)))

	res.Bytes = n
	return x.result(res, status, nil)
}

func (x *Extractor) result(res CopyResult, status CopyStatus, err error) CopyResult {
	res.Status = status
	res.Err = err
	return res
}

func (x *Extractor) ensureDir(dir string) error {
	if x.createdDirs.Contains(dir) {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	x.createdDirs.Add(dir)
	return nil
}
