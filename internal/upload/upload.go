package upload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/rutinify/internal/importer"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int // unchanged since the last run
	FilesExisting int // routine name already taken on the server
	FilesRejected int // invalid rows, see the log for problems
	FilesErrored  int

	Exercises int
	Sets      int
}

// Uploader walks a directory of routine CSV files and imports each new or
// changed one into the rutinify server. The routine name comes from the
// file name.
type Uploader struct {
	client *Client
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. In dry-run mode files are validated by the
// server but neither imported nor recorded in the state database.
func New(client *Client, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		dir:    dir,
		dryRun: dryRun,
		log:    log,
	}
}

// Run executes the upload pipeline. A failing file does not stop the run;
// only a failure to list the directory or to use the state database does.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := FindCSVFiles(u.dir)
	if err != nil {
		return &u.stats, err
	}
	u.stats.FilesTotal = len(files)

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		if err := u.processFile(ctx, rel); err != nil {
			return &u.stats, err
		}
	}
	return &u.stats, nil
}

func (u *Uploader) processFile(ctx context.Context, rel string) error {
	path := filepath.Join(u.dir, rel)
	info, err := os.Stat(path)
	if err != nil {
		u.log.Warn("stat failed", "file", rel, "error", err)
		u.stats.FilesErrored++
		return nil
	}
	hash, err := HashFile(path)
	if err != nil {
		u.log.Warn("hash failed", "file", rel, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	routine, done, err := u.state.ImportedAs(rel, info.Size(), hash)
	if err != nil {
		return fmt.Errorf("checking state for %s: %w", rel, err)
	}
	if done {
		u.log.Debug("unchanged, skipping", "file", rel, "routine", routine)
		u.stats.FilesSkipped++
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		u.log.Warn("read failed", "file", rel, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	name := importer.RoutineNameFromFilename(rel)
	stats, err := u.client.ImportCSV(ctx, name, data, u.dryRun)

	var rejected *RejectedError
	switch {
	case errors.As(err, &rejected):
		u.stats.FilesRejected++
		for _, p := range rejected.Problems {
			u.log.Warn("invalid row", "file", rel, "row", p.Row, "field", p.Field, "message", p.Message)
		}
		return nil
	case errors.Is(err, ErrRoutineExists):
		u.stats.FilesExisting++
		u.log.Info("routine already on server", "file", rel, "routine", name)
		// Nothing to retry until the file changes.
		if !u.dryRun {
			return u.mark(rel, info.Size(), hash, name)
		}
		return nil
	case err != nil:
		u.stats.FilesErrored++
		u.log.Error("upload failed", "file", rel, "error", err)
		return nil
	}

	u.stats.Exercises += stats.Exercises
	u.stats.Sets += stats.Sets
	if u.dryRun {
		u.log.Info("dry run: file is valid", "file", rel, "routine", name, "days", stats.Days, "exercises", stats.Exercises)
		return nil
	}

	u.stats.FilesUploaded++
	u.log.Info("routine uploaded", "file", rel, "routine", name, "days", stats.Days, "exercises", stats.Exercises)
	return u.mark(rel, info.Size(), hash, name)
}

func (u *Uploader) mark(rel string, size int64, hash, routine string) error {
	if err := u.state.MarkImported(rel, size, hash, routine); err != nil {
		return fmt.Errorf("marking %s: %w", rel, err)
	}
	return nil
}

// FindCSVFiles lists the .csv files below dir as sorted relative paths.
func FindCSVFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".csv") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
