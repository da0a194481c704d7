// Package filestore keeps training artifacts as files on the local disk
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"kickpredict/domain/core"
	"kickpredict/domain/ratetable"
	"kickpredict/ports"

	"github.com/goccy/go-json"
)

const (
	ModelFile  = "model.json"
	ReportFile = "training_report.md"

	// CurrentFile points at the published run directory, relative to BaseDir
	CurrentFile = "CURRENT"
	// RunsDir holds one directory per published run
	RunsDir = "runs"

	// keepRuns is how many run directories survive pruning, current included
	keepRuns = 2
)

// Store implements ports.ArtifactStore on the local filesystem. Every write
// goes to a temporary file first and is renamed into place, so readers never
// see a partially written artifact.
//
// SaveRun writes a whole run into its own directory under runs/ and then
// swaps the CURRENT pointer with a single rename. Until a run has been
// published, artifacts live directly in BaseDir.
type Store struct {
	BaseDir string

	// write is replaced in tests to simulate failing disks
	write func(dir, file string, data []byte) error
}

// NewStore creates a store rooted at baseDir
func NewStore(baseDir string) *Store {
	return &Store{BaseDir: baseDir}
}

// EnsureBaseDir creates the base directory if it doesn't exist
func (s *Store) EnsureBaseDir() error {
	return os.MkdirAll(s.BaseDir, 0755)
}

// ActiveDir is the directory artifacts are currently read from
func (s *Store) ActiveDir() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.BaseDir, CurrentFile))
	if errors.Is(err, fs.ErrNotExist) {
		return s.BaseDir, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", CurrentFile, err)
	}
	rel := strings.TrimSpace(string(data))
	if rel == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%s holds invalid run directory %q", CurrentFile, rel)
	}
	return filepath.Join(s.BaseDir, rel), nil
}

// TablePath is the file holding the named rate table in the active directory
func (s *Store) TablePath(name string) string {
	dir, err := s.ActiveDir()
	if err != nil {
		dir = s.BaseDir
	}
	return filepath.Join(dir, name+".json")
}

// SaveRun stages every artifact of the run in a fresh directory, then makes
// it current. Older run directories are pruned once the switch succeeded.
func (s *Store) SaveRun(ctx context.Context, run ports.RunArtifacts) error {
	if err := run.Tables.Validate(); err != nil {
		return err
	}
	if len(run.Model) == 0 {
		return fmt.Errorf("run %s has no model artifact", run.RunID)
	}

	runsDir := filepath.Join(s.BaseDir, RunsDir)
	if err := os.MkdirAll(runsDir, 0755); err != nil {
		return fmt.Errorf("failed to create runs directory: %w", err)
	}
	prefix := run.RunID
	if prefix == "" || !filepath.IsLocal(prefix) || strings.ContainsRune(prefix, filepath.Separator) {
		prefix = "run"
	}
	stage, err := os.MkdirTemp(runsDir, prefix+"-")
	if err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}
	published := false
	defer func() {
		if !published {
			os.RemoveAll(stage)
		}
	}()

	if err := s.writeTables(ctx, stage, run.Tables); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.writeFile(stage, ModelFile, run.Model); err != nil {
		return err
	}
	if err := s.writeFile(stage, ReportFile, run.Report); err != nil {
		return err
	}

	// The pointer rename is the commit point
	pointer := filepath.Join(RunsDir, filepath.Base(stage))
	if err := s.writeFile(s.BaseDir, CurrentFile, []byte(pointer+"\n")); err != nil {
		return err
	}
	published = true

	s.pruneRuns(filepath.Base(stage))
	return nil
}

// pruneRuns removes the oldest run directories beyond keepRuns. Failures are
// ignored; a stale directory is harmless.
func (s *Store) pruneRuns(current string) {
	entries, err := os.ReadDir(filepath.Join(s.BaseDir, RunsDir))
	if err != nil {
		return
	}
	type runDir struct {
		name    string
		modTime int64
	}
	var dirs []runDir
	for _, e := range entries {
		if !e.IsDir() || e.Name() == current {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		dirs = append(dirs, runDir{name: e.Name(), modTime: info.ModTime().UnixNano()})
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].modTime > dirs[j].modTime })
	for i := keepRuns - 1; i < len(dirs); i++ {
		os.RemoveAll(filepath.Join(s.BaseDir, RunsDir, dirs[i].name))
	}
}

// SaveRateTables overwrites both table files in the active directory
func (s *Store) SaveRateTables(ctx context.Context, tables ratetable.Set) error {
	if err := tables.Validate(); err != nil {
		return err
	}
	dir, err := s.ActiveDir()
	if err != nil {
		return err
	}
	return s.writeTables(ctx, dir, tables)
}

func (s *Store) writeTables(ctx context.Context, dir string, tables ratetable.Set) error {
	for _, t := range tables.Tables() {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := json.MarshalIndent(t.Entries(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal rate table %s: %w", t.Name(), err)
		}
		if err := s.writeFile(dir, t.Name()+".json", data); err != nil {
			return err
		}
	}
	return nil
}

// LoadRateTables reads both table files
func (s *Store) LoadRateTables(ctx context.Context) (ratetable.Set, error) {
	dir, err := s.ActiveDir()
	if err != nil {
		return ratetable.Set{}, err
	}
	byCat, err := loadTable(dir, ratetable.NameByCategory)
	if err != nil {
		return ratetable.Set{}, err
	}
	byCountry, err := loadTable(dir, ratetable.NameByCountry)
	if err != nil {
		return ratetable.Set{}, err
	}
	set := ratetable.Set{ByCategory: byCat, ByCountry: byCountry}
	if err := set.Validate(); err != nil {
		return ratetable.Set{}, err
	}
	return set, nil
}

func loadTable(dir, name string) (*ratetable.Table, error) {
	data, err := read(dir, name+".json")
	if err != nil {
		return nil, err
	}
	var means map[string]float64
	if err := json.Unmarshal(data, &means); err != nil {
		return nil, fmt.Errorf("failed to parse rate table %s: %w", name, err)
	}
	return ratetable.New(name, means), nil
}

// SaveModel overwrites the model artifact in the active directory
func (s *Store) SaveModel(ctx context.Context, payload []byte) error {
	return s.saveActive(ModelFile, payload)
}

// LoadModel reads the model artifact
func (s *Store) LoadModel(ctx context.Context) ([]byte, error) {
	return s.loadActive(ModelFile)
}

// SaveReport overwrites the training report in the active directory
func (s *Store) SaveReport(ctx context.Context, markdown []byte) error {
	return s.saveActive(ReportFile, markdown)
}

// LoadReport reads the training report
func (s *Store) LoadReport(ctx context.Context) ([]byte, error) {
	return s.loadActive(ReportFile)
}

func (s *Store) saveActive(file string, data []byte) error {
	dir, err := s.ActiveDir()
	if err != nil {
		return err
	}
	return s.writeFile(dir, file, data)
}

func (s *Store) loadActive(file string) ([]byte, error) {
	dir, err := s.ActiveDir()
	if err != nil {
		return nil, err
	}
	return read(dir, file)
}

func read(dir, file string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(dir, file))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, core.NewNotFoundError("artifact", file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	return data, nil
}

func (s *Store) writeFile(dir, file string, data []byte) error {
	if s.write != nil {
		return s.write(dir, file, data)
	}
	return writeAtomic(dir, file, data)
}

func writeAtomic(dir, file string, data []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+file+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", file, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", file, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", file, err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, file)); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", file, err)
	}
	return nil
}
