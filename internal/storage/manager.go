package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dshills/ticketvec-mcp/pkg/types"
)

// storeSidecars are the files SQLite keeps next to a WAL-mode database
var storeSidecars = []string{"-wal", "-shm", "-journal"}

// Manager maps project names to store files under one directory and owns
// their lifecycle.
type Manager struct {
	dir       string
	dimension int
	logger    *slog.Logger
}

// NewManager creates a manager rooted at dir. New stores get the given
// embedding dimension; existing stores keep the one recorded at creation.
func NewManager(dir string, dimension int, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{dir: dir, dimension: dimension, logger: logger}
}

// Dir returns the directory holding the stores
func (m *Manager) Dir() string {
	return m.dir
}

// Dimension returns the embedding dimension given to new stores
func (m *Manager) Dimension() int {
	return m.dimension
}

// Path returns the store file for a project
func (m *Manager) Path(project string) (string, error) {
	name, err := EncodeProjectName(project)
	if err != nil {
		return "", err
	}
	return filepath.Join(m.dir, name), nil
}

// Exists reports whether a store file exists for the project
func (m *Manager) Exists(project string) bool {
	path, err := m.Path(project)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Create creates an empty store for the project and returns its path.
// A failed schema application leaves no file behind.
func (m *Manager) Create(ctx context.Context, project string) (string, error) {
	path, err := m.Path(project)
	if err != nil {
		return "", err
	}
	if m.dimension <= 0 {
		return "", storeError(types.ErrCreateFailed, project, nil, "embedding dimension must be positive, got %d", m.dimension)
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", storeError(types.ErrCreateFailed, project, err, "create store directory %s", m.dir)
	}

	// Claim the file atomically so two creators cannot both succeed
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return "", storeError(types.ErrAlreadyExists, project, nil, "project %q", project)
	}
	if err != nil {
		return "", storeError(types.ErrCreateFailed, project, err, "claim store file %s", path)
	}
	_ = f.Close()

	if err := m.initialize(ctx, path, project); err != nil {
		removeStoreFiles(path)
		return "", storeError(types.ErrCreateFailed, project, err, "initialize store %s", path)
	}

	m.logger.Info("store created", "project", project, "path", path, "dimension", m.dimension)
	return path, nil
}

func (m *Manager) initialize(ctx context.Context, path, project string) error {
	db, err := openDatabase(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := ApplyMigrations(ctx, db, m.dimension); err != nil {
		return err
	}
	if err := writeMeta(ctx, db, metaDimension, strconv.Itoa(m.dimension)); err != nil {
		return err
	}
	return writeMeta(ctx, db, metaProject, project)
}

// Open opens a fresh connection to an existing store. The caller owns the
// returned store and must close it.
func (m *Manager) Open(ctx context.Context, project string) (*Store, error) {
	path, err := m.Path(project)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storeError(types.ErrNotFound, project, nil, "project %q", project)
		}
		return nil, storeError(types.ErrOpenFailed, project, err, "stat store %s", path)
	}

	db, err := openDatabase(ctx, path)
	if err != nil {
		return nil, storeError(types.ErrOpenFailed, project, err, "open store %s", path)
	}

	store, err := m.attach(ctx, db, project, path)
	if err != nil {
		_ = db.Close()
		return nil, storeError(types.ErrOpenFailed, project, err, "open store %s", path)
	}
	return store, nil
}

func (m *Manager) attach(ctx context.Context, db *sql.DB, project, path string) (*Store, error) {
	if _, err := verifyVectorSupport(ctx, db); err != nil {
		return nil, err
	}

	raw, err := readMeta(ctx, db, metaDimension)
	if err != nil {
		return nil, fmt.Errorf("read store dimension: %w", err)
	}
	dimension, err := strconv.Atoi(raw)
	if err != nil || dimension <= 0 {
		return nil, fmt.Errorf("invalid store dimension %q", raw)
	}

	// Bring stores written by older builds up to date
	if err := ApplyMigrations(ctx, db, dimension); err != nil {
		return nil, err
	}

	return &Store{db: db, project: project, path: path, dimension: dimension}, nil
}

// Delete removes a project's store file and its sidecars. Callers must make
// sure no other operation on the project is in flight.
func (m *Manager) Delete(ctx context.Context, project string) error {
	path, err := m.Path(project)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storeError(types.ErrDeleteNotFound, project, nil, "project %q", project)
		}
		return storeError(types.ErrWriteFailed, project, err, "remove store %s", path)
	}
	removeStoreFiles(path)

	m.logger.Info("store deleted", "project", project, "path", path)
	return nil
}

// Count returns the number of tickets in a project's store. Any failure,
// including a missing store, is logged and reported as zero.
func (m *Manager) Count(ctx context.Context, project string) int {
	n, err := m.CountTickets(ctx, project)
	if err != nil {
		m.logger.Error("count failed", "project", project, "error", err)
		return 0
	}
	return n
}

// CountTickets is Count with the failure surfaced
func (m *Manager) CountTickets(ctx context.Context, project string) (int, error) {
	store, err := m.Open(ctx, project)
	if err != nil {
		return 0, err
	}
	defer func() { _ = store.Close() }()
	return store.Count(ctx)
}

// List returns the names of all projects with a store, sorted
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, storeError(types.ErrReadFailed, "", err, "list store directory %s", m.dir)
	}

	projects := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), StoreExtension) {
			continue
		}
		project, err := DecodeProjectName(entry.Name())
		if err != nil {
			m.logger.Debug("skipping foreign file in store directory", "file", entry.Name(), "error", err)
			continue
		}
		projects = append(projects, project)
	}
	sort.Strings(projects)
	return projects, nil
}

func removeStoreFiles(path string) {
	_ = os.Remove(path)
	for _, suffix := range storeSidecars {
		_ = os.Remove(path + suffix)
	}
}
