package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"git.home.luguber.info/inful/umlbuilder/internal/logfields"
)

// StagingPrefix starts the name of every staging directory.
const StagingPrefix = ".umlbuilder-"

// Manager handles one staging directory below a destination directory.
type Manager struct {
	destDir string
	tempDir string
	logger  *slog.Logger
}

// NewManager creates a staging manager for destDir. Nothing is created until Create.
func NewManager(destDir string) *Manager {
	return &Manager{
		destDir: destDir,
		logger:  slog.Default(),
	}
}

// WithLogger sets a custom logger.
func (m *Manager) WithLogger(logger *slog.Logger) *Manager {
	m.logger = logger
	return m
}

// Create makes a fresh staging directory. The destination must already exist.
func (m *Manager) Create() error {
	if m.tempDir != "" {
		return fmt.Errorf("staging directory already created: %s", m.tempDir)
	}
	dir, err := os.MkdirTemp(m.destDir, StagingPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	m.tempDir = dir
	m.logger.Debug("Created staging directory", logfields.Path(dir))
	return nil
}

// GetPath returns the staging directory, empty before Create.
func (m *Manager) GetPath() string {
	return m.tempDir
}

// Commit moves every regular file of the staging directory into the
// destination, replacing existing files, and removes the staging directory.
// It returns the destination paths in lexical order.
func (m *Manager) Commit() ([]string, error) {
	if m.tempDir == "" {
		return nil, fmt.Errorf("workspace not created")
	}
	entries, err := os.ReadDir(m.tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read staging directory: %w", err)
	}

	moved := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		src := filepath.Join(m.tempDir, e.Name())
		dst := filepath.Join(m.destDir, e.Name())
		if err := os.Rename(src, dst); err != nil {
			return moved, fmt.Errorf("failed to move %s into place: %w", e.Name(), err)
		}
		moved = append(moved, dst)
	}
	sort.Strings(moved)

	if err := m.Cleanup(); err != nil {
		return moved, err
	}
	return moved, nil
}

// Cleanup removes the staging directory. It is safe to call more than once.
func (m *Manager) Cleanup() error {
	if m.tempDir == "" {
		return nil
	}
	if err := os.RemoveAll(m.tempDir); err != nil {
		return fmt.Errorf("failed to cleanup staging directory: %w", err)
	}
	m.logger.Debug("Cleaned up staging directory", logfields.Path(m.tempDir))
	m.tempDir = ""
	return nil
}
