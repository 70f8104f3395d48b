// Package project loads and saves .erd project files and watches them
// for external edits. Files are JSON; saves are atomic so a watcher on
// the same file never sees a half-written project.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/travisdwitt/erdling/internal/model"
)

// FileExtension is the canonical project file suffix.
const FileExtension = ".erd"

// EnsureExtension appends the project suffix when missing.
func EnsureExtension(path string) string {
	if strings.EqualFold(filepath.Ext(path), FileExtension) {
		return path
	}
	return path + FileExtension
}

// Manager pairs a project with the file it came from and tracks
// unsaved changes.
type Manager struct {
	path    string
	project *model.Project
	dirty   bool
}

// NewManager creates a manager over a fresh project seeded with one
// empty diagram. The manager has no path until the first SaveAs.
func NewManager(name string) *Manager {
	p := model.NewProject(name)
	d := model.NewDiagram("Main")
	d.IsActive = true
	p.Diagrams = append(p.Diagrams, d)
	p.LastActiveDiagram = d.Name
	return &Manager{project: p, dirty: true}
}

// Open reads, parses and normalizes a project file. Referential
// problems inside the file do not fail the load; callers that care run
// Validate and surface the result as warnings.
func Open(path string) (*Manager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project: %w", err)
	}

	var p model.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing project %s: %w", filepath.Base(path), err)
	}
	p.Normalize()

	return &Manager{path: path, project: &p}, nil
}

// Project returns the managed project.
func (m *Manager) Project() *model.Project { return m.project }

// Path returns the backing file, empty for a never-saved project.
func (m *Manager) Path() string { return m.path }

// Dirty reports whether there are unsaved changes.
func (m *Manager) Dirty() bool { return m.dirty }

// MarkDirty flags unsaved changes. The UI calls this after any
// mutation that should survive a close.
func (m *Manager) MarkDirty() { m.dirty = true }

// Save writes the project to its backing file.
func (m *Manager) Save() error {
	if m.path == "" {
		return fmt.Errorf("project has no file; use SaveAs")
	}
	return m.SaveAs(m.path)
}

// SaveAs writes the project atomically (write temp + rename) and
// adopts the path for future saves.
func (m *Manager) SaveAs(path string) error {
	path = EnsureExtension(path)

	data, err := json.MarshalIndent(m.project, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling project: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing temp project file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming project file: %w", err)
	}

	m.path = path
	m.dirty = false
	return nil
}

// Reload re-reads the backing file, replacing the in-memory project.
// Unsaved changes are lost; callers confirm before invoking this.
func (m *Manager) Reload() (*model.Project, error) {
	if m.path == "" {
		return nil, fmt.Errorf("project has no file")
	}
	fresh, err := Open(m.path)
	if err != nil {
		return nil, err
	}
	m.project = fresh.project
	m.dirty = false
	return m.project, nil
}

// Validate reports referential problems in the loaded project.
func (m *Manager) Validate() error { return m.project.Validate() }
