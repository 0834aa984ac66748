// Package file provides file-based persistence, one JSON document per entity.
// Suited for development and tests; production deployments use postgresql.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dealflow/dealflow/pkg/persistence"
)

const (
	workflowsDir  = "workflows"
	stepsDir      = "steps"
	executionsDir = "executions"
)

type Persistence struct {
	root string
}

func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{root: cleanRoot}
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// readDoc loads one entity file into out; returns os.ErrNotExist when absent.
func (p *Persistence) readDoc(dir, id string, out any) error {
	filePath := filepath.Clean(path.Join(p.root, dir, id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s/%s: %w", dir, id, err)
	}

	return nil
}

func (p *Persistence) writeDoc(dir, id string, doc any) error {
	if err := os.MkdirAll(path.Join(p.root, dir), 0750); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", dir, err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", dir, id, err)
	}

	return os.WriteFile(path.Join(p.root, dir, id+".json"), data, 0600)
}

func (p *Persistence) deleteDoc(dir, id string) error {
	err := os.Remove(path.Join(p.root, dir, id+".json"))
	if err != nil && os.IsNotExist(err) {
		return nil
	}

	return err
}

// listIDs returns the entity IDs stored under dir.
func (p *Persistence) listIDs(dir string) ([]string, error) {
	root := os.DirFS(path.Join(p.root, dir))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s files: %w", dir, err)
	}

	ids := make([]string, 0, len(jsonFiles))
	for _, file := range jsonFiles {
		ids = append(ids, strings.TrimSuffix(file, ".json"))
	}

	return ids, nil
}
