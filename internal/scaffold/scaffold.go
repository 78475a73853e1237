// Package scaffold creates starter project files for tabmeta init.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed all:templates
var templatesFS embed.FS

// GetTemplatesFS returns the embedded templates filesystem for testing
// purposes.
func GetTemplatesFS() embed.FS {
	return templatesFS
}

// Scaffolder writes starter files for a new extraction project.
type Scaffolder struct {
	verbose bool
}

// NewScaffolder creates a new Scaffolder instance.
func NewScaffolder(verbose bool) *Scaffolder {
	return &Scaffolder{
		verbose: verbose,
	}
}

// CreateProject writes the default template into targetPath. Existing files
// are never overwritten; hitting one aborts before anything is written.
func (s *Scaffolder) CreateProject(targetPath string) error {
	const templatePath = "templates/default"

	// Refuse to clobber anything the user already has
	var conflicts []string
	err := fs.WalkDir(templatesFS, templatePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		relPath, relErr := filepath.Rel(templatePath, path)
		if relErr != nil {
			return relErr
		}
		if _, statErr := os.Stat(filepath.Join(targetPath, relPath)); statErr == nil {
			conflicts = append(conflicts, relPath)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to inspect target directory: %w", err)
	}
	if len(conflicts) > 0 {
		return fmt.Errorf("refusing to overwrite existing file(s) %v in %s", conflicts, targetPath)
	}

	if err := os.MkdirAll(targetPath, 0o755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	return fs.WalkDir(templatesFS, templatePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == templatePath {
			return nil
		}

		relPath, err := filepath.Rel(templatePath, path)
		if err != nil {
			return err
		}
		targetFilePath := filepath.Join(targetPath, relPath)

		if d.IsDir() {
			s.logVerbose("Creating directory: %s", relPath)
			return os.MkdirAll(targetFilePath, 0o755)
		}

		content, err := templatesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", path, err)
		}

		s.logVerbose("Creating file: %s", relPath)
		if err := os.WriteFile(targetFilePath, content, 0o644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", targetFilePath, err)
		}
		return nil
	})
}

func (s *Scaffolder) logVerbose(format string, args ...interface{}) {
	if s.verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] "+format+"\n", args...)
	}
}
