// File: lixenwraith/goodconf/io.go
package goodconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteTemplate writes a documented template to path atomically. The format
// follows the extension; anything unrecognized is written as JSON.
func (c *Config) WriteTemplate(path string, overrides map[string]any) error {
	return c.writeTree(path, initialPicker(overrides))
}

// Save writes the current configuration to path atomically, in the format
// given by the extension. Required fields without a value are left out.
func (c *Config) Save(path string) error {
	return c.writeTree(path, currentPicker)
}

// SaveSource writes only the values supplied by one source.
func (c *Config) SaveSource(path string, source Source) error {
	return c.writeTree(path, sourcePicker(source))
}

func (c *Config) writeTree(path string, pick valuePicker) error {
	format := detectFileFormat(path)
	content, err := render(format, c.templateTree(pick), c.Description())
	if err != nil {
		return err
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return atomicWriteFile(path, []byte(content))
}

// atomicWriteFile performs atomic file write
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // Clean up on any error

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
