// Package filex has small file helpers for the CLI.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes data to name, creating missing parent directories first.
func WriteFile(name string, data []byte) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0o770); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(name, data, 0o640); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
