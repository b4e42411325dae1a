package dataset

import (
	"fmt"
	"os"
)

// EnsureDir creates dir and its parents if missing.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// RemoveDirIfExists deletes dir and everything below it.
func RemoveDirIfExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove directory %s: %w", dir, err)
	}
	return nil
}
