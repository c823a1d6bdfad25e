package fileutil

import (
	"errors"
	"fmt"
	"os"
)

// PartialSuffix marks a file that is still being written.
const PartialSuffix = ".partial"

// RemoveIfExists deletes path, treating a missing file as success.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// WriteAtomic lets write fill a sibling "<path>.partial" file and then renames
// it over path. On any failure the partial file is removed and path is left
// as it was.
func WriteAtomic(path string, write func(partial string) error) error {
	partial := path + PartialSuffix
	if err := RemoveIfExists(partial); err != nil {
		return fmt.Errorf("remove stale partial %s: %w", partial, err)
	}
	if err := write(partial); err != nil {
		_ = os.Remove(partial)
		return err
	}
	if err := os.Rename(partial, path); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("rename %s: %w", partial, err)
	}
	return nil
}
