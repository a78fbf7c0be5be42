// Package dirsize measures the on-disk size of directory trees.
package dirsize

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"path/filepath"
)

const bytesPerMiB = 1024 * 1024

// Bytes returns the total size in bytes of all regular files under dir.
// A missing dir counts as empty.
func Bytes(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if p == dir && errors.Is(walkErr, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("dirsize: %s: %w", dir, err)
	}
	return total, nil
}

// MiB converts bytes to binary megabytes.
func MiB(b int64) float64 {
	return float64(b) / bytesPerMiB
}

// Round2 rounds a megabyte figure to two decimals for reports.
func Round2(mb float64) float64 {
	return math.Round(mb*100) / 100
}
