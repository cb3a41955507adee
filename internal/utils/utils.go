package utils

import (
	"os"
	"path/filepath"
)

// EnsureParentDir - Creates all missing parent directories of fileName
func EnsureParentDir(fileName string) (err error) {
	dir := filepath.Dir(fileName)
	if dir == "." || dir == "" {
		return
	}

	err = os.MkdirAll(dir, 0755)

	return
}

// FileExists - Returns true if fileName exists and is not a directory
func FileExists(fileName string) bool {
	stat, err := os.Stat(fileName)
	if err != nil {
		return false
	}

	return !stat.IsDir()
}
