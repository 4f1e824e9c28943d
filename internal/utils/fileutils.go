package utils

import (
	"github.com/spf13/afero"
)

func EnsureDirectory(fs afero.Fs, dirPath string) error {
	exists, err := afero.DirExists(fs, dirPath)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return fs.MkdirAll(dirPath, 0755)
}

func FileExists(fs afero.Fs, filePath string) bool {
	exists, err := afero.Exists(fs, filePath)
	return err == nil && exists
}

// RemoveIfExists deletes filePath, treating a missing file as success.
func RemoveIfExists(fs afero.Fs, filePath string) error {
	if filePath == "" || !FileExists(fs, filePath) {
		return nil
	}
	return fs.Remove(filePath)
}
