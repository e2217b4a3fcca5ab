package utils

import (
	"io"
	"os"
)

// BackupFile menyalin file ke <path>.backup sebelum di-overwrite.
// Backup lama ditimpa, jadi selalu ada satu generasi terakhir yang bisa
// dipulihkan manual kalau file utama corrupt.
func BackupFile(path string) error {
	sourceFile, err := os.Open(path)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(path + ".backup")
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	return err
}
