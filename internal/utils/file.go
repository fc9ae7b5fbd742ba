package utils

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyFile copies a file from src to dst, creating parent directories.
func CopyFile(src, dst string) error {
	if err := EnsureParent(dst); err != nil {
		return err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}

// CopyDir copies the tree rooted at src into dst, preserving structure.
// Empty directories are recreated too.
func CopyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return CopyFile(path, target)
	})
}

// MoveFile renames src to dst, falling back to copy-and-delete when the two
// paths sit on different filesystems.
func MoveFile(src, dst string) error {
	if err := EnsureParent(dst); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}
