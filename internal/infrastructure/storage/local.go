package storage

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"datahub-backend/internal/shared/utils"
)

// ExportDirPrefix names the temp directories holding produced archives.
const ExportDirPrefix = "datahub-export-"

// LocalStorage manages the uploads tree under WorkingDir.
type LocalStorage struct {
	WorkingDir string
}

func NewLocalStorage(workingDir string) *LocalStorage {
	return &LocalStorage{WorkingDir: workingDir}
}

// DatasetDir is where the files of a dataset live once it is created.
func (s *LocalStorage) DatasetDir(userID, datasetID int64) string {
	return utils.DatasetFolder(s.WorkingDir, userID, datasetID)
}

// TempDir is the per-user staging folder for uploads not yet attached to a dataset.
func (s *LocalStorage) TempDir(userID int64) string {
	return filepath.Join(s.WorkingDir, "uploads", "temp", fmt.Sprintf("%d", userID))
}

// MoveFile moves src into dstDir, creating dstDir when absent.
func (s *LocalStorage) MoveFile(src, dstDir string) error {
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dstDir, err)
	}

	dst := filepath.Join(dstDir, filepath.Base(src))
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("move %s: %w", src, err)
	}

	// Rename fails across devices; fall back to copy and remove.
	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("move %s: %w", src, err)
	}
	return os.Remove(src)
}

// ClearDirectory removes everything inside dir, keeping dir itself.
func (s *LocalStorage) ClearDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", dir, err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("remove %s: %w", e.Name(), err)
		}
	}
	return nil
}

// ZipDirectory writes every regular file under srcDir into archivePath, each
// entry named rootFolder/<path relative to srcDir>. A missing srcDir gives a
// valid empty archive. On failure the partial archive is removed.
func (s *LocalStorage) ZipDirectory(srcDir, archivePath, rootFolder string) (err error) {
	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	zw := zip.NewWriter(out)
	defer func() {
		if cerr := zw.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("finalize archive: %w", cerr)
		}
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close archive: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(archivePath)
		}
	}()

	if _, statErr := os.Stat(srcDir); errors.Is(statErr, fs.ErrNotExist) {
		return nil
	}

	return filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		return addToZip(zw, p, path.Join(rootFolder, filepath.ToSlash(rel)))
	})
}

func addToZip(zw *zip.Writer, src, name string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = strings.TrimPrefix(name, "/")
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
