package ingest

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ExtractArchive unpacks the ZIP at archivePath into destDir, mirroring
// nested folders. Entries resolving outside destDir are rejected.
func ExtractArchive(archivePath, destDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		// The reader is still usable on an insecure entry name; the
		// per-entry guard below rejects the offending entry itself.
		if !errors.Is(err, zip.ErrInsecurePath) {
			return fmt.Errorf("failed to open archive: %w", err)
		}
	}
	defer zr.Close()

	for _, entry := range zr.File {
		if err := extractEntry(entry, destDir); err != nil {
			return fmt.Errorf("failed to extract %q: %w", entry.Name, err)
		}
	}
	return nil
}

func extractEntry(entry *zip.File, destDir string) error {
	dest := filepath.Join(destDir, filepath.FromSlash(entry.Name))
	if !strings.HasPrefix(dest, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return ErrUnsafePath
	}

	if entry.FileInfo().IsDir() {
		return os.MkdirAll(dest, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

// BundleDir writes a ZIP of every file under root to w, with entry names
// relative to root.
func BundleDir(w io.Writer, root string) error {
	zw := zip.NewWriter(w)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		entry, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(entry, f)
		return err
	})
	if err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}
