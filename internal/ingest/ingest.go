// Package ingest classifies uploads at ingress and manages the per-run
// workspace: archive extraction, image discovery, result bundling.
package ingest

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"brandmark/internal/domain"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrUnsafePath      = errors.New("archive entry escapes destination")
)

// Classify decides once, at ingress, whether an upload is an archive or an
// image. The declared content type wins; the filename extension is the
// fallback. Unrecognized uploads are reported, not failed.
func Classify(filename, contentType string) (domain.UploadKind, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	if domain.ZipMimes[contentType] || ext == ".zip" {
		return domain.KindArchive, nil
	}
	if domain.ImageMimes[contentType] || domain.ImageExtensions[ext] {
		return domain.KindImage, nil
	}
	return "", ErrUnsupportedType
}

// IsImageFile reports whether the filename carries an accepted image
// extension. Hidden files are never images.
func IsImageFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return domain.ImageExtensions[strings.ToLower(filepath.Ext(base))]
}

// WriteFile stores an upload under dir keeping its base name.
func WriteFile(dir, filename string, r io.Reader) (string, error) {
	dest := filepath.Join(dir, filepath.Base(filename))
	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return dest, nil
}

// ListImages walks root and returns the relative paths of every accepted
// image, preserving nested folder structure.
func ListImages(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !IsImageFile(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
