package ingest

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTestZip(t *testing.T, dir string, entries map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, "test.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestExtractArchive(t *testing.T) {
	dir := t.TempDir()
	archive := writeTestZip(t, dir, map[string]string{
		"front.png":            "png-bytes",
		"variants/red/a.jpg":   "jpg-bytes",
		"variants/blue/b.jpeg": "more-bytes",
	})

	dest := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(dest, 0o755))
	require.NoError(t, ExtractArchive(archive, dest))

	for rel, want := range map[string]string{
		"front.png":            "png-bytes",
		"variants/red/a.jpg":   "jpg-bytes",
		"variants/blue/b.jpeg": "more-bytes",
	} {
		data, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(rel)))
		require.NoError(t, err)
		require.Equal(t, want, string(data))
	}
}

func TestExtractArchive_ZipSlip(t *testing.T) {
	dir := t.TempDir()
	archive := writeTestZip(t, dir, map[string]string{
		"../evil.txt": "escaped",
	})

	dest := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(dest, 0o755))

	err := ExtractArchive(archive, dest)
	require.ErrorIs(t, err, ErrUnsafePath)

	_, statErr := os.Stat(filepath.Join(dir, "evil.txt"))
	require.True(t, os.IsNotExist(statErr))
}

func TestExtractArchive_Corrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.zip")
	require.NoError(t, os.WriteFile(path, []byte("not a zip at all"), 0o644))

	err := ExtractArchive(path, dir)
	require.Error(t, err)
}

func TestBundleDir_RoundTrip(t *testing.T) {
	src := t.TempDir()
	writeTestFile(t, src, "a.png")
	writeTestFile(t, src, "nested/b.png")

	var buf bytes.Buffer
	require.NoError(t, BundleDir(&buf, src))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	require.ElementsMatch(t, []string{"a.png", "nested/b.png"}, names)
}

func TestBundleDir_EmptyDir(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, BundleDir(&buf, t.TempDir()))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Empty(t, zr.File)
}
