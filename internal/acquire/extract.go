package acquire

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/beacon-hq/setup-beacon/internal/messages"
)

// extractArchive unpacks archivePath into destDir according to ext.
func extractArchive(archivePath string, destDir string, ext string) error {
	switch ext {
	case ".tar.gz", ".tgz":
		return extractTarGz(archivePath, destDir)
	case ".zip":
		return extractZip(archivePath, destDir)
	default:
		return fmt.Errorf(messages.InstallUnsupportedArchiveFmt, ext)
	}
}

// extractTarGz unpacks a gzip-compressed tarball, preserving file modes.
func extractTarGz(archivePath string, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return err
	}
	defer func() { _ = gz.Close() }()

	reader := tar.NewReader(gz)
	for {
		header, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		dest, err := safeJoin(destDir, header.Name)
		if err != nil {
			return err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(dest, reader, os.FileMode(header.Mode).Perm()); err != nil {
				return err
			}
		default:
			// Symlinks and special files are not expected in release
			// archives; skip them rather than reproduce them.
		}
	}
}

// extractZip unpacks a zip archive, preserving file modes.
func extractZip(archivePath string, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	for _, entry := range reader.File {
		dest, err := safeJoin(destDir, entry.Name)
		if err != nil {
			return err
		}
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
			continue
		}
		src, err := entry.Open()
		if err != nil {
			return err
		}
		writeErr := writeEntry(dest, src, entry.Mode().Perm())
		_ = src.Close()
		if writeErr != nil {
			return writeErr
		}
	}
	return nil
}

// writeEntry writes an archive entry to dest, creating parent directories.
func writeEntry(dest string, src io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	if perm == 0 {
		perm = 0o644
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// safeJoin joins name under destDir, rejecting entries that escape it.
func safeJoin(destDir string, name string) (string, error) {
	dest := filepath.Join(destDir, filepath.FromSlash(name))
	if dest != destDir && !strings.HasPrefix(dest, destDir+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes extraction root", name)
	}
	return dest, nil
}
