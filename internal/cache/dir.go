package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/beacon-hq/setup-beacon/internal/messages"
)

// DirBackend stores entries in a shared local directory, one subdirectory per
// key. Saves commit through a temp file and rename so concurrent runs never
// observe a partially written entry.
type DirBackend struct {
	root string
}

// NewDirBackend returns a DirBackend rooted at root.
func NewDirBackend(root string) *DirBackend {
	return &DirBackend{root: root}
}

// Fetch copies the entry for key into destDir. A missing entry is a miss, not
// an error.
func (b *DirBackend) Fetch(_ context.Context, key string, destDir string) (bool, error) {
	entryDir := filepath.Join(b.root, key)
	entries, err := os.ReadDir(entryDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	found := false
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		src := filepath.Join(entryDir, entry.Name())
		dest := filepath.Join(destDir, entry.Name())
		if err := copyFile(src, dest, 0o755); err != nil {
			return false, err
		}
		found = true
	}
	return found, nil
}

// Store copies srcPath into the entry directory for key as destName under a
// file lock, committing via rename.
func (b *DirBackend) Store(_ context.Context, key string, srcPath string, destName string) error {
	if key == "" {
		return errors.New(messages.CacheKeyRequired)
	}
	if destName == "" {
		destName = filepath.Base(srcPath)
	}
	entryDir := filepath.Join(b.root, key)
	if err := os.MkdirAll(entryDir, 0o755); err != nil {
		return fmt.Errorf(messages.CacheCreateDirFmt, entryDir, err)
	}
	lockPath := entryDir + ".lock"
	return withFileLock(lockPath, func() error {
		tmp, err := os.CreateTemp(entryDir, filepath.Base(srcPath)+".tmp-*")
		if err != nil {
			return fmt.Errorf(messages.CacheCommitFmt, key, err)
		}
		tmpName := tmp.Name()
		committed := false
		defer func() {
			if !committed {
				_ = os.Remove(tmpName)
			}
		}()

		src, err := os.Open(srcPath)
		if err != nil {
			_ = tmp.Close()
			return fmt.Errorf(messages.CacheSourceMissingFmt, srcPath, err)
		}
		_, copyErr := io.Copy(tmp, src)
		_ = src.Close()
		if copyErr != nil {
			_ = tmp.Close()
			return fmt.Errorf(messages.CacheCopyFmt, srcPath, entryDir, copyErr)
		}
		if err := tmp.Sync(); err != nil {
			_ = tmp.Close()
			return fmt.Errorf(messages.CacheCommitFmt, key, err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf(messages.CacheCommitFmt, key, err)
		}
		if err := os.Chmod(tmpName, 0o755); err != nil {
			return fmt.Errorf(messages.CacheCommitFmt, key, err)
		}
		final := filepath.Join(entryDir, destName)
		if err := os.Rename(tmpName, final); err != nil {
			return fmt.Errorf(messages.CacheCommitFmt, key, err)
		}
		committed = true
		return nil
	})
}

// copyFile copies src to dest with the given permissions.
func copyFile(src string, dest string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf(messages.CacheCopyFmt, src, dest, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return fmt.Errorf(messages.CacheCopyFmt, src, dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf(messages.CacheCopyFmt, src, dest, err)
	}
	return out.Close()
}
