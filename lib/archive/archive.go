// Package archive bundles run artifacts into zip files.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// ZipFolder walks folder recursively and writes every file whose base name
// matches the given glob pattern into a zip archive at dest. Entry names are
// slash-separated paths relative to folder. Parent directories of dest are
// created as needed. It returns the number of files archived; an archive with
// zero entries is still written.
func ZipFolder(folder, dest, pattern string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, fmt.Errorf("create archive directory: %w", err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	w := zip.NewWriter(out)
	count := 0
	err = filepath.WalkDir(folder, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		matched, err := path.Match(pattern, d.Name())
		if err != nil {
			return fmt.Errorf("match %q: %w", pattern, err)
		}
		if !matched {
			return nil
		}
		rel, err := filepath.Rel(folder, p)
		if err != nil {
			return err
		}
		if err := addFile(w, p, filepath.ToSlash(rel), d); err != nil {
			return fmt.Errorf("archive %q: %w", rel, err)
		}
		count++
		return nil
	})
	if err != nil {
		w.Close()
		return count, err
	}
	if err := w.Close(); err != nil {
		return count, fmt.Errorf("finalize archive: %w", err)
	}
	return count, out.Close()
}

func addFile(w *zip.Writer, path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	entry, err := w.CreateHeader(header)
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
}
