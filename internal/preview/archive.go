package preview

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var zipMagic = []byte("PK\x03\x04")

// isZip sniffs the local file header signature.
func isZip(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	head := make([]byte, len(zipMagic))
	if _, err := io.ReadFull(file, head); err != nil {
		return false
	}
	return bytes.Equal(head, zipMagic)
}

// extractZip unpacks every regular file of the archive under destDir.
func extractZip(zipPath, destDir string) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("%w: opening zip file: %v", ErrParse, err)
	}
	defer reader.Close()

	root := filepath.Clean(destDir) + string(os.PathSeparator)
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		target := filepath.Join(destDir, file.Name)
		if !strings.HasPrefix(target, root) {
			return fmt.Errorf("%w: illegal path in archive: %s", ErrParse, file.Name)
		}
		if err := extractFile(file, target); err != nil {
			return fmt.Errorf("extracting %s: %w", file.Name, err)
		}
	}
	return nil
}

func extractFile(file *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// findByExtension returns the first file under dir, in lexical order,
// whose extension matches ext case-insensitively.
func findByExtension(dir, ext string) (string, error) {
	var matches []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ext) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: no %s file in archive", ErrResourceNotFound, ext)
	}
	sort.Strings(matches)
	return matches[0], nil
}
