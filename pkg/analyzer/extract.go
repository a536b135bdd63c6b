package analyzer

import (
	"archive/zip"
	"io"
	"path/filepath"
	"strings"

	"github.com/nwaples/rardecode/v2"
	"github.com/pkg/errors"

	"github.com/hondana/hondana/pkg/models"
)

// extractEntries reads every regular file out of an archive-based book.
func extractEntries(path, mediaType string) ([]entry, error) {
	switch mediaType {
	case models.MediaTypeZip, models.MediaTypeEpub:
		return extractZipEntries(path)
	case models.MediaTypeRar:
		return extractRarEntries(path)
	default:
		return nil, errors.Errorf("no extractor for media type %s", mediaType)
	}
}

func extractZipEntries(path string) ([]entry, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer r.Close()

	var entries []entry
	for _, file := range r.File {
		if file.FileInfo().IsDir() || skipEntry(file.Name) {
			continue
		}
		if file.UncompressedSize64 > maxEntrySize {
			return nil, errors.Errorf("entry %s exceeds the size limit", file.Name)
		}
		rc, err := file.Open()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize))
		rc.Close()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		entries = append(entries, entry{name: file.Name, data: data})
	}
	return entries, nil
}

func extractRarEntries(path string) ([]entry, error) {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer r.Close()

	var entries []entry
	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if header.IsDir || skipEntry(header.Name) {
			continue
		}
		data, err := io.ReadAll(io.LimitReader(r, maxEntrySize))
		if err != nil {
			return nil, errors.WithStack(err)
		}
		entries = append(entries, entry{name: header.Name, data: data})
	}
	return entries, nil
}

// skipEntry filters out archive noise like macOS resource forks and
// hidden files.
func skipEntry(name string) bool {
	if strings.HasPrefix(name, "__MACOSX/") {
		return true
	}
	return strings.HasPrefix(filepath.Base(name), ".")
}
