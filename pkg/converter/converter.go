// Package converter rewrites book containers as CBZ, either to replace
// an unsupported or awkward format or to drop specific pages. The
// rewritten file is fully verified before it replaces the original; a
// book that fails verification is quarantined in memory so repeated
// jobs don't keep rewriting a broken file.
package converter

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/pkg/errors"

	"github.com/hondana/hondana/pkg/analyzer"
	"github.com/hondana/hondana/pkg/errcodes"
	"github.com/hondana/hondana/pkg/models"
)

type Converter struct {
	analyzer *analyzer.Analyzer

	mu          sync.Mutex
	quarantined map[string]string
}

func New(a *analyzer.Analyzer) *Converter {
	return &Converter{
		analyzer:    a,
		quarantined: map[string]string{},
	}
}

// Result describes a committed conversion. URL is the path of the new
// CBZ file and Media its verified analysis, with page hashes carried
// over from the source where the content is unchanged.
type Result struct {
	URL   string
	Media *models.Media
}

// Quarantined returns the reason a book's file was quarantined, if it
// was. Quarantine is process-local and clears on restart.
func (c *Converter) Quarantined(url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	reason, ok := c.quarantined[url]
	return reason, ok
}

func (c *Converter) quarantine(url, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quarantined[url] = reason
}

// Convert rewrites the book's container as a CBZ. When removeHashes is
// empty every page is kept; otherwise pages whose content hash is in
// the set are dropped. The new file is analyzed and verified before it
// replaces the original, and the original is only removed once the new
// file is committed.
func (c *Converter) Convert(ctx context.Context, book *models.Book, media *models.Media, removeHashes []string) (*Result, error) {
	if reason, ok := c.Quarantined(book.URL); ok {
		return nil, errcodes.ConversionFailed("book file is quarantined: " + reason)
	}
	if media == nil || media.Status != models.MediaStatusReady {
		return nil, errors.New("book media is not ready")
	}

	remove := map[string]bool{}
	for _, h := range removeHashes {
		remove[h] = true
	}

	kept := []*models.MediaPage{}
	for _, page := range media.Pages {
		if page.FileHash != nil && remove[*page.FileHash] {
			continue
		}
		kept = append(kept, page)
	}
	if len(kept) == 0 {
		return nil, errors.New("conversion would remove every page")
	}

	targetURL := strings.TrimSuffix(book.URL, filepath.Ext(book.URL)) + ".cbz"
	if targetURL != book.URL {
		_, err := os.Stat(targetURL)
		if err == nil {
			return nil, errors.Errorf("destination %s already exists", targetURL)
		}
		if !os.IsNotExist(err) {
			return nil, errors.WithStack(err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(book.URL), ".convert-*.cbz")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	err = c.writeCBZ(ctx, book, media, kept, tmpPath)
	if err != nil {
		return nil, err
	}

	newMedia, err := c.verify(ctx, book, media, tmpPath, kept)
	if err != nil {
		c.quarantine(book.URL, err.Error())
		return nil, err
	}

	err = atomic.ReplaceFile(tmpPath, targetURL)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if targetURL != book.URL {
		err = os.Remove(book.URL)
		if err != nil && !os.IsNotExist(err) {
			return nil, errors.WithStack(err)
		}
	}

	return &Result{URL: targetURL, Media: newMedia}, nil
}

// writeCBZ builds the new zip from the kept pages and the container's
// non-page files.
func (c *Converter) writeCBZ(ctx context.Context, book *models.Book, media *models.Media, kept []*models.MediaPage, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, page := range kept {
		if err := ctx.Err(); err != nil {
			zw.Close()
			return errors.WithStack(err)
		}

		data, _, err := c.analyzer.GetPageContent(book, media, page.Number)
		if err != nil {
			zw.Close()
			return errors.WithStack(err)
		}
		w, err := zw.Create(page.FileName)
		if err != nil {
			zw.Close()
			return errors.WithStack(err)
		}
		_, err = w.Write(data)
		if err != nil {
			zw.Close()
			return errors.WithStack(err)
		}
	}

	for _, file := range media.Files {
		if err := ctx.Err(); err != nil {
			zw.Close()
			return errors.WithStack(err)
		}

		data, err := c.analyzer.GetFileContent(book, media, file.FileName)
		if err != nil {
			zw.Close()
			return errors.WithStack(err)
		}
		w, err := zw.Create(file.FileName)
		if err != nil {
			zw.Close()
			return errors.WithStack(err)
		}
		_, err = w.Write(data)
		if err != nil {
			zw.Close()
			return errors.WithStack(err)
		}
	}

	err = zw.Close()
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(f.Sync())
}

// verify analyzes the freshly written file and checks that every kept
// page survived with identical content and every non-page file is
// still present. Hashes from the source are authoritative; a mismatch
// aborts the conversion.
func (c *Converter) verify(ctx context.Context, book *models.Book, media *models.Media, path string, kept []*models.MediaPage) (*models.Media, error) {
	probe := &models.Book{
		ID:        book.ID,
		LibraryID: book.LibraryID,
		SeriesID:  book.SeriesID,
		URL:       path,
		Name:      book.Name,
	}
	newMedia := c.analyzer.Analyze(ctx, probe)
	if newMedia.Status != models.MediaStatusReady {
		return nil, errcodes.ConversionFailed("converted file failed analysis: " + newMedia.Comment)
	}
	if len(newMedia.Pages) != len(kept) {
		return nil, errcodes.ConversionFailed(fmt.Sprintf("converted file has %d pages, expected %d", len(newMedia.Pages), len(kept)))
	}

	byHash := map[string]bool{}
	for _, page := range newMedia.Pages {
		if page.FileHash != nil {
			byHash[*page.FileHash] = true
		}
	}
	for _, page := range kept {
		if page.FileHash == nil {
			continue
		}
		if !byHash[*page.FileHash] {
			return nil, errcodes.ConversionFailed(fmt.Sprintf("page %d content changed during conversion", page.Number))
		}
	}

	byName := map[string]bool{}
	for _, file := range newMedia.Files {
		byName[file.FileName] = true
	}
	for _, file := range media.Files {
		if !byName[file.FileName] {
			return nil, errcodes.ConversionFailed(fmt.Sprintf("file %s missing from converted container", file.FileName))
		}
	}

	return newMedia, nil
}
