// Package scanner walks a library root on disk and produces an in-memory
// snapshot of the series, books, and sidecar files it finds. It never
// touches the database; reconciliation against persisted state happens in
// the worker.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/hondana/hondana/pkg/models"
)

// bookExtensions are the container formats that become book stubs.
var bookExtensions = map[string]bool{
	".cbz":  true,
	".zip":  true,
	".cbr":  true,
	".rar":  true,
	".epub": true,
	".pdf":  true,
}

// artworkExtensions are image formats recognized as artwork sidecars.
var artworkExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// seriesArtworkNames are base names (without extension) that mark an image
// as artwork for the containing series rather than for a single book.
var seriesArtworkNames = map[string]bool{
	"cover":  true,
	"folder": true,
	"poster": true,
}

// SeriesStub is a directory found during a walk, identified by its path.
type SeriesStub struct {
	URL          string
	Name         string
	LastModified time.Time
}

// BookStub is a book container file found during a walk.
type BookStub struct {
	URL          string
	Name         string
	LastModified time.Time
	SizeBytes    int64
}

// SidecarStub is a companion file (artwork or info) sitting next to books.
type SidecarStub struct {
	URL          string
	ParentURL    string
	Kind         string
	LastModified time.Time
}

// SeriesEntry pairs a series stub with the books found inside it.
type SeriesEntry struct {
	Series SeriesStub
	Books  []BookStub
}

// Snapshot is the complete result of one root walk. An empty Series slice
// means the root held no books at all.
type Snapshot struct {
	Series   []SeriesEntry
	Sidecars []SidecarStub
}

type cachedStat struct {
	size    int64
	modTime time.Time
}

// Scanner walks library roots. It keeps a process-local stat cache so
// that repeated scans can reuse modified times for files whose size has
// not changed, which smooths over filesystems with unstable timestamps.
type Scanner struct {
	mu    sync.Mutex
	stats map[string]cachedStat
}

func New() *Scanner {
	return &Scanner{stats: map[string]cachedStat{}}
}

// Scan walks root and returns a snapshot. When forceModifiedTime is true
// every file's modified time is taken fresh from disk; otherwise a cached
// time is reused when the file's size is unchanged. If the root cannot be
// read the walk fails as a whole and no partial snapshot is returned.
func (s *Scanner) Scan(root string, forceModifiedTime bool) (*Snapshot, error) {
	root = filepath.Clean(root)
	rootInfo, err := os.Stat(root)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !rootInfo.IsDir() {
		return nil, errors.Errorf("library root %s is not a directory", root)
	}

	snapshot := &Snapshot{}
	byDir := map[string]*SeriesEntry{}
	dirModTimes := map[string]time.Time{}
	var sidecarCandidates []sidecarCandidate

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return errors.WithStack(walkErr)
			}
			// Unreadable subdirectories are skipped rather than failing
			// the whole scan.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != root {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			// Directory mtimes surface membership changes (adds,
			// deletes, renames) that book mtimes alone would miss.
			if info, infoErr := d.Info(); infoErr == nil {
				dirModTimes[path] = info.ModTime().Truncate(time.Millisecond)
			}
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		modTime := s.modTime(path, info, forceModifiedTime)
		dir := filepath.Dir(path)
		ext := strings.ToLower(filepath.Ext(name))

		switch {
		case bookExtensions[ext]:
			entry := byDir[dir]
			if entry == nil {
				entry = &SeriesEntry{Series: SeriesStub{
					URL:          dir,
					Name:         filepath.Base(dir),
					LastModified: dirModTimes[dir],
				}}
				byDir[dir] = entry
			}
			entry.Books = append(entry.Books, BookStub{
				URL:          path,
				Name:         strings.TrimSuffix(name, filepath.Ext(name)),
				LastModified: modTime,
				SizeBytes:    info.Size(),
			})
			if modTime.After(entry.Series.LastModified) {
				entry.Series.LastModified = modTime
			}
		case artworkExtensions[ext]:
			sidecarCandidates = append(sidecarCandidates, sidecarCandidate{
				path:     path,
				dir:      dir,
				base:     strings.TrimSuffix(name, filepath.Ext(name)),
				kind:     models.SidecarKindArtwork,
				modified: modTime,
			})
		case strings.EqualFold(name, "series.json"):
			sidecarCandidates = append(sidecarCandidates, sidecarCandidate{
				path:     path,
				dir:      dir,
				base:     name,
				kind:     models.SidecarKindInfo,
				modified: modTime,
			})
		}
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	for _, entry := range byDir {
		snapshot.Series = append(snapshot.Series, *entry)
	}
	sort.Slice(snapshot.Series, func(i, j int) bool {
		return snapshot.Series[i].Series.URL < snapshot.Series[j].Series.URL
	})
	snapshot.Sidecars = resolveSidecars(sidecarCandidates, byDir)
	return snapshot, nil
}

type sidecarCandidate struct {
	path     string
	dir      string
	base     string
	kind     string
	modified time.Time
}

// resolveSidecars attaches each candidate to its parent. Artwork whose
// base name matches a book in the same directory belongs to that book;
// otherwise a known series artwork name, or an info file, belongs to the
// series. Candidates in directories with no books are dropped.
func resolveSidecars(candidates []sidecarCandidate, byDir map[string]*SeriesEntry) []SidecarStub {
	var sidecars []SidecarStub
	for _, c := range candidates {
		entry := byDir[c.dir]
		if entry == nil {
			continue
		}
		parentURL := ""
		if c.kind == models.SidecarKindArtwork {
			for _, book := range entry.Books {
				if strings.EqualFold(book.Name, c.base) {
					parentURL = book.URL
					break
				}
			}
			if parentURL == "" && !seriesArtworkNames[strings.ToLower(c.base)] {
				continue
			}
		}
		if parentURL == "" {
			parentURL = entry.Series.URL
		}
		sidecars = append(sidecars, SidecarStub{
			URL:          c.path,
			ParentURL:    parentURL,
			Kind:         c.kind,
			LastModified: c.modified,
		})
	}
	return sidecars
}

// modTime returns the file's modified time truncated to millisecond
// precision, reusing the cached value when the size is unchanged and no
// fresh stat was requested.
func (s *Scanner) modTime(path string, info fs.FileInfo, force bool) time.Time {
	fresh := info.ModTime().Truncate(time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !force {
		if cached, ok := s.stats[path]; ok && cached.size == info.Size() {
			return cached.modTime
		}
	}
	s.stats[path] = cachedStat{size: info.Size(), modTime: fresh}
	return fresh
}
