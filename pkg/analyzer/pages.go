package analyzer

import (
	"archive/zip"
	"io"

	"github.com/nwaples/rardecode/v2"
	"github.com/pkg/errors"

	"github.com/hondana/hondana/pkg/errcodes"
	"github.com/hondana/hondana/pkg/models"
)

// GetPageContent returns the raw bytes and media type of one page.
// Page numbers are 1-indexed. The book must have been analyzed to READY
// first; OUTDATED media points at page lists that may no longer match
// the file on disk.
func (a *Analyzer) GetPageContent(book *models.Book, media *models.Media, pageNumber int) ([]byte, string, error) {
	if media == nil || media.Status != models.MediaStatusReady {
		status := ""
		if media != nil {
			status = media.Status
		}
		return nil, "", errcodes.NotReady(status)
	}
	if pageNumber < 1 || pageNumber > len(media.Pages) {
		return nil, "", errcodes.OutOfRange(pageNumber, len(media.Pages))
	}
	page := media.Pages[pageNumber-1]

	switch media.MediaType {
	case models.MediaTypeZip, models.MediaTypeEpub:
		data, err := readZipEntry(book.URL, page.FileName)
		return data, page.MediaType, err
	case models.MediaTypeRar:
		data, err := readRarEntry(book.URL, page.FileName)
		return data, page.MediaType, err
	case models.MediaTypePDF:
		return extractPDFPageImage(book.URL, page.Number)
	default:
		return nil, "", errcodes.UnsupportedMediaType()
	}
}

// GetFileContent returns the raw bytes of a non-page container entry,
// such as a metadata file carried alongside the pages.
func (a *Analyzer) GetFileContent(book *models.Book, media *models.Media, fileName string) ([]byte, error) {
	if media == nil || media.Status != models.MediaStatusReady {
		status := ""
		if media != nil {
			status = media.Status
		}
		return nil, errcodes.NotReady(status)
	}

	switch media.MediaType {
	case models.MediaTypeZip, models.MediaTypeEpub:
		return readZipEntry(book.URL, fileName)
	case models.MediaTypeRar:
		return readRarEntry(book.URL, fileName)
	default:
		return nil, errcodes.UnsupportedMediaType()
	}
}

func readZipEntry(path, name string) ([]byte, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer r.Close()

	for _, file := range r.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		defer rc.Close()
		data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize))
		return data, errors.WithStack(err)
	}
	return nil, errors.Errorf("entry %s not found in %s", name, path)
}

func readRarEntry(path, name string) ([]byte, error) {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer r.Close()

	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if header.Name != name {
			continue
		}
		data, err := io.ReadAll(io.LimitReader(r, maxEntrySize))
		return data, errors.WithStack(err)
	}
	return nil, errors.Errorf("entry %s not found in %s", name, path)
}
