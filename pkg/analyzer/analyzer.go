// Package analyzer inspects book container files and produces their Media
// record: the ordered page list, auxiliary files, status, and thumbnail.
// Analysis failures are captured in the Media status and comment rather
// than returned as errors, so a broken file never aborts a batch.
package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/gabriel-vasile/mimetype"
	"github.com/robinjoseph08/golib/logger"

	"github.com/hondana/hondana/pkg/images"
	"github.com/hondana/hondana/pkg/models"
	"github.com/hondana/hondana/pkg/natsort"
)

// maxEntrySize bounds how much of a single archive entry is read.
const maxEntrySize = 100 * 1024 * 1024

// entry is one file inside a book container.
type entry struct {
	name string
	data []byte
}

// Analyzer turns book files into Media records.
type Analyzer struct {
	thumbnailHeight int
}

func New(thumbnailHeight int) *Analyzer {
	return &Analyzer{thumbnailHeight: thumbnailHeight}
}

// Analyze detects the book's container type from file content, extracts
// its entries, and returns the resulting Media. The returned Media always
// carries the book's ID; its status tells the caller what happened.
func (a *Analyzer) Analyze(ctx context.Context, book *models.Book) *models.Media {
	log := logger.FromContext(ctx)
	media := &models.Media{BookID: book.ID}

	detected, err := mimetype.DetectFile(book.URL)
	if err != nil {
		media.Status = models.MediaStatusError
		media.Comment = err.Error()
		return media
	}

	mediaType, ok := containerType(detected)
	if !ok {
		media.Status = models.MediaStatusUnsupported
		media.Comment = fmt.Sprintf("Unsupported media type %s.", detected.String())
		return media
	}
	media.MediaType = mediaType

	if mediaType == models.MediaTypePDF {
		a.analyzePDF(ctx, book, media)
		return media
	}

	entries, err := extractEntries(book.URL, mediaType)
	if err != nil {
		media.Status = models.MediaStatusError
		media.Comment = err.Error()
		return media
	}

	natsort.SortFunc(entries, func(e entry) string { return e.name })

	for _, e := range entries {
		entryType := mimetype.Detect(e.data)
		if strings.HasPrefix(entryType.String(), "image/") {
			hash := fmt.Sprintf("%016x", xxhash.Sum64(e.data))
			media.Pages = append(media.Pages, &models.MediaPage{
				Number:    len(media.Pages) + 1,
				FileName:  e.name,
				MediaType: entryType.String(),
				FileHash:  &hash,
			})
		} else {
			media.Files = append(media.Files, &models.MediaFile{
				FileName:  e.name,
				MediaType: entryType.String(),
			})
		}
	}

	if len(media.Pages) == 0 {
		media.Status = models.MediaStatusError
		media.Comment = "No pages found."
		media.Pages = nil
		return media
	}

	media.Status = models.MediaStatusReady

	// Thumbnail generation is best effort.
	first := media.Pages[0]
	for _, e := range entries {
		if e.name != first.FileName {
			continue
		}
		thumbnail, err := images.Thumbnail(e.data, a.thumbnailHeight)
		if err != nil {
			log.Err(err).Data(logger.Data{"book_id": book.ID, "page": first.FileName}).Warn("generate thumbnail")
			break
		}
		media.Thumbnail = thumbnail
		break
	}
	return media
}

// containerType maps a detected mime type to a supported container type.
// EPUB must be checked before plain zip because it is a zip subtype.
func containerType(detected *mimetype.MIME) (string, bool) {
	switch {
	case detected.Is("application/epub+zip"):
		return models.MediaTypeEpub, true
	case detected.Is("application/zip"):
		return models.MediaTypeZip, true
	case detected.Is("application/x-rar-compressed") || detected.Is("application/vnd.rar"):
		return models.MediaTypeRar, true
	case detected.Is("application/pdf"):
		return models.MediaTypePDF, true
	default:
		return "", false
	}
}
