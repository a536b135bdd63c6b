package analyzer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"

	"github.com/hondana/hondana/pkg/images"
	"github.com/hondana/hondana/pkg/models"
)

// analyzePDF fills media for a PDF book. PDF pages are rendered on
// demand, so the page list is synthesized from the page count and no
// content hashes are recorded.
func (a *Analyzer) analyzePDF(ctx context.Context, book *models.Book, media *models.Media) {
	log := logger.FromContext(ctx)

	f, err := os.Open(book.URL)
	if err != nil {
		media.Status = models.MediaStatusError
		media.Comment = err.Error()
		return
	}
	defer f.Close()

	info, err := api.PDFInfo(f, book.URL, nil, false, model.NewDefaultConfiguration())
	if err != nil {
		media.Status = models.MediaStatusError
		media.Comment = err.Error()
		return
	}
	if info.PageCount == 0 {
		media.Status = models.MediaStatusError
		media.Comment = "No pages found."
		return
	}

	for i := 1; i <= info.PageCount; i++ {
		media.Pages = append(media.Pages, &models.MediaPage{
			Number:    i,
			FileName:  fmt.Sprintf("page %d", i),
			MediaType: models.MediaTypePDF,
		})
	}
	media.Status = models.MediaStatusReady

	pageData, _, err := extractPDFPageImage(book.URL, 1)
	if err != nil {
		log.Err(err).Data(logger.Data{"book_id": book.ID}).Warn("extract pdf cover")
		return
	}
	thumbnail, err := images.Thumbnail(pageData, a.thumbnailHeight)
	if err != nil {
		log.Err(err).Data(logger.Data{"book_id": book.ID}).Warn("generate thumbnail")
		return
	}
	media.Thumbnail = thumbnail
}

// extractPDFPageImage returns the largest raster image embedded in the
// given 1-indexed page.
func extractPDFPageImage(path string, pageNumber int) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", errors.WithStack(err)
	}
	defer f.Close()

	pageMaps, err := api.ExtractImagesRaw(f, []string{strconv.Itoa(pageNumber)}, model.NewDefaultConfiguration())
	if err != nil {
		return nil, "", errors.WithStack(err)
	}

	var best []byte
	bestType := ""
	for _, pageMap := range pageMaps {
		for _, img := range pageMap {
			data, err := io.ReadAll(img)
			if err != nil {
				continue
			}
			if len(data) > len(best) {
				best = data
				bestType = "image/" + img.FileType
			}
		}
	}
	if best == nil {
		return nil, "", errors.Errorf("no images found on page %d", pageNumber)
	}
	return best, bestType, nil
}
