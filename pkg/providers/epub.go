package providers

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hondana/hondana/pkg/htmlutil"
	"github.com/hondana/hondana/pkg/metadata"
	"github.com/hondana/hondana/pkg/models"
)

// opfContainer is META-INF/container.xml, which points at the OPF
// document inside the EPUB.
type opfContainer struct {
	XMLName   xml.Name `xml:"container"`
	Rootfiles struct {
		Rootfile []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

// opfPackage is the subset of the OPF package document the provider
// reads.
type opfPackage struct {
	XMLName  xml.Name `xml:"package"`
	Metadata struct {
		Title   []string `xml:"title"`
		Creator []struct {
			Text   string `xml:",chardata"`
			Role   string `xml:"role,attr"`
			FileAs string `xml:"file-as,attr"`
		} `xml:"creator"`
		Description string `xml:"description"`
		Publisher   string `xml:"publisher"`
		Language    string `xml:"language"`
		Date        string `xml:"date"`
		Identifier  []struct {
			Text   string `xml:",chardata"`
			Scheme string `xml:"scheme,attr"`
		} `xml:"identifier"`
		Meta []struct {
			Text    string `xml:",chardata"`
			Name    string `xml:"name,attr"`
			Content string `xml:"content,attr"`
		} `xml:"meta"`
	} `xml:"metadata"`
}

// epubCreatorRoles maps MARC relator codes from dc:creator to author
// roles. Unknown codes fall back to writer.
var epubCreatorRoles = map[string]string{
	"aut": models.AuthorRoleWriter,
	"ill": models.AuthorRolePenciller,
	"art": models.AuthorRolePenciller,
	"clr": models.AuthorRoleColorist,
	"edt": models.AuthorRoleEditor,
	"trl": models.AuthorRoleTranslator,
	"cov": models.AuthorRoleCoverArtist,
}

// EpubProvider reads Dublin Core and calibre metadata out of an EPUB's
// OPF document.
type EpubProvider struct{}

func NewEpubProvider() *EpubProvider {
	return &EpubProvider{}
}

func (p *EpubProvider) Name() string {
	return "epub"
}

func (p *EpubProvider) Source() string {
	return models.MetadataSourceEpub
}

func (p *EpubProvider) Capabilities() []Capability {
	return []Capability{CapabilityBookMetadata, CapabilitySeriesMetadata}
}

func (p *EpubProvider) BookPatch(_ context.Context, book BookContext) (*metadata.BookPatch, error) {
	pkg, err := p.read(book)
	if err != nil || pkg == nil {
		return nil, err
	}

	patch := &metadata.BookPatch{}
	if len(pkg.Metadata.Title) > 0 && pkg.Metadata.Title[0] != "" {
		title := pkg.Metadata.Title[0]
		patch.Title = &title
	}
	if pkg.Metadata.Description != "" {
		summary := htmlutil.StripTags(pkg.Metadata.Description)
		patch.Summary = &summary
	}
	for _, creator := range pkg.Metadata.Creator {
		name := strings.TrimSpace(creator.Text)
		if name == "" {
			continue
		}
		role, ok := epubCreatorRoles[strings.ToLower(creator.Role)]
		if !ok {
			role = models.AuthorRoleWriter
		}
		patch.Authors = append(patch.Authors, models.Author{Name: name, Role: role})
	}
	for _, identifier := range pkg.Metadata.Identifier {
		value := strings.TrimSpace(identifier.Text)
		value = strings.TrimPrefix(value, "urn:isbn:")
		if isbn := NormalizeISBN(value); isbn != "" {
			patch.ISBN = &isbn
			break
		}
	}
	if release := parseEpubDate(pkg.Metadata.Date); release != nil {
		patch.ReleaseDate = release
	}
	if index := opfMeta(pkg, "calibre:series_index"); index != "" {
		if sort, err := strconv.ParseFloat(index, 64); err == nil {
			patch.NumberSort = &sort
			number := strings.TrimSuffix(strconv.FormatFloat(sort, 'f', -1, 64), ".0")
			patch.Number = &number
		}
	}
	return patch, nil
}

func (p *EpubProvider) SeriesPatch(_ context.Context, book BookContext) (*metadata.SeriesPatch, error) {
	pkg, err := p.read(book)
	if err != nil || pkg == nil {
		return nil, err
	}

	patch := &metadata.SeriesPatch{}
	if series := opfMeta(pkg, "calibre:series"); series != "" {
		patch.Title = &series
	}
	if pkg.Metadata.Publisher != "" {
		publisher := pkg.Metadata.Publisher
		patch.Publisher = &publisher
	}
	if pkg.Metadata.Language != "" {
		language := pkg.Metadata.Language
		patch.Language = &language
	}
	return patch, nil
}

// read locates and parses the OPF document. It returns nil when the book
// is not an EPUB.
func (p *EpubProvider) read(book BookContext) (*opfPackage, error) {
	if book.Media == nil || book.Media.MediaType != models.MediaTypeEpub {
		return nil, nil
	}

	f, err := os.Open(book.Book.URL)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	stats, err := f.Stat()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	zipReader, err := zip.NewReader(f, stats.Size())
	if err != nil {
		return nil, errors.WithStack(err)
	}

	opfPath, err := findOPFPath(zipReader)
	if err != nil {
		return nil, err
	}
	for _, file := range zipReader.File {
		if file.Name != opfPath {
			continue
		}
		r, err := file.Open()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		defer r.Close()

		var pkg opfPackage
		err = xml.NewDecoder(r).Decode(&pkg)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return &pkg, nil
	}
	return nil, errors.Errorf("epub declares missing opf document %s", opfPath)
}

func findOPFPath(zipReader *zip.Reader) (string, error) {
	for _, file := range zipReader.File {
		if file.Name != "META-INF/container.xml" {
			continue
		}
		r, err := file.Open()
		if err != nil {
			return "", errors.WithStack(err)
		}
		defer r.Close()

		var container opfContainer
		err = xml.NewDecoder(r).Decode(&container)
		if err != nil {
			return "", errors.WithStack(err)
		}
		for _, rootfile := range container.Rootfiles.Rootfile {
			if rootfile.FullPath != "" {
				return rootfile.FullPath, nil
			}
		}
	}
	return "", errors.New("epub has no container.xml rootfile")
}

func opfMeta(pkg *opfPackage, name string) string {
	for _, meta := range pkg.Metadata.Meta {
		if meta.Name == name {
			return strings.TrimSpace(meta.Content)
		}
	}
	return ""
}

// parseEpubDate accepts the date layouts commonly found in dc:date.
func parseEpubDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
