package providers

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hondana/hondana/pkg/metadata"
	"github.com/hondana/hondana/pkg/models"
)

// ComicInfo is the ComicInfo.xml schema as embedded in CBZ files by
// tools like ComicRack and Kavita.
type ComicInfo struct {
	XMLName     xml.Name `xml:"ComicInfo"`
	Title       string   `xml:"Title"`
	Series      string   `xml:"Series"`
	Number      string   `xml:"Number"`
	Count       int      `xml:"Count"`
	Summary     string   `xml:"Summary"`
	Year        string   `xml:"Year"`
	Month       string   `xml:"Month"`
	Day         string   `xml:"Day"`
	Writer      string   `xml:"Writer"`
	Penciller   string   `xml:"Penciller"`
	Inker       string   `xml:"Inker"`
	Colorist    string   `xml:"Colorist"`
	Letterer    string   `xml:"Letterer"`
	CoverArtist string   `xml:"CoverArtist"`
	Editor      string   `xml:"Editor"`
	Translator  string   `xml:"Translator"`
	Publisher   string   `xml:"Publisher"`
	Genre       string   `xml:"Genre"`
	Tags        string   `xml:"Tags"`
	StoryArc    string   `xml:"StoryArc"`
	SeriesGroup string   `xml:"SeriesGroup"`
	AgeRating   string   `xml:"AgeRating"`
	LanguageISO string   `xml:"LanguageISO"`
	GTIN        string   `xml:"GTIN"`
}

// comicInfoAgeRatings maps the ComicInfo AgeRating vocabulary to a
// numeric age.
var comicInfoAgeRatings = map[string]int{
	"early childhood": 3,
	"everyone":        0,
	"everyone 10+":    10,
	"g":               0,
	"kids to adults":  6,
	"pg":              8,
	"teen":            13,
	"ma15+":           15,
	"mature 17+":      17,
	"m":               17,
	"r18+":            18,
	"adults only 18+": 18,
	"x18+":            18,
}

// ComicInfoProvider reads ComicInfo.xml out of zip-based books.
type ComicInfoProvider struct{}

func NewComicInfoProvider() *ComicInfoProvider {
	return &ComicInfoProvider{}
}

func (p *ComicInfoProvider) Name() string {
	return "comicinfo"
}

func (p *ComicInfoProvider) Source() string {
	return models.MetadataSourceComicInfo
}

func (p *ComicInfoProvider) Capabilities() []Capability {
	return []Capability{CapabilityBookMetadata, CapabilitySeriesMetadata}
}

func (p *ComicInfoProvider) BookPatch(_ context.Context, book BookContext) (*metadata.BookPatch, error) {
	info, err := p.read(book)
	if err != nil || info == nil {
		return nil, err
	}

	patch := &metadata.BookPatch{}
	if info.Title != "" {
		patch.Title = &info.Title
	}
	if info.Summary != "" {
		patch.Summary = &info.Summary
	}
	if info.Number != "" {
		patch.Number = &info.Number
		if sort, err := strconv.ParseFloat(info.Number, 64); err == nil {
			patch.NumberSort = &sort
		}
	}
	if release := parseComicInfoDate(info.Year, info.Month, info.Day); release != nil {
		patch.ReleaseDate = release
	}
	patch.Authors = comicInfoAuthors(info)
	if info.Tags != "" {
		patch.Tags = splitComicInfoList(info.Tags)
	}
	if isbn := NormalizeISBN(info.GTIN); isbn != "" {
		patch.ISBN = &isbn
	}
	if info.StoryArc != "" {
		for _, arc := range splitComicInfoList(info.StoryArc) {
			patch.ReadLists = append(patch.ReadLists, metadata.ReadListHint{Name: arc})
		}
	}
	return patch, nil
}

func (p *ComicInfoProvider) SeriesPatch(_ context.Context, book BookContext) (*metadata.SeriesPatch, error) {
	info, err := p.read(book)
	if err != nil || info == nil {
		return nil, err
	}

	patch := &metadata.SeriesPatch{}
	if info.Series != "" {
		patch.Title = &info.Series
	}
	if info.Publisher != "" {
		patch.Publisher = &info.Publisher
	}
	if info.LanguageISO != "" {
		patch.Language = &info.LanguageISO
	}
	if info.Genre != "" {
		patch.Genres = splitComicInfoList(info.Genre)
	}
	if info.Count > 0 {
		count := info.Count
		patch.TotalBookCount = &count
	}
	if rating, ok := comicInfoAgeRatings[strings.ToLower(strings.TrimSpace(info.AgeRating))]; ok && info.AgeRating != "" {
		patch.AgeRating = &rating
	}
	if info.SeriesGroup != "" {
		patch.Collections = splitComicInfoList(info.SeriesGroup)
	}
	return patch, nil
}

// read returns the parsed ComicInfo.xml, or nil when the book is not a
// zip container or carries no ComicInfo entry.
func (p *ComicInfoProvider) read(book BookContext) (*ComicInfo, error) {
	if book.Media == nil || book.Media.MediaType != models.MediaTypeZip {
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

	for _, file := range zipReader.File {
		if strings.ToLower(file.Name) != "comicinfo.xml" {
			continue
		}
		r, err := file.Open()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		defer r.Close()
		return ParseComicInfo(r)
	}
	return nil, nil
}

// ParseComicInfo decodes a ComicInfo.xml document.
func ParseComicInfo(r io.Reader) (*ComicInfo, error) {
	var info ComicInfo
	decoder := xml.NewDecoder(r)
	// Some tools write ComicInfo.xml in legacy encodings.
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	err := decoder.Decode(&info)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &info, nil
}

func comicInfoAuthors(info *ComicInfo) []models.Author {
	var authors []models.Author
	seen := map[models.Author]bool{}
	add := func(names, role string) {
		for _, name := range splitComicInfoList(names) {
			author := models.Author{Name: name, Role: role}
			if !seen[author] {
				seen[author] = true
				authors = append(authors, author)
			}
		}
	}
	add(info.Writer, models.AuthorRoleWriter)
	add(info.Penciller, models.AuthorRolePenciller)
	add(info.Inker, models.AuthorRoleInker)
	add(info.Colorist, models.AuthorRoleColorist)
	add(info.Letterer, models.AuthorRoleLetterer)
	add(info.CoverArtist, models.AuthorRoleCoverArtist)
	add(info.Editor, models.AuthorRoleEditor)
	add(info.Translator, models.AuthorRoleTranslator)
	return authors
}

// splitComicInfoList splits a comma-separated ComicInfo value, dropping
// empty entries.
func splitComicInfoList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseComicInfoDate(year, month, day string) *time.Time {
	y, err := strconv.Atoi(year)
	if err != nil || y <= 0 {
		return nil
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		m = 1
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		d = 1
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return &t
}
