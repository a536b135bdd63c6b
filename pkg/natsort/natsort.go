// Package natsort provides natural ordering for file and title names, so
// "Chapter 2" sorts before "Chapter 10", and bibliographic sort titles
// with leading articles moved out of the way.
package natsort

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// titleArticles are articles stripped from the beginning of sort titles
// (e.g. "The Hobbit" sorts as "Hobbit, The").
var titleArticles = []string{
	"The",
	"A",
	"An",
}

func newCollator() *collate.Collator {
	return collate.New(language.Und, collate.Numeric, collate.Loose)
}

// Compare returns -1, 0, or 1 depending on how a orders relative to b.
// Digit runs compare by numeric value, and case, width, and diacritics
// are ignored.
func Compare(a, b string) int {
	return newCollator().CompareString(a, b)
}

// Less reports whether a orders before b under natural ordering.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Sort orders strs in place under natural ordering. The same input always
// produces the same order.
func Sort(strs []string) {
	c := newCollator()
	sort.SliceStable(strs, func(i, j int) bool {
		return c.CompareString(strs[i], strs[j]) < 0
	})
}

// SortFunc orders items in place by the natural ordering of their keys.
func SortFunc[T any](items []T, key func(T) string) {
	c := newCollator()
	sort.SliceStable(items, func(i, j int) bool {
		return c.CompareString(key(items[i]), key(items[j])) < 0
	})
}

// TitleSort returns the bibliographic sort form of a title, moving a
// leading article to the end ("The Hobbit" -> "Hobbit, The").
func TitleSort(title string) string {
	trimmed := strings.TrimSpace(title)
	for _, article := range titleArticles {
		prefix := article + " "
		if len(trimmed) > len(prefix) && strings.EqualFold(trimmed[:len(prefix)], prefix) {
			return strings.TrimSpace(trimmed[len(prefix):]) + ", " + trimmed[:len(article)]
		}
	}
	return trimmed
}
