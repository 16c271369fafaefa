package wallpapers

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SearchTerms precomputes the term set a wallpaper is findable under:
// lowercased whole words from the name plus their 2- and 3-character
// shingles, together with tags, author and category. The listing query
// matches these with an array-contains predicate alongside the name
// prefix scan.
func SearchTerms(name string, tags []string, author, category string) []string {
	seen := make(map[string]struct{})

	add := func(term string) {
		term = normalizeTerm(term)
		if term != "" {
			seen[term] = struct{}{}
		}
	}

	for _, word := range splitWords(name) {
		add(word)
		for _, sh := range shingles(word, 2) {
			add(sh)
		}
		for _, sh := range shingles(word, 3) {
			add(sh)
		}
	}
	for _, tag := range tags {
		add(tag)
	}
	add(author)
	add(category)

	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}

func splitWords(s string) []string {
	return strings.FieldsFunc(norm.NFKC.String(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func shingles(word string, size int) []string {
	runes := []rune(word)
	if len(runes) <= size {
		return nil
	}
	out := make([]string, 0, len(runes)-size+1)
	for i := 0; i+size <= len(runes); i++ {
		out = append(out, string(runes[i:i+size]))
	}
	return out
}
