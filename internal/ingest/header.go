package ingest

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"jobmetrics/domain/core"
	"jobmetrics/domain/schema"
	"jobmetrics/domain/table"
)

const (
	// MaxHeaderScanRows bounds the header search.
	MaxHeaderScanRows = 100
	// MinSubstringAliasLen is the shortest alias allowed to match inside a
	// longer header. Shorter aliases (CLIENTE) would otherwise capture
	// headers such as TIPO DE CLIENTE.
	MinSubstringAliasLen = 10
)

var unsafeHeaderChars = regexp.MustCompile(`[^A-Z0-9_/ ]+`)

// NormalizeHeader collapses whitespace, trims and upper-cases a header cell.
func NormalizeHeader(s string) string {
	return strings.ToUpper(strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " ")))
}

// FindHeaderRow returns the index of the first row, among the first
// MaxHeaderScanRows, whose normalized cells jointly contain every token.
func FindHeaderRow(rows table.RawSheet, tokens []string) (int, error) {
	want := make([]string, len(tokens))
	for i, tok := range tokens {
		want[i] = NormalizeHeader(tok)
	}

	limit := len(rows)
	if limit > MaxHeaderScanRows {
		limit = MaxHeaderScanRows
	}
	for i := 0; i < limit; i++ {
		cells := make([]string, len(rows[i]))
		for j, c := range rows[i] {
			cells[j] = NormalizeHeader(c)
		}
		joined := strings.Join(cells, " | ")

		matched := true
		for _, tok := range want {
			if !strings.Contains(joined, tok) {
				matched = false
				break
			}
		}
		if matched {
			return i, nil
		}
	}
	return -1, core.NewHeaderNotFoundError(tokens, limit)
}

// aliasEntry is one spelling in the ranked alias list.
type aliasEntry struct {
	canonical string
	alias     string
	length    int
}

// AliasResolver maps raw header text to canonical column names. Aliases are
// held as one list ranked by descending length: exact matches are tried over
// the whole list first, then substring matches over the long aliases only.
type AliasResolver struct {
	ranked []aliasEntry
}

// NewAliasResolver builds a resolver from an alias table.
func NewAliasResolver(aliases []schema.Alias) *AliasResolver {
	var ranked []aliasEntry
	for _, a := range aliases {
		for _, spelling := range a.Spellings {
			n := NormalizeHeader(spelling)
			ranked = append(ranked, aliasEntry{
				canonical: a.Canonical,
				alias:     n,
				length:    utf8.RuneCountInString(n),
			})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].length > ranked[j].length
	})
	return &AliasResolver{ranked: ranked}
}

var defaultResolver = NewAliasResolver(schema.AliasTable)

// Resolve maps one header to its canonical name, or to a sanitized
// pass-through name when no alias applies.
func (r *AliasResolver) Resolve(header string) string {
	h := NormalizeHeader(header)

	for _, e := range r.ranked {
		if h == e.alias {
			return e.canonical
		}
	}
	for _, e := range r.ranked {
		if e.length >= MinSubstringAliasLen && strings.Contains(h, e.alias) {
			return e.canonical
		}
	}

	if s := strings.TrimSpace(unsafeHeaderChars.ReplaceAllString(h, "")); s != "" {
		return s
	}
	return schema.UnknownColumn
}

// Standardize resolves every header and suffixes repeats with _2, _3, ...
// in first-seen order.
func (r *AliasResolver) Standardize(headers []string) []string {
	seen := make(map[string]int, len(headers))
	used := make(map[string]bool, len(headers))
	out := make([]string, len(headers))
	for i, h := range headers {
		base := r.Resolve(h)
		name := base
		for used[name] {
			seen[base]++
			name = fmt.Sprintf("%s_%d", base, seen[base])
		}
		if seen[base] == 0 {
			seen[base] = 1
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// StandardizeColumns resolves headers with the studio alias table.
func StandardizeColumns(headers []string) []string {
	return defaultResolver.Standardize(headers)
}
