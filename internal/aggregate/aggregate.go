// Package aggregate turns the persisted sponsor documents into the flat and
// grouped views shown in the sponsor report.
package aggregate

import (
	"database/sql"
	"sort"

	"confdata/internal/store"
	"confdata/lib/textutil"

	"github.com/antzucaro/matchr"
)

const DefaultSimilarityThreshold = 0.93

// Row is one sponsorship of one conference edition. Value is invalid when
// the sponsor's level was not part of that edition's level list.
type Row struct {
	Conference string
	Year       int
	Name       string
	Website    *string
	Level      string
	Value      sql.NullInt64
}

// Group sums every Row sharing a sponsor name.
type Group struct {
	Name string
	// Total is invalid when none of the rows had a known value. Such groups
	// sort after every known total, including zero, and are reported as "-".
	Total sql.NullInt64
	Rows  int
	Years []int
}

// Flatten produces one Row per sponsor entry, in document order.
func Flatten(docs []store.LoadedSponsors) []Row {
	var rows []Row
	for _, loaded := range docs {
		doc := loaded.Document
		for _, sponsor := range doc.Sponsors {
			row := Row{
				Conference: loaded.Conference,
				Year:       doc.Year,
				Name:       sponsor.Name,
				Website:    sponsor.Website,
				Level:      sponsor.Level,
			}
			if value, ok := doc.Levels.Lookup(sponsor.Level); ok {
				row.Value = sql.NullInt64{Int64: value, Valid: true}
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// GroupByName sums rows per sponsor name, sorted by total descending then
// name ascending. Groups without a known total sort last.
func GroupByName(rows []Row) []Group {
	index := map[string]int{}
	var groups []Group
	for _, row := range rows {
		i, ok := index[row.Name]
		if !ok {
			i = len(groups)
			index[row.Name] = i
			groups = append(groups, Group{Name: row.Name})
		}
		g := &groups[i]
		g.Rows++
		if row.Value.Valid {
			g.Total.Int64 += row.Value.Int64
			g.Total.Valid = true
		}
		if !containsYear(g.Years, row.Year) {
			g.Years = append(g.Years, row.Year)
		}
	}

	for i := range groups {
		sort.Ints(groups[i].Years)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.Total.Valid != b.Total.Valid {
			return a.Total.Valid
		}
		if a.Total.Int64 != b.Total.Int64 {
			return a.Total.Int64 > b.Total.Int64
		}
		return a.Name < b.Name
	})
	return groups
}

func containsYear(years []int, year int) bool {
	for _, y := range years {
		if y == year {
			return true
		}
	}
	return false
}

// NamePair is two distinct sponsor names that are likely the same company.
type NamePair struct {
	Left       string
	Right      string
	Similarity float64
}

// SimilarNames returns every pair of distinct names in groups whose
// Jaro-Winkler similarity is at least threshold, most similar first. Names
// are compared case and whitespace insensitively.
func SimilarNames(groups []Group, threshold float64) []NamePair {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	sort.Strings(names)

	var pairs []NamePair
	for i, left := range names {
		for _, right := range names[i+1:] {
			if left == right {
				continue
			}
			similarity := matchr.JaroWinkler(textutil.CompactName(left), textutil.CompactName(right), false)
			if similarity >= threshold {
				pairs = append(pairs, NamePair{
					Left:       left,
					Right:      right,
					Similarity: similarity,
				})
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Similarity > pairs[j].Similarity
	})
	return pairs
}
