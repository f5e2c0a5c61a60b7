// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"strings"

	"golang.org/x/text/cases"
)

// Matchable is anything the filter can match a query against.
type Matchable interface {
	MatchFields() []string
}

// Filter returns the items whose fields contain query, compared with
// Unicode case folding. Source order is kept. An empty query returns every
// item.
func Filter[T Matchable](query string, items []T) []T {
	out := make([]T, 0, len(items))
	if query == "" {
		return append(out, items...)
	}

	// A Caser holds state and is not safe for concurrent use.
	fold := cases.Fold()
	q := fold.String(query)
	for _, item := range items {
		if matches(fold, q, item.MatchFields()) {
			out = append(out, item)
		}
	}
	return out
}

// Matches reports whether a single item passes Filter for query.
func Matches(query string, item Matchable) bool {
	if query == "" {
		return true
	}
	fold := cases.Fold()
	return matches(fold, fold.String(query), item.MatchFields())
}

func matches(fold cases.Caser, foldedQuery string, fields []string) bool {
	for _, f := range fields {
		if f == "" {
			continue
		}
		if strings.Contains(fold.String(f), foldedQuery) {
			return true
		}
	}
	return false
}
