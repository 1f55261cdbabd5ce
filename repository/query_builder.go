package repository

import "strings"

// Predicate narrows a query over the articles table. A nil Published matches
// both states; a non-empty Term selects case-insensitive substring matches
// over title or content.
type Predicate struct {
	Published *bool
	Term      string
}

// QueryBuilder translates free-text search terms into predicates. It does no
// ranking; ordering is left to the store's default.
type QueryBuilder struct{}

func NewQueryBuilder() QueryBuilder {
	return QueryBuilder{}
}

// Search builds a predicate matching the term in title or content. Searches
// span published and unpublished articles alike.
func (QueryBuilder) Search(term string) Predicate {
	return Predicate{Term: strings.TrimSpace(term)}
}

// PublishedOnly builds the default public-listing predicate.
func (QueryBuilder) PublishedOnly() Predicate {
	published := true
	return Predicate{Published: &published}
}

// UnpublishedOnly builds the drafts/history predicate.
func (QueryBuilder) UnpublishedOnly() Predicate {
	published := false
	return Predicate{Published: &published}
}
