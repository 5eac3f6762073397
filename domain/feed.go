package domain

import "context"

// DefaultPageSize is the number of posts on a feed page unless configured otherwise.
const DefaultPageSize = 10

// ScopeKind selects which posts a feed contains.
type ScopeKind int

const (
	AllPosts ScopeKind = iota
	ByGroup
	ByAuthor
	FollowedAuthors
)

// FeedScope is the filter of a feed. Slug is read for ByGroup, Username for ByAuthor.
type FeedScope struct {
	Kind     ScopeKind
	Slug     string
	Username string
}

// GroupScope returns the scope of a group's posts.
func GroupScope(slug string) FeedScope {
	return FeedScope{Kind: ByGroup, Slug: slug}
}

// AuthorScope returns the scope of an author's posts.
func AuthorScope(username string) FeedScope {
	return FeedScope{Kind: ByAuthor, Username: username}
}

// Page is one slice of a feed, newest posts first. Number is 1-based.
type Page struct {
	Posts  []Post `json:"posts"`
	Total  int    `json:"total"`
	Number int    `json:"number"`
	Size   int    `json:"size"`
}

// NumPages returns the number of pages the whole feed spans. An empty feed still has one page.
func (p *Page) NumPages() int {
	if p.Total == 0 || p.Size <= 0 {
		return 1
	}
	return (p.Total + p.Size - 1) / p.Size
}

// HasNext reports whether a page follows this one.
func (p *Page) HasNext() bool {
	return p.Number < p.NumPages()
}

// FeedService resolves feeds.
type FeedService interface {
	Feed(ctx context.Context, scope FeedScope, viewerID, page, pageSize int) (*Page, error)
}
