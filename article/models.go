// Package article defines the published-content registry types.
package article

import (
	"time"

	"github.com/xraph/paywall/types"
)

// Article is a published unit of content. Immutable once created: the id is
// assigned sequentially by the store and never reused, and author, price and
// content reference are fixed for life. A zero price means the article is
// freely accessible to any identity.
type Article struct {
	types.Entity
	ID          int64       `json:"id"`
	Author      string      `json:"author"`
	Price       types.Money `json:"price"`
	ContentRef  string      `json:"content_ref"`
	PublishedAt time.Time   `json:"published_at"`
}

// Free reports whether the article is freely accessible.
func (a *Article) Free() bool { return a.Price.IsZero() }

// Details is the public view of an article: everything except the content
// reference, plus a caller-specific access flag. Safe to return to any
// identity.
type Details struct {
	ID          int64       `json:"id"`
	Author      string      `json:"author"`
	Price       types.Money `json:"price"`
	Free        bool        `json:"free"`
	PublishedAt time.Time   `json:"published_at"`
	HasAccess   bool        `json:"has_access"`
}

// ListOpts filters article listings.
type ListOpts struct {
	Author string
	Limit  int
	Offset int
}
