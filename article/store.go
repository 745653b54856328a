package article

import "context"

// Store is the article sub-interface of the unified paywall store.
type Store interface {
	// Create persists the article and assigns the next sequential id,
	// writing it back to a.ID.
	Create(ctx context.Context, a *Article) error
	Get(ctx context.Context, articleID int64) (*Article, error)
	List(ctx context.Context, opts ListOpts) ([]*Article, error)
}
