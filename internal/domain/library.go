package domain

import "context"

// Library is a complete read of the photo library.
type Library struct {
	Assets []Asset                  // ordered newest first
	Albums map[ReviewState][]AssetID // review album contents
}

// CollectionSource is the authoritative photo library.
// Reads may be slow (O(n) in library size); they are only used for full
// reloads and for collections a change notification could not describe.
type CollectionSource interface {
	// FetchAll reads the ordered assets and every review album.
	FetchAll(ctx context.Context) (Library, error)

	// FetchAssets reads the ordered assets only.
	FetchAssets(ctx context.Context) ([]Asset, error)

	// FetchAlbum reads the members of one review album.
	FetchAlbum(ctx context.Context, state ReviewState) ([]AssetID, error)

	// Subscribe registers fn for change notifications, delivered in order.
	// fn must return quickly and must not mutate the library.
	Subscribe(fn func(ChangeNotification)) (cancel func())

	// UpdateMembership adds or removes an asset from review albums in one change.
	UpdateMembership(ctx context.Context, id AssetID, changes []MembershipChange) error

	// SetFavorite sets the favorite flag of an asset.
	SetFavorite(ctx context.Context, id AssetID, favorite bool) error
}

// PreviewSource produces rendered previews. Calls may take seconds.
type PreviewSource interface {
	LoadPreview(ctx context.Context, id AssetID, size PreviewSize) (*Preview, error)
}
