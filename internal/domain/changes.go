package domain

// AssetChanges describes how the primary, date-ordered collection changed.
//
// After is always the complete ordering once the change has been applied and
// is the source of truth for order. The index fields are only meaningful
// when Incremental is true.
type AssetChanges struct {
	After       []Asset
	Incremental bool

	Removed    []int     // ascending indices into the previous ordering
	Inserted   []int     // ascending indices into After
	Changed    []Asset   // current state of assets whose properties changed
	RemovedIDs []AssetID // identifiers at the Removed indices
	HasMoves   bool      // some surviving assets changed relative order
}

// IsEmpty reports whether the change touched nothing in the collection.
func (c *AssetChanges) IsEmpty() bool {
	return c != nil && c.Incremental && !c.HasMoves &&
		len(c.Removed) == 0 && len(c.Inserted) == 0 && len(c.Changed) == 0
}

// MembershipChanges describes how one album changed.
type MembershipChanges struct {
	Incremental bool
	Inserted    []AssetID
	Removed     []AssetID
}

// IsEmpty reports whether the album delta inserts and removes nothing.
func (c *MembershipChanges) IsEmpty() bool {
	return c != nil && c.Incremental && len(c.Inserted) == 0 && len(c.Removed) == 0
}

// ChangeNotification is one event from the library's change feed.
//
// A nil Assets or a missing Albums entry means the library could not describe
// the change for that collection; consumers must re-fetch it rather than
// assume it is unchanged.
type ChangeNotification struct {
	Assets *AssetChanges
	Albums map[ReviewState]*MembershipChanges
}

// MembershipChange adds an asset to, or removes it from, a review album.
type MembershipChange struct {
	State  ReviewState
	Member bool
}
