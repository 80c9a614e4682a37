// Package store implements the photo library on top of BoltDB.
//
// The library is the authoritative, externally-mutable collection that the
// rest of blink mirrors. It persists assets and the three review albums in
// bbolt buckets, keeps a hot in-memory copy for reads, and reports every
// committed change to subscribers as a domain.ChangeNotification.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/alexwlchan/blink/internal/domain"
)

// Bucket names
var (
	bucketAssets = []byte("assets")
	bucketAlbums = map[domain.ReviewState][]byte{
		domain.StateApproved:    []byte("album:approved"),
		domain.StateNeedsAction: []byte("album:needs-action"),
		domain.StateRejected:    []byte("album:rejected"),
	}
)

// DefaultMaxIncrementalChanges is the change size above which notifications
// stop carrying per-item details.
const DefaultMaxIncrementalChanges = 200

// Options configures a PhotoStore.
type Options struct {
	// MaxIncrementalChanges caps how many items a notification may describe
	// before it degrades to "reload everything". Zero uses the default;
	// negative disables the cap.
	MaxIncrementalChanges int

	// PreviewLatency is added to every LoadPreview to mimic a slow renderer.
	PreviewLatency time.Duration

	Logger *slog.Logger
}

// assetRecord is the persisted form of domain.Asset
type assetRecord struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	CreatedAt  time.Time `json:"created_at"`
	IsFavorite bool      `json:"favorite,omitempty"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
}

func toRecord(a domain.Asset) assetRecord {
	return assetRecord{
		ID:         string(a.ID),
		Filename:   a.Filename,
		CreatedAt:  a.CreatedAt,
		IsFavorite: a.IsFavorite,
		Width:      a.Width,
		Height:     a.Height,
	}
}

func (r assetRecord) toAsset() domain.Asset {
	return domain.Asset{
		ID:         domain.AssetID(r.ID),
		Filename:   r.Filename,
		CreatedAt:  r.CreatedAt,
		IsFavorite: r.IsFavorite,
		Width:      r.Width,
		Height:     r.Height,
	}
}

// PhotoStore implements domain.CollectionSource and domain.PreviewSource.
type PhotoStore struct {
	db     *bolt.DB
	opts   Options
	logger *slog.Logger

	writeMu sync.Mutex // Serializes mutations and notification dispatch

	mu     sync.RWMutex // Protects lib and closed
	lib    *library
	closed bool

	subMu   sync.Mutex
	subs    map[int]func(domain.ChangeNotification)
	nextSub int
}

// Open opens (or creates) the library at path. An empty path gives a
// memory-only library with no persistence.
func Open(path string, opts Options) (*PhotoStore, error) {
	if opts.MaxIncrementalChanges == 0 {
		opts.MaxIncrementalChanges = DefaultMaxIncrementalChanges
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &PhotoStore{
		opts:   opts,
		logger: logger,
		lib:    newLibrary(),
		subs:   make(map[int]func(domain.ChangeNotification)),
	}
	if path == "" {
		return s, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if errors.Is(err, bolt.ErrTimeout) {
		return nil, fmt.Errorf("%w: %s is in use by another process", domain.ErrUnavailable, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketAssets); err != nil {
			return err
		}
		for _, name := range bucketAlbums {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	lib, err := load(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load library: %w", err)
	}

	s.db = db
	s.lib = lib
	logger.Info("opened photo library", "path", path, "assets", len(lib.order))
	return s, nil
}

// load reads the persisted library into memory
func load(db *bolt.DB) (*library, error) {
	lib := newLibrary()
	err := db.View(func(tx *bolt.Tx) error {
		err := tx.Bucket(bucketAssets).ForEach(func(k, v []byte) error {
			var rec assetRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("asset %s: %w", k, err)
			}
			a := rec.toAsset()
			lib.assets[a.ID] = a
			return nil
		})
		if err != nil {
			return err
		}
		for state, name := range bucketAlbums {
			members := lib.albums[state]
			err := tx.Bucket(name).ForEach(func(k, _ []byte) error {
				members[domain.AssetID(k)] = struct{}{}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	lib.sortOrder()
	return lib, nil
}

// Close releases the database. Further calls return domain.ErrClosed.
func (s *PhotoStore) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.subMu.Lock()
	s.subs = make(map[int]func(domain.ChangeNotification))
	s.subMu.Unlock()

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// current returns the hot copy, or ErrClosed
func (s *PhotoStore) current() (*library, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrClosed
	}
	return s.lib, nil
}

// library is one immutable version of the collection. Mutations clone it.
type library struct {
	assets map[domain.AssetID]domain.Asset
	order  []domain.Asset
	albums map[domain.ReviewState]map[domain.AssetID]struct{}
}

func newLibrary() *library {
	lib := &library{
		assets: make(map[domain.AssetID]domain.Asset),
		albums: make(map[domain.ReviewState]map[domain.AssetID]struct{}, len(domain.ReviewStates)),
	}
	for _, state := range domain.ReviewStates {
		lib.albums[state] = make(map[domain.AssetID]struct{})
	}
	return lib
}

func (l *library) clone() *library {
	next := &library{
		assets: make(map[domain.AssetID]domain.Asset, len(l.assets)),
		albums: make(map[domain.ReviewState]map[domain.AssetID]struct{}, len(l.albums)),
	}
	for id, a := range l.assets {
		next.assets[id] = a
	}
	for state, members := range l.albums {
		m := make(map[domain.AssetID]struct{}, len(members))
		for id := range members {
			m[id] = struct{}{}
		}
		next.albums[state] = m
	}
	return next
}

// sortOrder rebuilds the ordering: newest first, ties broken by identifier
func (l *library) sortOrder() {
	l.order = make([]domain.Asset, 0, len(l.assets))
	for _, a := range l.assets {
		l.order = append(l.order, a)
	}
	sort.Slice(l.order, func(i, j int) bool {
		a, b := l.order[i], l.order[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func (l *library) albumIDs(state domain.ReviewState) []domain.AssetID {
	members := l.albums[state]
	ids := make([]domain.AssetID, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

func sortIDs(ids []domain.AssetID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
