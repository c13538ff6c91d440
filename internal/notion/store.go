package notion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/patino82/construction-app/internal/models"
	"github.com/patino82/construction-app/internal/retry"
)

// DefaultPageSize is the page size used when listing a collection.
const DefaultPageSize = 50

// Store is the retrying, paginating client every component reads and writes through.
type Store struct {
	backend  Backend
	policy   retry.Policy
	pageSize int
	keys     *keyLock
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithRetry replaces the default retry policy.
func WithRetry(p retry.Policy) StoreOption {
	return func(s *Store) { s.policy = p }
}

// WithPageSize sets the list page size.
func WithPageSize(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// NewStore wraps a backend.
func NewStore(b Backend, opts ...StoreOption) *Store {
	s := &Store{
		backend:  b,
		policy:   retry.Default(),
		pageSize: DefaultPageSize,
		keys:     newKeyLock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListAll follows the cursor until the store reports no more results. Any page
// that still fails after retries aborts the whole traversal.
func (s *Store) ListAll(ctx context.Context, collectionID string, filter *Filter) ([]Page, error) {
	var (
		out    []Page
		cursor string
	)
	for {
		req := QueryRequest{Filter: filter, StartCursor: cursor, PageSize: s.pageSize}
		resp, err := retry.Value(ctx, s.policy, func(ctx context.Context) (*QueryResponse, error) {
			return s.backend.Query(ctx, collectionID, req)
		})
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", collectionID, err)
		}
		for _, p := range resp.Results {
			if p.IsFull() {
				out = append(out, p)
			}
		}
		cursor = resp.Cursor()
		if cursor == "" {
			return out, nil
		}
	}
}

// FindFirst returns the first page matching filter, or nil.
func (s *Store) FindFirst(ctx context.Context, collectionID string, filter *Filter) (*Page, error) {
	req := QueryRequest{Filter: filter, PageSize: 1}
	resp, err := retry.Value(ctx, s.policy, func(ctx context.Context) (*QueryResponse, error) {
		return s.backend.Query(ctx, collectionID, req)
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collectionID, err)
	}
	for _, p := range resp.Results {
		if p.IsFull() {
			return &p, nil
		}
	}
	return nil, nil
}

// Create creates a page and returns its id.
func (s *Store) Create(ctx context.Context, collectionID string, props Properties) (string, error) {
	p, err := retry.Value(ctx, s.policy, func(ctx context.Context) (*Page, error) {
		return s.backend.CreatePage(ctx, collectionID, props)
	})
	if err != nil {
		return "", fmt.Errorf("create in %s: %w", collectionID, err)
	}
	return p.ID, nil
}

// Update overwrites properties on an existing page.
func (s *Store) Update(ctx context.Context, pageID string, props Properties) error {
	_, err := retry.Value(ctx, s.policy, func(ctx context.Context) (*Page, error) {
		return s.backend.UpdatePage(ctx, pageID, props)
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", pageID, err)
	}
	return nil
}

// UpsertByKey converges on a single page whose keyProperty equals keyValue:
// the existing page is updated with freshly built properties, or a new one is
// created. Calls for the same key are serialized within this process; callers
// in other processes can still race between the lookup and the create.
// An empty key is rejected before any remote call.
func (s *Store) UpsertByKey(ctx context.Context, collectionID, keyProperty, keyValue string, build func() Properties) (string, error) {
	if strings.TrimSpace(keyValue) == "" {
		return "", &models.ValidationError{Field: keyProperty, Reason: "upsert key is empty"}
	}
	unlock := s.keys.Lock(collectionID + "\x00" + keyProperty + "\x00" + keyValue)
	defer unlock()

	existing, err := s.FindFirst(ctx, collectionID, TextEquals(keyProperty, keyValue))
	if err != nil {
		return "", err
	}
	props := build()

	if existing != nil {
		if err := s.Update(ctx, existing.ID, props); err != nil {
			return "", err
		}
		slog.Debug("Updated page via idempotent upsert", "collection", collectionID, "property", keyProperty, "key", keyValue)
		return existing.ID, nil
	}

	id, err := s.Create(ctx, collectionID, props)
	if err != nil {
		return "", err
	}
	slog.Debug("Created page via idempotent upsert", "collection", collectionID, "property", keyProperty, "key", keyValue)
	return id, nil
}

// keyLock hands out one mutex per key, dropping it once no caller holds it.
type keyLock struct {
	mu   sync.Mutex
	held map[string]*keyEntry
}

type keyEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyLock() *keyLock {
	return &keyLock{held: make(map[string]*keyEntry)}
}

// Lock blocks until key is free and returns its release func.
func (l *keyLock) Lock(key string) func() {
	l.mu.Lock()
	e, ok := l.held[key]
	if !ok {
		e = &keyEntry{}
		l.held[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.held, key)
		}
		l.mu.Unlock()
	}
}
