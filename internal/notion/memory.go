package notion

import (
	"context"
	"maps"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryBackend is an in-process Backend with the same paging and filter
// semantics as the remote store.
type MemoryBackend struct {
	mu          sync.Mutex
	collections map[string][]*Page
	now         func() time.Time
}

// NewMemoryBackend returns an empty store.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		collections: make(map[string][]*Page),
		now:         time.Now,
	}
}

// SetClock overrides the timestamp source for created/edited times.
func (m *MemoryBackend) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Seed inserts a page directly and returns it.
func (m *MemoryBackend) Seed(collectionID string, props Properties) Page {
	p, _ := m.CreatePage(context.Background(), collectionID, props)
	return *p
}

// Pages returns a snapshot of a collection in insertion order.
func (m *MemoryBackend) Pages(collectionID string) []Page {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Page, 0, len(m.collections[collectionID]))
	for _, p := range m.collections[collectionID] {
		out = append(out, clonePage(p))
	}
	return out
}

// Query returns the filtered collection, paged by a numeric offset cursor.
func (m *MemoryBackend) Query(ctx context.Context, collectionID string, req QueryRequest) (*QueryResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*Page
	for _, p := range m.collections[collectionID] {
		if req.Filter.Matches(p.Properties) {
			matched = append(matched, p)
		}
	}

	start := 0
	if req.StartCursor != "" {
		n, err := strconv.Atoi(req.StartCursor)
		if err != nil || n < 0 {
			return nil, &APIError{Status: 400, Code: "validation_error", Message: "invalid start_cursor"}
		}
		start = min(n, len(matched))
	}
	size := req.PageSize
	if size <= 0 || size > 100 {
		size = 100
	}
	end := min(start+size, len(matched))

	resp := &QueryResponse{Results: make([]Page, 0, end-start)}
	for _, p := range matched[start:end] {
		resp.Results = append(resp.Results, clonePage(p))
	}
	if end < len(matched) {
		next := strconv.Itoa(end)
		resp.HasMore = true
		resp.NextCursor = &next
	}
	return resp, nil
}

// CreatePage appends a page with a fresh id.
func (m *MemoryBackend) CreatePage(ctx context.Context, collectionID string, props Properties) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	p := &Page{
		Object:         "page",
		ID:             uuid.NewString(),
		CreatedTime:    now,
		LastEditedTime: now,
		Properties:     maps.Clone(props),
	}
	if p.Properties == nil {
		p.Properties = Properties{}
	}
	m.collections[collectionID] = append(m.collections[collectionID], p)
	out := clonePage(p)
	return &out, nil
}

// UpdatePage replaces the provided properties and leaves the rest untouched.
func (m *MemoryBackend) UpdatePage(ctx context.Context, pageID string, props Properties) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pages := range m.collections {
		for _, p := range pages {
			if p.ID != pageID {
				continue
			}
			maps.Copy(p.Properties, props)
			p.LastEditedTime = m.now().UTC()
			out := clonePage(p)
			return &out, nil
		}
	}
	return nil, &APIError{Status: 404, Code: "object_not_found", Message: "page " + pageID + " not found"}
}

func clonePage(p *Page) Page {
	out := *p
	out.Properties = maps.Clone(p.Properties)
	return out
}
