package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/cooperval/content-services/internal/content"
)

// MemoryStore is an in-memory content.Store used for unit tests and as the
// fallback when MongoDB is unreachable. Patch semantics intentionally match
// the Mongo implementation: only fields surviving omitempty marshalling are
// overwritten.
type MemoryStore struct {
	mu         sync.RWMutex
	news       map[string]*content.News
	promotions map[string]*content.Promotion
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		news:       make(map[string]*content.News),
		promotions: make(map[string]*content.Promotion),
	}
}

func (m *MemoryStore) Create(ctx context.Context, doc content.Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch d := doc.(type) {
	case *content.News:
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		cp := *d
		m.news[d.ID] = &cp
		return d.ID, nil
	case *content.Promotion:
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		cp := *d
		m.promotions[d.ID] = &cp
		return d.ID, nil
	default:
		return "", fmt.Errorf("%w: unsupported document kind %s", content.ErrRemoteWrite, doc.DocumentKind())
	}
}

func (m *MemoryStore) Patch(ctx context.Context, id string, doc content.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch doc.DocumentKind() {
	case content.KindNews:
		existing, ok := m.news[id]
		if !ok {
			return content.ErrNotFound
		}
		return mergeSet(existing, doc)
	default:
		existing, ok := m.promotions[id]
		if !ok {
			return content.ErrNotFound
		}
		return mergeSet(existing, doc)
	}
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.news[id]; ok {
		delete(m.news, id)
		return nil
	}
	if _, ok := m.promotions[id]; ok {
		delete(m.promotions, id)
		return nil
	}
	return content.ErrNotFound
}

func (m *MemoryStore) FetchNews(ctx context.Context) ([]*content.News, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*content.News, 0, len(m.news))
	for _, n := range m.news {
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	return out, nil
}

func (m *MemoryStore) FetchPromotions(ctx context.Context) ([]*content.Promotion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*content.Promotion, 0, len(m.promotions))
	for _, p := range m.promotions {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ValidUntil.After(out[j].ValidUntil) })
	return out, nil
}

// mergeSet applies the provided fields of patch onto dst through a bson
// round-trip, so omitted optional fields (category, image) are left alone
// exactly as a Mongo $set would leave them.
func mergeSet(dst any, patch content.Document) error {
	raw, err := bson.Marshal(patch)
	if err != nil {
		return fmt.Errorf("%w: %v", content.ErrRemoteWrite, err)
	}
	var set bson.M
	if err := bson.Unmarshal(raw, &set); err != nil {
		return fmt.Errorf("%w: %v", content.ErrRemoteWrite, err)
	}
	delete(set, "_id")

	cur, err := bson.Marshal(dst)
	if err != nil {
		return fmt.Errorf("%w: %v", content.ErrRemoteWrite, err)
	}
	var doc bson.M
	if err := bson.Unmarshal(cur, &doc); err != nil {
		return fmt.Errorf("%w: %v", content.ErrRemoteWrite, err)
	}
	for k, v := range set {
		doc[k] = v
	}
	merged, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", content.ErrRemoteWrite, err)
	}
	if err := bson.Unmarshal(merged, dst); err != nil {
		return fmt.Errorf("%w: %v", content.ErrRemoteWrite, err)
	}
	return nil
}
