package service

import (
	"context"
	"time"

	"github.com/cooperval/content-services/internal/content"
	"github.com/cooperval/content-services/internal/content/repository"
	"go.mongodb.org/mongo-driver/mongo"
)

// recentNewsCount is how many articles the site's "recent news" strip shows.
const recentNewsCount = 5

// Service exposes the public read operations the site pages consume. Lookups
// run over the store's full (already ordered) result sets; the store contract
// has no pagination or server-side filtering.
type Service interface {
	News(ctx context.Context) ([]*content.News, error)
	RecentNews(ctx context.Context) ([]*content.News, error)
	NewsBySlug(ctx context.Context, slug string) (*content.News, error)
	Promotions(ctx context.Context) ([]*content.Promotion, error)
	ActivePromotions(ctx context.Context) ([]*content.Promotion, error)
	PromotionCategories(ctx context.Context) ([]string, error)
	Promotion(ctx context.Context, id string) (*content.Promotion, error)
	Store() content.Store
}

// NewMemoryService returns a Service backed by the in-memory store.
func NewMemoryService() Service {
	return &storeService{store: repository.NewMemoryStore(), now: time.Now}
}

// NewMongoService returns a Service backed by MongoDB collections in db.
func NewMongoService(db *mongo.Database) Service {
	return &storeService{store: repository.NewMongoStore(db), now: time.Now}
}

// NewService wraps an existing store (used by tests and by wiring that shares
// the store with the admin controllers).
func NewService(store content.Store) Service {
	return &storeService{store: store, now: time.Now}
}

type storeService struct {
	store content.Store
	now   func() time.Time
}

func (s *storeService) Store() content.Store { return s.store }

func (s *storeService) News(ctx context.Context) ([]*content.News, error) {
	return s.store.FetchNews(ctx)
}

func (s *storeService) RecentNews(ctx context.Context) ([]*content.News, error) {
	list, err := s.store.FetchNews(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) > recentNewsCount {
		list = list[:recentNewsCount]
	}
	return list, nil
}

func (s *storeService) NewsBySlug(ctx context.Context, slug string) (*content.News, error) {
	list, err := s.store.FetchNews(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range list {
		if n.Slug.Current == slug {
			return n, nil
		}
	}
	return nil, content.ErrNotFound
}

func (s *storeService) Promotions(ctx context.Context) ([]*content.Promotion, error) {
	return s.store.FetchPromotions(ctx)
}

func (s *storeService) ActivePromotions(ctx context.Context) ([]*content.Promotion, error) {
	list, err := s.store.FetchPromotions(ctx)
	if err != nil {
		return nil, err
	}
	return content.ActivePromotions(list, s.now()), nil
}

func (s *storeService) PromotionCategories(ctx context.Context) ([]string, error) {
	list, err := s.store.FetchPromotions(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]content.Document, len(list))
	for i, p := range list {
		docs[i] = p
	}
	return content.Categories(docs), nil
}

func (s *storeService) Promotion(ctx context.Context, id string) (*content.Promotion, error) {
	list, err := s.store.FetchPromotions(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, content.ErrNotFound
}
