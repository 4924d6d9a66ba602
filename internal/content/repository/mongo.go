package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cooperval/content-services/internal/content"
)

// MongoStore implements content.Store on two MongoDB collections. Documents
// are keyed by a string _id assigned on creation; slugs are indexed for the
// public by-slug lookups but not unique (collisions are accepted as-is).
type MongoStore struct {
	news       *mongo.Collection
	promotions *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	s := &MongoStore{
		news:       db.Collection("news"),
		promotions: db.Collection("promotions"),
	}
	idx := mongo.IndexModel{Keys: bson.D{{Key: "slug.current", Value: 1}}}
	s.news.Indexes().CreateOne(context.Background(), idx)
	s.promotions.Indexes().CreateOne(context.Background(), idx)
	return s
}

func (s *MongoStore) collection(kind content.Kind) *mongo.Collection {
	if kind == content.KindNews {
		return s.news
	}
	return s.promotions
}

func (s *MongoStore) Create(ctx context.Context, doc content.Document) (string, error) {
	var id string
	switch d := doc.(type) {
	case *content.News:
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		id = d.ID
	case *content.Promotion:
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		id = d.ID
	default:
		return "", fmt.Errorf("%w: unsupported document kind %s", content.ErrRemoteWrite, doc.DocumentKind())
	}
	if _, err := s.collection(doc.DocumentKind()).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("%w: %v", content.ErrRemoteWrite, err)
	}
	return id, nil
}

// Patch overwrites only the fields present on doc after omitempty
// marshalling, so an edit without a new image keeps the stored one.
func (s *MongoStore) Patch(ctx context.Context, id string, doc content.Document) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", content.ErrRemoteWrite, err)
	}
	var set bson.M
	if err := bson.Unmarshal(raw, &set); err != nil {
		return fmt.Errorf("%w: %v", content.ErrRemoteWrite, err)
	}
	delete(set, "_id")

	res, err := s.collection(doc.DocumentKind()).UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("%w: %v", content.ErrRemoteWrite, err)
	}
	if res.MatchedCount == 0 {
		return content.ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	for _, col := range []*mongo.Collection{s.news, s.promotions} {
		res, err := col.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("%w: %v", content.ErrRemoteWrite, err)
		}
		if res.DeletedCount > 0 {
			return nil
		}
	}
	return content.ErrNotFound
}

func (s *MongoStore) FetchNews(ctx context.Context) ([]*content.News, error) {
	opts := options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}})
	cur, err := s.news.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", content.ErrRemoteRead, err)
	}
	defer cur.Close(ctx)
	out := []*content.News{}
	for cur.Next(ctx) {
		var n content.News
		if err := cur.Decode(&n); err != nil {
			return nil, fmt.Errorf("%w: %v", content.ErrRemoteRead, err)
		}
		out = append(out, &n)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", content.ErrRemoteRead, err)
	}
	return out, nil
}

func (s *MongoStore) FetchPromotions(ctx context.Context) ([]*content.Promotion, error) {
	opts := options.Find().SetSort(bson.D{{Key: "validUntil", Value: -1}})
	cur, err := s.promotions.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", content.ErrRemoteRead, err)
	}
	defer cur.Close(ctx)
	out := []*content.Promotion{}
	for cur.Next(ctx) {
		var p content.Promotion
		if err := cur.Decode(&p); err != nil {
			return nil, fmt.Errorf("%w: %v", content.ErrRemoteRead, err)
		}
		out = append(out, &p)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", content.ErrRemoteRead, err)
	}
	return out, nil
}
