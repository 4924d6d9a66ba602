package content

import (
	"strings"
	"time"
)

// Kind tags the two document types served by the content store.
type Kind string

const (
	KindNews      Kind = "news"
	KindPromotion Kind = "promotion"
)

// Slug is the URL-safe identifier derived from a document's display title.
// It is recomputed from the title on every write, never stored independently.
type Slug struct {
	Current string `json:"current" bson:"current"`
}

// ImageRef points at a binary asset owned by the object store. Documents only
// ever embed the reference, never the asset itself.
type ImageRef struct {
	AssetID string `json:"assetId" bson:"assetId"`
	Alt     string `json:"alt,omitempty" bson:"alt,omitempty"`
}

// News is a published article on the site.
// Category and Author are optional; an absent field means "unset" (omitted on
// write, not null — the store's partial-document semantics depend on that).
type News struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	Title       string     `json:"title" bson:"title"`
	Slug        Slug       `json:"slug" bson:"slug"`
	Excerpt     string     `json:"excerpt" bson:"excerpt"`
	Content     string     `json:"content,omitempty" bson:"content,omitempty"`
	Images      []ImageRef `json:"images,omitempty" bson:"images,omitempty"`
	PublishedAt time.Time  `json:"publishedAt" bson:"publishedAt"`
	Author      string     `json:"author,omitempty" bson:"author,omitempty"`
	Category    string     `json:"category,omitempty" bson:"category,omitempty"`
}

// Promotion is a product offer with a validity window.
// CurrentPrice <= OriginalPrice is intentionally NOT enforced here.
type Promotion struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	ProductName   string    `json:"productName" bson:"productName"`
	Slug          Slug      `json:"slug" bson:"slug"`
	Description   string    `json:"description" bson:"description"`
	OriginalPrice float64   `json:"originalPrice" bson:"originalPrice"`
	CurrentPrice  float64   `json:"currentPrice" bson:"currentPrice"`
	Category      string    `json:"category,omitempty" bson:"category,omitempty"`
	Image         *ImageRef `json:"image,omitempty" bson:"image,omitempty"`
	ValidUntil    time.Time `json:"validUntil" bson:"validUntil"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

// Document is the common view the list/filter machinery needs over both kinds.
type Document interface {
	DocumentID() string
	DocumentKind() Kind
	DocumentCategory() string
	// MatchesSearch reports whether the already-lowercased term occurs in the
	// kind's searchable fields. An empty term matches everything.
	MatchesSearch(lowered string) bool
}

func (n *News) DocumentID() string       { return n.ID }
func (n *News) DocumentKind() Kind       { return KindNews }
func (n *News) DocumentCategory() string { return n.Category }

func (n *News) MatchesSearch(lowered string) bool {
	return strings.Contains(strings.ToLower(n.Title), lowered) ||
		strings.Contains(strings.ToLower(n.Excerpt), lowered)
}

func (p *Promotion) DocumentID() string       { return p.ID }
func (p *Promotion) DocumentKind() Kind       { return KindPromotion }
func (p *Promotion) DocumentCategory() string { return p.Category }

func (p *Promotion) MatchesSearch(lowered string) bool {
	return strings.Contains(strings.ToLower(p.ProductName), lowered) ||
		strings.Contains(strings.ToLower(p.Description), lowered)
}

// Active reports whether the promotion is still running at the given instant.
// A promotion valid until exactly now counts as active (boundary is >=).
func (p *Promotion) Active(now time.Time) bool {
	return !p.ValidUntil.Before(now)
}
