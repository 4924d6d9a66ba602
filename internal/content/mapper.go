package content

import (
	"fmt"
	"time"
)

// dateOnly is the wire format of the validUntil form field.
const dateOnly = "2006-01-02"

// PromotionForm is the field set collected by the admin promotion form.
// Prices arrive already coerced (see FormController.SetField); ValidUntil is a
// date-only string that the mapper expands to a full UTC timestamp.
type PromotionForm struct {
	ProductName   string
	Description   string
	OriginalPrice float64
	CurrentPrice  float64
	Category      string
	ValidUntil    string
}

// NewsForm is the field set collected by the admin news form.
type NewsForm struct {
	Title    string
	Excerpt  string
	Content  string
	Author   string
	Category string
}

// PromotionFromForm rebuilds the full promotion document from form state.
// The slug is always recomputed from the current product name, so editing the
// name changes the slug on the next save. image is the already-uploaded asset
// reference, or nil when none was supplied on this submission (a patch without
// the field leaves any previous image untouched).
func PromotionFromForm(f PromotionForm, image *ImageRef, now time.Time) (*Promotion, error) {
	validUntil, err := time.ParseInLocation(dateOnly, f.ValidUntil, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid validUntil %q: %w", f.ValidUntil, err)
	}
	return &Promotion{
		ProductName:   f.ProductName,
		Slug:          Slug{Current: GenerateSlug(f.ProductName)},
		Description:   f.Description,
		OriginalPrice: f.OriginalPrice,
		CurrentPrice:  f.CurrentPrice,
		Category:      f.Category,
		Image:         image,
		ValidUntil:    validUntil,
		CreatedAt:     now.UTC(),
	}, nil
}

// NewsFromForm rebuilds the full news document from form state. images are the
// already-uploaded asset references for this submission, in order.
func NewsFromForm(f NewsForm, images []ImageRef, now time.Time) *News {
	return &News{
		Title:       f.Title,
		Slug:        Slug{Current: GenerateSlug(f.Title)},
		Excerpt:     f.Excerpt,
		Content:     f.Content,
		Images:      images,
		PublishedAt: now.UTC(),
		Author:      f.Author,
		Category:    f.Category,
	}
}

// DateField formats a stored timestamp back into the date-only form value used
// when pre-populating an edit form.
func DateField(t time.Time) string {
	return t.UTC().Format(dateOnly)
}
