package content

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/cooperval/content-services/pkg/logger"
)

// SubmissionState tracks a form's submit lifecycle:
// Idle -> Submitting -> Succeeded|Failed -> (Acknowledge) -> Idle.
type SubmissionState int

const (
	StateIdle SubmissionState = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

// StagedAsset is a binary selected in the form but not yet uploaded. Upload
// happens inside Submit, strictly before the document is persisted.
type StagedAsset struct {
	Reader      io.Reader
	Filename    string
	Size        int64
	ContentType string
}

// PromotionController owns the promotion form's field state and submission
// lifecycle. At most one submission is in flight per controller; Submit calls
// made while already Submitting are ignored. A failed submission keeps every
// field value (and the staged asset) so the operator can retry as-is.
type PromotionController struct {
	mu        sync.Mutex
	store     Store
	assets    AssetUploader
	now       func() time.Time
	onSuccess func()

	form    PromotionForm
	editing *Promotion
	staged  *StagedAsset
	state   SubmissionState
	lastErr error
}

// NewPromotionController builds a controller for creating a promotion, or for
// editing when existing is non-nil (fields are pre-populated from it).
// onSuccess runs after a successful persist; nil is allowed.
func NewPromotionController(store Store, assets AssetUploader, existing *Promotion, onSuccess func()) *PromotionController {
	c := &PromotionController{
		store:     store,
		assets:    assets,
		now:       time.Now,
		onSuccess: onSuccess,
		editing:   existing,
	}
	if existing != nil {
		c.form = PromotionForm{
			ProductName:   existing.ProductName,
			Description:   existing.Description,
			OriginalPrice: existing.OriginalPrice,
			CurrentPrice:  existing.CurrentPrice,
			Category:      existing.Category,
			ValidUntil:    DateField(existing.ValidUntil),
		}
	}
	return c
}

// SetField stores a single field value, applying the field's coercion.
// Price fields parse to a decimal and silently fall back to 0 on unparsable
// input; everything else passes through as text. No eager validation.
func (c *PromotionController) SetField(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch name {
	case "productName":
		c.form.ProductName = value
	case "description":
		c.form.Description = value
	case "originalPrice":
		c.form.OriginalPrice = parsePrice(value)
	case "currentPrice":
		c.form.CurrentPrice = parsePrice(value)
	case "category":
		c.form.Category = value
	case "validUntil":
		c.form.ValidUntil = value
	}
}

// StageAsset records a product image to be uploaded on the next Submit.
func (c *PromotionController) StageAsset(a *StagedAsset) {
	c.mu.Lock()
	c.staged = a
	c.mu.Unlock()
}

// Submit uploads the staged asset (if any), rebuilds the document and
// persists it: patch when editing, create otherwise. The three steps are
// strictly sequential; a failed upload aborts the whole submission.
// Returns nil without doing anything when a submission is already in flight.
func (c *PromotionController) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return nil
	}
	c.state = StateSubmitting
	c.lastErr = nil
	form := c.form
	staged := c.staged
	editing := c.editing
	c.mu.Unlock()

	var image *ImageRef
	if staged != nil {
		assetID, err := c.assets.UploadAsset(ctx, staged.Reader, staged.Filename, staged.Size, staged.ContentType)
		if err != nil {
			return c.fail("promotion image upload", fmt.Errorf("%w: %v", ErrRemoteUpload, err))
		}
		image = &ImageRef{AssetID: assetID}
	}

	doc, err := PromotionFromForm(form, image, c.now())
	if err != nil {
		return c.fail("promotion mapping", err)
	}

	if editing != nil {
		err = c.store.Patch(ctx, editing.ID, doc)
	} else {
		_, err = c.store.Create(ctx, doc)
	}
	if err != nil {
		return c.fail("promotion save", err)
	}

	c.mu.Lock()
	c.state = StateSucceeded
	c.staged = nil
	c.mu.Unlock()
	if c.onSuccess != nil {
		c.onSuccess()
	}
	return nil
}

func (c *PromotionController) fail(op string, err error) error {
	logger.Errorf("%s failed: %v", op, err)
	c.mu.Lock()
	c.state = StateFailed
	c.lastErr = err
	c.mu.Unlock()
	return err
}

// State returns the current submission state.
func (c *PromotionController) State() SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the reason of the last failed submission, nil otherwise.
func (c *PromotionController) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Form returns a copy of the current field values.
func (c *PromotionController) Form() PromotionForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Acknowledge returns the controller to Idle after a terminal state has been
// observed. No-op while Submitting.
func (c *PromotionController) Acknowledge() {
	c.mu.Lock()
	if c.state != StateSubmitting {
		c.state = StateIdle
	}
	c.mu.Unlock()
}

// NewsController is the news counterpart of PromotionController. News carry an
// ordered list of images, so multiple assets can be staged per submission.
type NewsController struct {
	mu        sync.Mutex
	store     Store
	assets    AssetUploader
	now       func() time.Time
	onSuccess func()

	form    NewsForm
	editing *News
	staged  []*StagedAsset
	state   SubmissionState
	lastErr error
}

func NewNewsController(store Store, assets AssetUploader, existing *News, onSuccess func()) *NewsController {
	c := &NewsController{
		store:     store,
		assets:    assets,
		now:       time.Now,
		onSuccess: onSuccess,
		editing:   existing,
	}
	if existing != nil {
		c.form = NewsForm{
			Title:    existing.Title,
			Excerpt:  existing.Excerpt,
			Content:  existing.Content,
			Author:   existing.Author,
			Category: existing.Category,
		}
	}
	return c
}

func (c *NewsController) SetField(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch name {
	case "title":
		c.form.Title = value
	case "excerpt":
		c.form.Excerpt = value
	case "content":
		c.form.Content = value
	case "author":
		c.form.Author = value
	case "category":
		c.form.Category = value
	}
}

// StageAsset appends an article image for the next Submit.
func (c *NewsController) StageAsset(a *StagedAsset) {
	c.mu.Lock()
	c.staged = append(c.staged, a)
	c.mu.Unlock()
}

func (c *NewsController) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return nil
	}
	c.state = StateSubmitting
	c.lastErr = nil
	form := c.form
	staged := c.staged
	editing := c.editing
	c.mu.Unlock()

	var images []ImageRef
	for _, a := range staged {
		assetID, err := c.assets.UploadAsset(ctx, a.Reader, a.Filename, a.Size, a.ContentType)
		if err != nil {
			return c.fail("news image upload", fmt.Errorf("%w: %v", ErrRemoteUpload, err))
		}
		images = append(images, ImageRef{AssetID: assetID})
	}

	doc := NewsFromForm(form, images, c.now())

	var err error
	if editing != nil {
		err = c.store.Patch(ctx, editing.ID, doc)
	} else {
		_, err = c.store.Create(ctx, doc)
	}
	if err != nil {
		return c.fail("news save", err)
	}

	c.mu.Lock()
	c.state = StateSucceeded
	c.staged = nil
	c.mu.Unlock()
	if c.onSuccess != nil {
		c.onSuccess()
	}
	return nil
}

func (c *NewsController) fail(op string, err error) error {
	logger.Errorf("%s failed: %v", op, err)
	c.mu.Lock()
	c.state = StateFailed
	c.lastErr = err
	c.mu.Unlock()
	return err
}

func (c *NewsController) State() SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *NewsController) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *NewsController) Form() NewsForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *NewsController) Acknowledge() {
	c.mu.Lock()
	if c.state != StateSubmitting {
		c.state = StateIdle
	}
	c.mu.Unlock()
}

// parsePrice coerces a price field to a decimal, defaulting to 0 on
// unparsable input. The silent fallback is a documented policy, not a bug.
func parsePrice(v string) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}
