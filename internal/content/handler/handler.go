package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cooperval/content-services/internal/content"
	"github.com/cooperval/content-services/internal/content/service"
	"github.com/cooperval/content-services/pkg/metrics"
)

// assetURLTTL is how long presigned image URLs stay valid.
const assetURLTTL = 15 * time.Minute

// AssetURLSigner resolves an opaque asset id to a fetchable URL. Implemented
// by the MinIO storage; image transformation/CDN concerns stay on that side.
type AssetURLSigner interface {
	AssetURL(ctx context.Context, assetID string, expires time.Duration) (string, error)
}

// ContentHandler serves the public site reads and the admin panel flows.
// It owns one list reconciler per content kind for the admin list views and
// the two-step delete confirmation.
type ContentHandler struct {
	svc    service.Service
	store  content.Store
	assets content.AssetUploader
	signer AssetURLSigner
	phone  string

	newsList  *content.Reconciler
	promoList *content.Reconciler
}

// New wires a content handler. assets and signer may be nil when no object
// storage is configured; the related endpoints then report unavailability.
// phone is the WhatsApp number promotions link out to.
func New(svc service.Service, assets content.AssetUploader, signer AssetURLSigner, phone string) *ContentHandler {
	store := svc.Store()
	return &ContentHandler{
		svc:       svc,
		store:     store,
		assets:    assets,
		signer:    signer,
		phone:     phone,
		newsList:  content.NewReconciler(store, content.KindNews),
		promoList: content.NewReconciler(store, content.KindPromotion),
	}
}

// Close cancels any delayed reconciliation still scheduled.
func (h *ContentHandler) Close() {
	h.newsList.Close()
	h.promoList.Close()
}

// Register mounts all routes. authRequired guards the admin group; pass nil
// to leave it open (dev mode, mirrors how the auth wiring degrades).
func (h *ContentHandler) Register(r *gin.Engine, authRequired gin.HandlerFunc) {
	api := r.Group("/api")

	api.GET("/news", h.listNews)
	api.GET("/news/recent", h.recentNews)
	api.GET("/news/slug/:slug", h.newsBySlug)

	api.GET("/promotions", h.listPromotions)
	api.GET("/promotions/active", h.activePromotions)
	api.GET("/promotions/categories", h.promotionCategories)
	api.GET("/promotions/:id/whatsapp", h.whatsAppLink)

	api.GET("/assets/:id/url", h.assetURL)

	admin := api.Group("/admin")
	if authRequired != nil {
		admin.Use(authRequired)
	}
	admin.POST("/assets", h.uploadAsset)

	admin.GET("/news", h.adminList(h.newsList))
	admin.POST("/news", h.createNews)
	admin.PATCH("/news/:id", h.updateNews)
	admin.DELETE("/news/:id", h.requestDelete(h.newsList))
	admin.POST("/news/:id/confirm", h.confirmDelete(h.newsList, content.KindNews))
	admin.DELETE("/news/:id/pending", h.cancelDelete(h.newsList))

	admin.GET("/promotions", h.adminList(h.promoList))
	admin.POST("/promotions", h.createPromotion)
	admin.PATCH("/promotions/:id", h.updatePromotion)
	admin.DELETE("/promotions/:id", h.requestDelete(h.promoList))
	admin.POST("/promotions/:id/confirm", h.confirmDelete(h.promoList, content.KindPromotion))
	admin.DELETE("/promotions/:id/pending", h.cancelDelete(h.promoList))
}

// --- public reads ---

func (h *ContentHandler) listNews(c *gin.Context) {
	list, err := h.svc.News(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not load news"})
		return
	}
	if cat := c.Query("category"); cat != "" {
		kept := list[:0:0]
		for _, n := range list {
			if n.Category == cat {
				kept = append(kept, n)
			}
		}
		list = kept
	}
	c.JSON(http.StatusOK, list)
}

func (h *ContentHandler) recentNews(c *gin.Context) {
	list, err := h.svc.RecentNews(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not load news"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ContentHandler) newsBySlug(c *gin.Context) {
	n, err := h.svc.NewsBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not load news"})
		return
	}
	c.JSON(http.StatusOK, n)
}

// promotionView adds the derived display fields the promotions page renders.
type promotionView struct {
	*content.Promotion
	Discount      int  `json:"discount"`
	DaysRemaining int  `json:"daysRemaining"`
	Expired       bool `json:"expired"`
}

func promotionViews(list []*content.Promotion, now time.Time) []promotionView {
	out := make([]promotionView, 0, len(list))
	for _, p := range list {
		days := content.DaysRemaining(p.ValidUntil, now)
		out = append(out, promotionView{
			Promotion:     p,
			Discount:      content.CalculateDiscount(p.OriginalPrice, p.CurrentPrice),
			DaysRemaining: days,
			Expired:       days <= 0,
		})
	}
	return out
}

func (h *ContentHandler) listPromotions(c *gin.Context) {
	list, err := h.svc.Promotions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not load promotions"})
		return
	}
	if cat := c.Query("category"); cat != "" {
		kept := list[:0:0]
		for _, p := range list {
			if p.Category == cat {
				kept = append(kept, p)
			}
		}
		list = kept
	}
	c.JSON(http.StatusOK, promotionViews(list, time.Now()))
}

func (h *ContentHandler) activePromotions(c *gin.Context) {
	list, err := h.svc.ActivePromotions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not load promotions"})
		return
	}
	c.JSON(http.StatusOK, promotionViews(list, time.Now()))
}

func (h *ContentHandler) promotionCategories(c *gin.Context) {
	cats, err := h.svc.PromotionCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not load promotions"})
		return
	}
	if cats == nil {
		cats = []string{}
	}
	c.JSON(http.StatusOK, cats)
}

func (h *ContentHandler) whatsAppLink(c *gin.Context) {
	p, err := h.svc.Promotion(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not load promotions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": content.WhatsAppLink(h.phone, p.ProductName)})
}

func (h *ContentHandler) assetURL(c *gin.Context) {
	if h.signer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "asset storage not configured"})
		return
	}
	url, err := h.signer.AssetURL(c.Request.Context(), c.Param("id"), assetURLTTL)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not resolve asset"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// --- admin: asset upload ---

func (h *ContentHandler) uploadAsset(c *gin.Context) {
	if h.assets == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "asset storage not configured"})
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()
	assetID, err := h.assets.UploadAsset(c.Request.Context(), f, fh.Filename, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	metrics.AssetUploads.Inc()
	c.JSON(http.StatusCreated, gin.H{"assetId": assetID})
}

// --- admin: list views ---

// adminList refreshes the reconciler's cached list and returns the filtered
// projection for the panel's search box and category selector.
func (h *ContentHandler) adminList(rec *content.Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := rec.Refresh(c.Request.Context()); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not load list"})
			return
		}
		list := content.FilterDocuments(rec.Current(), c.Query("search"), c.Query("category"))
		c.JSON(http.StatusOK, list)
	}
}

// --- admin: form submissions ---

var promotionFields = []string{"productName", "description", "originalPrice", "currentPrice", "category", "validUntil"}
var newsFields = []string{"title", "excerpt", "content", "author", "category"}

func (h *ContentHandler) submitPromotion(c *gin.Context, existing *content.Promotion) {
	ctrl := content.NewPromotionController(h.store, h.assets, existing, nil)
	for _, name := range promotionFields {
		if v, ok := c.GetPostForm(name); ok {
			ctrl.SetField(name, v)
		}
	}
	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image"})
			return
		}
		defer f.Close()
		ctrl.StageAsset(&content.StagedAsset{
			Reader:      f,
			Filename:    fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}
	if err := ctrl.Submit(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not save promotion"})
		return
	}
	if err := h.promoList.OnSaveSuccess(c.Request.Context()); err == nil {
		metrics.DocumentsSaved.WithLabelValues(string(content.KindPromotion)).Inc()
	}
	status := http.StatusCreated
	if existing != nil {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"status": "saved"})
}

func (h *ContentHandler) createPromotion(c *gin.Context) {
	h.submitPromotion(c, nil)
}

func (h *ContentHandler) updatePromotion(c *gin.Context) {
	p, err := h.svc.Promotion(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.submitPromotion(c, p)
}

func (h *ContentHandler) submitNews(c *gin.Context, existing *content.News) {
	ctrl := content.NewNewsController(h.store, h.assets, existing, nil)
	for _, name := range newsFields {
		if v, ok := c.GetPostForm(name); ok {
			ctrl.SetField(name, v)
		}
	}
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fh := range form.File["images"] {
			f, err := fh.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image"})
				return
			}
			defer f.Close()
			ctrl.StageAsset(&content.StagedAsset{
				Reader:      f,
				Filename:    fh.Filename,
				Size:        fh.Size,
				ContentType: fh.Header.Get("Content-Type"),
			})
		}
	}
	if err := ctrl.Submit(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not save news"})
		return
	}
	if err := h.newsList.OnSaveSuccess(c.Request.Context()); err == nil {
		metrics.DocumentsSaved.WithLabelValues(string(content.KindNews)).Inc()
	}
	status := http.StatusCreated
	if existing != nil {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"status": "saved"})
}

func (h *ContentHandler) createNews(c *gin.Context) {
	h.submitNews(c, nil)
}

func (h *ContentHandler) updateNews(c *gin.Context) {
	list, err := h.svc.News(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not load news"})
		return
	}
	id := c.Param("id")
	var existing *content.News
	for _, n := range list {
		if n.ID == id {
			existing = n
			break
		}
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.submitNews(c, existing)
}

// --- admin: two-step delete ---

func (h *ContentHandler) requestDelete(rec *content.Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec.RequestDelete(c.Param("id"))
		c.JSON(http.StatusAccepted, gin.H{"status": "pending confirmation"})
	}
}

func (h *ContentHandler) confirmDelete(rec *content.Reconciler, kind content.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := rec.ConfirmDelete(c.Request.Context(), c.Param("id"))
		switch {
		case err == nil:
			metrics.DocumentsDeleted.WithLabelValues(string(kind)).Inc()
			c.Status(http.StatusNoContent)
		case errors.Is(err, content.ErrDeleteNotPending):
			c.JSON(http.StatusConflict, gin.H{"error": "delete was not requested"})
		case errors.Is(err, content.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not delete, try again"})
		}
	}
}

func (h *ContentHandler) cancelDelete(rec *content.Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec.CancelDelete(c.Param("id"))
		c.Status(http.StatusNoContent)
	}
}
