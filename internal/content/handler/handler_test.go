package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/cooperval/content-services/internal/content"
	"github.com/cooperval/content-services/internal/content/repository"
	"github.com/cooperval/content-services/internal/content/service"
)

func newTestRouter(t *testing.T) (*gin.Engine, *repository.MemoryStore, *ContentHandler) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := repository.NewMemoryStore()
	svc := service.NewService(store)
	h := New(svc, nil, nil, "5555999999999")
	t.Cleanup(h.Close)
	r := gin.New()
	h.Register(r, nil)
	return r, store, h
}

func doRequest(r *gin.Engine, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCreatePromotionAndPublicList(t *testing.T) {
	r, _, _ := newTestRouter(t)

	body, ct := multipartBody(t, map[string]string{
		"productName":   "Adubo Orgânico 50kg",
		"description":   "saco de 50kg",
		"originalPrice": "100",
		"currentPrice":  "75",
		"category":      "Adubo",
		"validUntil":    time.Now().AddDate(0, 0, 10).Format("2006-01-02"),
	})
	w := doRequest(r, http.MethodPost, "/api/admin/promotions", body, ct)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(r, http.MethodGet, "/api/promotions", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var list []struct {
		ID            string `json:"id"`
		ProductName   string `json:"productName"`
		Slug          struct{ Current string }
		Discount      int  `json:"discount"`
		DaysRemaining int  `json:"daysRemaining"`
		Expired       bool `json:"expired"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "adubo-organico-50kg", list[0].Slug.Current)
	require.Equal(t, 25, list[0].Discount)
	require.InDelta(t, 10, list[0].DaysRemaining, 1)
	require.False(t, list[0].Expired)
}

func TestCreatePromotionBadDate(t *testing.T) {
	r, _, _ := newTestRouter(t)
	body, ct := multipartBody(t, map[string]string{
		"productName": "x",
		"validUntil":  "10/04/2030",
	})
	w := doRequest(r, http.MethodPost, "/api/admin/promotions", body, ct)
	require.Equal(t, http.StatusBadGateway, w.Code)
}

func TestUpdatePromotionRecomputesSlug(t *testing.T) {
	r, store, _ := newTestRouter(t)
	id, err := store.Create(context.Background(), &content.Promotion{
		ProductName: "Nome Antigo",
		Slug:        content.Slug{Current: "nome-antigo"},
		ValidUntil:  time.Now().AddDate(0, 0, 5),
		Category:    "Adubo",
	})
	require.NoError(t, err)

	body, ct := multipartBody(t, map[string]string{"productName": "Nome Novo"})
	w := doRequest(r, http.MethodPatch, "/api/admin/promotions/"+id, body, ct)
	require.Equal(t, http.StatusOK, w.Code)

	list, err := store.FetchPromotions(context.Background())
	require.NoError(t, err)
	require.Equal(t, "nome-novo", list[0].Slug.Current)
	// untouched optional field survives the partial update
	require.Equal(t, "Adubo", list[0].Category)
}

func TestUpdatePromotionUnknownID(t *testing.T) {
	r, _, _ := newTestRouter(t)
	body, ct := multipartBody(t, map[string]string{"productName": "x"})
	w := doRequest(r, http.MethodPatch, "/api/admin/promotions/missing", body, ct)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminListFiltering(t *testing.T) {
	r, store, _ := newTestRouter(t)
	for _, p := range []*content.Promotion{
		{ProductName: "Adubo Orgânico", Category: "Adubo", ValidUntil: time.Now()},
		{ProductName: "Ração Premium", Category: "Ração", ValidUntil: time.Now()},
	} {
		_, err := store.Create(context.Background(), p)
		require.NoError(t, err)
	}

	w := doRequest(r, http.MethodGet, "/api/admin/promotions?search="+url.QueryEscape("adubo"), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	w = doRequest(r, http.MethodGet, "/api/admin/promotions?category="+url.QueryEscape("Ração"), nil, "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "Ração Premium", list[0]["productName"])
}

func TestTwoStepDelete(t *testing.T) {
	r, store, _ := newTestRouter(t)
	id, err := store.Create(context.Background(), &content.Promotion{ProductName: "x", ValidUntil: time.Now()})
	require.NoError(t, err)

	// confirm without request is a conflict
	w := doRequest(r, http.MethodPost, "/api/admin/promotions/"+id+"/confirm", nil, "")
	require.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(r, http.MethodDelete, "/api/admin/promotions/"+id, nil, "")
	require.Equal(t, http.StatusAccepted, w.Code)

	w = doRequest(r, http.MethodPost, "/api/admin/promotions/"+id+"/confirm", nil, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	list, err := store.FetchPromotions(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestCancelPendingDelete(t *testing.T) {
	r, store, _ := newTestRouter(t)
	id, err := store.Create(context.Background(), &content.Promotion{ProductName: "x", ValidUntil: time.Now()})
	require.NoError(t, err)

	w := doRequest(r, http.MethodDelete, "/api/admin/promotions/"+id, nil, "")
	require.Equal(t, http.StatusAccepted, w.Code)

	w = doRequest(r, http.MethodDelete, "/api/admin/promotions/"+id+"/pending", nil, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	// the confirmation window is gone, the document is not
	w = doRequest(r, http.MethodPost, "/api/admin/promotions/"+id+"/confirm", nil, "")
	require.Equal(t, http.StatusConflict, w.Code)
	list, err := store.FetchPromotions(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestConfirmDeleteUnknownID(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := doRequest(r, http.MethodDelete, "/api/admin/news/ghost", nil, "")
	require.Equal(t, http.StatusAccepted, w.Code)
	w = doRequest(r, http.MethodPost, "/api/admin/news/ghost/confirm", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewsLifecycle(t *testing.T) {
	r, store, _ := newTestRouter(t)

	body, ct := multipartBody(t, map[string]string{
		"title":   "Colheita recorde no Vale",
		"excerpt": "safra de soja supera expectativa",
		"content": "texto completo",
		"author":  "Maria",
	})
	w := doRequest(r, http.MethodPost, "/api/admin/news", body, ct)
	require.Equal(t, http.StatusCreated, w.Code)

	list, err := store.FetchNews(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	slug := list[0].Slug.Current
	require.Equal(t, "colheita-recorde-no-vale", slug)

	w = doRequest(r, http.MethodGet, "/api/news/slug/"+slug, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Colheita recorde no Vale")

	w = doRequest(r, http.MethodGet, "/api/news/slug/nao-existe", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecentNewsEndpoint(t *testing.T) {
	r, store, _ := newTestRouter(t)
	base := time.Now().Add(-24 * time.Hour)
	for i := 0; i < 7; i++ {
		_, err := store.Create(context.Background(), &content.News{
			Title:       "n",
			PublishedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	w := doRequest(r, http.MethodGet, "/api/news/recent", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 5)
}

func TestActivePromotionsEndpoint(t *testing.T) {
	r, store, _ := newTestRouter(t)
	now := time.Now()
	for _, p := range []*content.Promotion{
		{ProductName: "vencida", ValidUntil: now.Add(-time.Hour)},
		{ProductName: "vigente", ValidUntil: now.Add(time.Hour)},
	} {
		_, err := store.Create(context.Background(), p)
		require.NoError(t, err)
	}
	w := doRequest(r, http.MethodGet, "/api/promotions/active", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "vigente", list[0]["productName"])
}

func TestWhatsAppLinkEndpoint(t *testing.T) {
	r, store, _ := newTestRouter(t)
	id, err := store.Create(context.Background(), &content.Promotion{
		ProductName: "Adubo Orgânico 50kg",
		ValidUntil:  time.Now(),
	})
	require.NoError(t, err)

	w := doRequest(r, http.MethodGet, "/api/promotions/"+id+"/whatsapp", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "https://wa.me/5555999999999?text=Olá! Gostaria de saber mais sobre a promoção: Adubo Orgânico 50kg", resp.URL)

	w = doRequest(r, http.MethodGet, "/api/promotions/ghost/whatsapp", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssetEndpointsUnconfigured(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/assets/a.png/url", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "a.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	w = doRequest(r, http.MethodPost, "/api/admin/assets", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdminGroupRequiresAuthWhenConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := repository.NewMemoryStore()
	h := New(service.NewService(store), nil, nil, "")
	t.Cleanup(h.Close)

	deny := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	r := gin.New()
	h.Register(r, deny)

	w := doRequest(r, http.MethodGet, "/api/admin/promotions", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// public reads stay open
	w = doRequest(r, http.MethodGet, "/api/promotions", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
}
