package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func samplePromotions() []Document {
	return []Document{
		&Promotion{ID: "1", ProductName: "Adubo Orgânico", Description: "saco 50kg", Category: "Adubo"},
		&Promotion{ID: "2", ProductName: "Ração Premium", Description: "para gado leiteiro", Category: "Ração"},
		&Promotion{ID: "3", ProductName: "Semente de Milho", Description: "híbrido precoce", Category: "Sementes"},
		&Promotion{ID: "4", ProductName: "Adubo Foliar", Description: "aplicação rápida"},
	}
}

func TestFilterDocumentsNoFilters(t *testing.T) {
	list := samplePromotions()
	got := FilterDocuments(list, "", "")
	require.Equal(t, list, got)
}

func TestFilterDocumentsSearch(t *testing.T) {
	list := samplePromotions()

	// case-insensitive, matches product name
	got := FilterDocuments(list, "ADUBO", "")
	require.Len(t, got, 2)
	require.Equal(t, "1", got[0].DocumentID())
	require.Equal(t, "4", got[1].DocumentID())

	// matches description too
	got = FilterDocuments(list, "gado", "")
	require.Len(t, got, 1)
	require.Equal(t, "2", got[0].DocumentID())
}

func TestFilterDocumentsCategory(t *testing.T) {
	list := samplePromotions()
	got := FilterDocuments(list, "", "Adubo")
	require.Len(t, got, 1)
	require.Equal(t, "1", got[0].DocumentID())

	// search and category combine with AND
	got = FilterDocuments(list, "adubo", "Sementes")
	require.Empty(t, got)
}

func TestFilterDocumentsNewsFields(t *testing.T) {
	list := []Document{
		&News{ID: "a", Title: "Colheita recorde", Excerpt: "safra de soja"},
		&News{ID: "b", Title: "Nova sede", Excerpt: "inauguração em maio"},
	}
	got := FilterDocuments(list, "soja", "")
	require.Len(t, got, 1)
	require.Equal(t, "a", got[0].DocumentID())
}

func TestCategoriesFirstSeenOrder(t *testing.T) {
	list := samplePromotions()
	list = append(list, &Promotion{ID: "5", Category: "Adubo"})
	require.Equal(t, []string{"Adubo", "Ração", "Sementes"}, Categories(list))
}

func TestActivePromotionsBoundary(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	list := []*Promotion{
		{ID: "past", ValidUntil: now.Add(-time.Second)},
		{ID: "exact", ValidUntil: now},
		{ID: "future", ValidUntil: now.Add(time.Hour)},
	}
	got := ActivePromotions(list, now)
	require.Len(t, got, 2)
	require.Equal(t, "exact", got[0].ID)
	require.Equal(t, "future", got[1].ID)
}

func TestCalculateDiscount(t *testing.T) {
	require.Equal(t, 25, CalculateDiscount(100, 75))
	require.Equal(t, 0, CalculateDiscount(50, 50))
	require.Equal(t, 0, CalculateDiscount(0, 10))
	require.Equal(t, 33, CalculateDiscount(150, 100))
	require.Equal(t, 100, CalculateDiscount(80, 0))
}

func TestDaysRemaining(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, 1, DaysRemaining(now.Add(time.Hour), now))
	require.Equal(t, 3, DaysRemaining(now.AddDate(0, 0, 3), now))
	require.Equal(t, 0, DaysRemaining(now, now))
	require.LessOrEqual(t, DaysRemaining(now.Add(-48*time.Hour), now), 0)
}

func TestWhatsAppLink(t *testing.T) {
	got := WhatsAppLink("5555999999999", "Adubo Orgânico 50kg")
	require.Equal(t, "https://wa.me/5555999999999?text=Olá! Gostaria de saber mais sobre a promoção: Adubo Orgânico 50kg", got)
}
