package content

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateSlug(t *testing.T) {
	require.Equal(t, "adubo-organico-50kg", GenerateSlug("Adubo Orgânico 50kg!!"))
	require.Equal(t, "racao-premium", GenerateSlug("Ração   Premium"))
	require.Equal(t, "ja-com-hifen", GenerateSlug("Já -- com hífen"))
	require.Equal(t, "", GenerateSlug(""))
}

func TestGenerateSlugIdempotent(t *testing.T) {
	inputs := []string{
		"Adubo Orgânico 50kg!!",
		"Sementes de Milho Híbrido",
		"promoção de férias 2025",
		"a  b\tc",
		"ÀÉÎÕÜ ç",
	}
	for _, in := range inputs {
		once := GenerateSlug(in)
		require.Equal(t, once, GenerateSlug(once), "input %q", in)
	}
}
