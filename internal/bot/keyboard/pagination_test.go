package keyboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/storefront-bot/internal/bot/keyboard"
	"github.com/Proton-105/storefront-bot/internal/i18n"
)

type mockTranslator struct {
	translations map[string]string
}

func (m *mockTranslator) T(key string) string {
	if val, ok := m.translations[key]; ok {
		return val
	}
	return key
}

func (m *mockTranslator) Lang() string {
	return "ru"
}

func TestPaginationButtons(t *testing.T) {
	translator := i18n.MustDefault()

	testCases := []struct {
		name      string
		page      int
		total     int
		wantTexts []string
		wantData  []string
	}{
		{name: "first page", page: 0, total: 2, wantTexts: []string{"➡️ Вперед"}, wantData: []string{"1"}},
		{name: "middle page", page: 2, total: 5, wantTexts: []string{"⬅️ Назад", "➡️ Вперед"}, wantData: []string{"1", "3"}},
		{name: "last page", page: 1, total: 2, wantTexts: []string{"⬅️ Назад"}, wantData: []string{"0"}},
		{name: "single page", page: 0, total: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buttons := keyboard.PaginationButtons(translator, "order_search_page", tc.page, tc.total)
			require.Len(t, buttons, len(tc.wantTexts))

			for i := range tc.wantTexts {
				assert.Equal(t, tc.wantTexts[i], buttons[i].Text)
				assert.Equal(t, "order_search_page", buttons[i].Unique)
				assert.Equal(t, tc.wantData[i], buttons[i].Data)
			}
		})
	}
}

func TestPaginationButtons_FallbackTexts(t *testing.T) {
	buttons := keyboard.PaginationButtons(&mockTranslator{}, "markup_search_page", 1, 3)

	require.Len(t, buttons, 2)
	assert.Equal(t, "⬅️ Назад", buttons[0].Text)
	assert.Equal(t, "➡️ Вперед", buttons[1].Text)
}
