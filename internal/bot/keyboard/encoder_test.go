package keyboard_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/storefront-bot/internal/bot/keyboard"
)

var actions = []string{
	"order_search_page",
	"markup_search_page",
	"select_product_for_order",
	"select_product_for_markup",
	"payment",
	"shop",
}

func TestEncodeCallback(t *testing.T) {
	tests := []struct {
		name      string
		action    string
		data      string
		want      string
		wantError bool
	}{
		{name: "with data", action: "order_search_page", data: "2", want: "order_search_page_2"},
		{name: "cyrillic data", action: "payment", data: "Наличные", want: "payment_Наличные"},
		{name: "without data", action: "noop", want: "noop"},
		{name: "exceeds limit", action: "shop", data: strings.Repeat("я", 31), wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := keyboard.EncodeCallback(tt.action, tt.data)
			if tt.wantError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeCallback(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantAction string
		wantData   string
		wantErr    error
	}{
		{name: "page", input: "order_search_page_3", wantAction: "order_search_page", wantData: "3"},
		{name: "markup page", input: "markup_search_page_0", wantAction: "markup_search_page", wantData: "0"},
		{name: "order selection", input: "select_product_for_order_42", wantAction: "select_product_for_order", wantData: "42"},
		{name: "markup selection", input: "select_product_for_markup_7", wantAction: "select_product_for_markup", wantData: "7"},
		{name: "value with separator", input: "shop_Магазин_1", wantAction: "shop", wantData: "Магазин_1"},
		{name: "value with space", input: "shop_Магазин 2", wantAction: "shop", wantData: "Магазин 2"},
		{name: "bare action", input: "payment", wantAction: "payment"},
		{name: "prefix without separator", input: "paymentX", wantErr: keyboard.ErrUnknownAction},
		{name: "unknown", input: "category_Часы_1", wantErr: keyboard.ErrUnknownAction},
		{name: "empty input", input: "", wantErr: keyboard.ErrEmptyCallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, data, err := keyboard.DecodeCallback(tt.input, actions...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantAction, action)
			assert.Equal(t, tt.wantData, data)
		})
	}
}
