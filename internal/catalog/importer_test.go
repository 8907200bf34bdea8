package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	items []Item
	err   error
}

func (w *recordingWriter) ReplaceAll(_ context.Context, items []Item) error {
	if w.err != nil {
		return w.err
	}
	w.items = items
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const feedBody = `{
	"Часы": [{"name": "Apple Watch S9", "price": 39990}],
	"Наушники": [{"name": "AirPods Pro", "price": "24990.50", "brand": "Apple", "model": "Pro"}]
}`

func TestParseFeed(t *testing.T) {
	items, err := ParseFeed([]byte(feedBody))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Наушники", items[0].Category)
	assert.Equal(t, "Apple", items[0].Brand)
	assert.Equal(t, "Pro", items[0].Model)
	assert.Equal(t, "24990.5", items[0].Price.String())

	assert.Equal(t, "Часы", items[1].Category)
	assert.Equal(t, "Apple", items[1].Brand)
	assert.Equal(t, "39990", items[1].Price.String())
}

func TestParseFeed_InvalidJSON(t *testing.T) {
	_, err := ParseFeed([]byte(`[1,2`))
	assert.Error(t, err)
}

func TestImporter_Import(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(feedBody))
	}))
	t.Cleanup(server.Close)

	writer := &recordingWriter{}
	importer := NewImporter(resty.New(), writer, testLogger())

	count, err := importer.Import(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, writer.items, 2)
}

func TestImporter_ImportErrors(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		writeEr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{}`},
		{name: "broken body", status: http.StatusOK, body: `not json`},
		{name: "writer failure", status: http.StatusOK, body: feedBody, writeEr: errors.New("db down")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(server.Close)

			importer := NewImporter(resty.New(), &recordingWriter{err: tc.writeEr}, testLogger())

			_, err := importer.Import(context.Background(), server.URL)
			assert.Error(t, err)
		})
	}
}
