package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// Writer persists a full set of catalog items.
type Writer interface {
	ReplaceAll(ctx context.Context, items []Item) error
}

type feedItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Brand string          `json:"brand"`
	Model string          `json:"model"`
}

// Importer loads the remote price feed into the catalog store.
type Importer struct {
	client *resty.Client
	writer Writer
	log    *slog.Logger
}

// NewImporter constructs an Importer.
func NewImporter(client *resty.Client, writer Writer, log *slog.Logger) *Importer {
	if client == nil {
		client = resty.New()
	}
	if log == nil {
		log = slog.Default()
	}

	return &Importer{client: client, writer: writer, log: log}
}

// Import fetches the feed at url and replaces the stored catalog with it.
func (i *Importer) Import(ctx context.Context, url string) (int, error) {
	resp, err := i.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return 0, fmt.Errorf("resty.Client.Get: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("price feed responded with status %d", resp.StatusCode())
	}

	items, err := ParseFeed(resp.Body())
	if err != nil {
		return 0, err
	}

	if err := i.writer.ReplaceAll(ctx, items); err != nil {
		return 0, fmt.Errorf("store products: %w", err)
	}

	i.log.Info("price feed imported", slog.String("url", url), slog.Int("items", len(items)))
	return len(items), nil
}

// ParseFeed decodes a `{"category": [{"name", "price"}]}` document into items.
// Categories are sorted by name, items keep feed order.
func ParseFeed(body []byte) ([]Item, error) {
	var feed map[string][]feedItem
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("feed unmarshal json: %w", err)
	}

	categories := make([]string, 0, len(feed))
	for category := range feed {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var items []Item
	for _, category := range categories {
		for _, entry := range feed[category] {
			name := strings.TrimSpace(entry.Name)
			if name == "" {
				continue
			}

			brand := strings.TrimSpace(entry.Brand)
			if brand == "" {
				brand = strings.Fields(name)[0]
			}

			items = append(items, Item{
				Category: category,
				Brand:    brand,
				Model:    strings.TrimSpace(entry.Model),
				Name:     name,
				Price:    entry.Price,
			})
		}
	}

	return items, nil
}
