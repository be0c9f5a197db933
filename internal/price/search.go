package price

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	platformElasticsearch "pricehive_backend/internal/platform/elasticsearch"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SearchIndex is the full-text price index. It is a read model; the database stays authoritative.
type SearchIndex interface {
	Index(ctx context.Context, docs ...PriceDocument) error
	Search(ctx context.Context, query string, limit int) ([]PriceDocument, error)
}

// PriceDocument is the indexed form of a price record.
type PriceDocument struct {
	ID                uuid.UUID       `json:"id"`
	SellableProductID *uuid.UUID      `json:"sellable_product_id,omitempty"`
	ProductID         *uuid.UUID      `json:"product_id,omitempty"`
	SupermarketID     *uuid.UUID      `json:"supermarket_id,omitempty"`
	ProductName       string          `json:"product_name,omitempty"`
	SupermarketName   string          `json:"supermarket_name,omitempty"`
	BrandName         string          `json:"brand_name,omitempty"`
	Price             decimal.Decimal `json:"price"`
	Quantity          decimal.Decimal `json:"quantity"`
	UserID            uuid.UUID       `json:"user_id"`
	CreatedAt         time.Time       `json:"created_at"`
}

func NewPriceDocument(v PriceResponse) PriceDocument {
	str := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	return PriceDocument{
		ID:                v.ID,
		SellableProductID: v.SellableProductID,
		ProductID:         v.ProductID,
		SupermarketID:     v.SupermarketID,
		ProductName:       str(v.ProductName),
		SupermarketName:   str(v.SupermarketName),
		BrandName:         str(v.BrandName),
		Price:             v.Price,
		Quantity:          v.Quantity,
		UserID:            v.UserID,
		CreatedAt:         v.CreatedAt,
	}
}

// ESIndex stores price documents in Elasticsearch.
type ESIndex struct {
	client  *platformElasticsearch.ESClientWrapper
	refresh string
	logger  *zap.Logger
}

// NewESIndex returns nil when the client is nil so callers can treat search as disabled.
func NewESIndex(client *platformElasticsearch.ESClientWrapper, logger *zap.Logger) SearchIndex {
	if client == nil {
		return nil
	}
	return &ESIndex{client: client, refresh: "false", logger: logger.Named("PriceIndex")}
}

// Index writes docs with one bulk request. Item-level failures are counted and reported as one error.
func (x *ESIndex) Index(ctx context.Context, docs ...PriceDocument) error {
	if len(docs) == 0 {
		return nil
	}

	var body strings.Builder
	for _, d := range docs {
		docJSON, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("marshal price document %s: %w", d.ID, err)
		}
		fmt.Fprintf(&body, `{ "index" : { "_index" : "%s", "_id" : "%s" } }%s`, platformElasticsearch.PricesIndexName, d.ID, "\n")
		body.Write(docJSON)
		body.WriteString("\n")
	}

	res, err := esapi.BulkRequest{Body: strings.NewReader(body.String()), Refresh: x.refresh}.Do(ctx, x.client.Client)
	if err != nil {
		return fmt.Errorf("bulk index prices: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk index prices: status %s", res.Status())
	}

	var bulkResponse struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string                 `json:"_id"`
				Status int                    `json:"status"`
				Error  map[string]interface{} `json:"error,omitempty"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResponse); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if !bulkResponse.Errors {
		return nil
	}

	failed := 0
	for _, item := range bulkResponse.Items {
		if item.Index.Error != nil {
			x.logger.Error("Failed to index price document",
				zap.String("price_id", item.Index.ID),
				zap.Int("status", item.Index.Status),
				zap.Any("error", item.Index.Error),
			)
			failed++
		}
	}
	return fmt.Errorf("%d of %d price documents failed to index", failed, len(docs))
}

// Search matches query against product, supermarket and brand names, newest first.
func (x *ESIndex) Search(ctx context.Context, query string, limit int) ([]PriceDocument, error) {
	q := map[string]interface{}{
		"size": limit,
		"sort": []interface{}{map[string]interface{}{"created_at": map[string]string{"order": "desc"}}},
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"product_name^3", "brand_name^2", "supermarket_name"},
				"fuzziness": "AUTO",
			},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("encode search query: %w", err)
	}

	res, err := esapi.SearchRequest{
		Index: []string{platformElasticsearch.PricesIndexName},
		Body:  &buf,
	}.Do(ctx, x.client.Client)
	if err != nil {
		return nil, fmt.Errorf("search prices: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search prices: status %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source PriceDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	docs := make([]PriceDocument, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		docs = append(docs, h.Source)
	}
	return docs, nil
}
