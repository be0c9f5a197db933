package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const PricesIndexName = "prices"

func definePricesMapping() (string, error) {
	keyword := map[string]interface{}{"type": "keyword"}
	searchable := map[string]interface{}{
		"type":   "text",
		"fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}},
	}
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"sellable_product_id": keyword,
				"product_id":          keyword,
				"supermarket_id":      keyword,
				"user_id":             keyword,
				"product_name":        searchable,
				"supermarket_name":    searchable,
				"brand_name":          searchable,
				"price":               map[string]interface{}{"type": "scaled_float", "scaling_factor": 100},
				"quantity":            map[string]interface{}{"type": "double"},
				"created_at":          map[string]interface{}{"type": "date"},
			},
		},
	}
	b, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("error marshalling prices mapping to JSON: %w", err)
	}
	return string(b), nil
}

// CreatePricesIndexIfNotExists creates the prices index with its mapping when missing.
func CreatePricesIndexIfNotExists(ctx context.Context, client *ESClientWrapper, logger *zap.Logger) error {
	log := logger.Named("elasticsearch_index_setup")

	res, err := esapi.IndicesExistsRequest{Index: []string{PricesIndexName}}.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error checking if prices index exists: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		log.Info("Prices index already exists", zap.String("index_name", PricesIndexName))
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("error checking if prices index exists: status %s", res.Status())
	}

	mappingJSON, err := definePricesMapping()
	if err != nil {
		return err
	}

	createRes, err := esapi.IndicesCreateRequest{
		Index: PricesIndexName,
		Body:  strings.NewReader(mappingJSON),
	}.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error creating prices index %s: %w", PricesIndexName, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		var errorBody map[string]interface{}
		if err := json.NewDecoder(createRes.Body).Decode(&errorBody); err == nil {
			log.Error("Failed to create prices index", zap.String("status", createRes.Status()), zap.Any("error_details", errorBody))
		}
		return fmt.Errorf("failed to create prices index %s: status %s", PricesIndexName, createRes.Status())
	}

	log.Info("Prices index created", zap.String("index_name", PricesIndexName))
	return nil
}
