package elasticsearch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pricehive_backend/internal/config"

	"github.com/elastic/elastic-transport-go/v8/elastictransport"
	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
)

// ESClientWrapper wraps the elasticsearch.Client so Wire can tell it apart from other clients.
type ESClientWrapper struct {
	*elasticsearch.Client
}

// ZapLogger adapts zap.Logger to elastictransport.Logger.
type ZapLogger struct {
	logger *zap.Logger
}

var _ elastictransport.Logger = (*ZapLogger)(nil)

// LogRoundTrip logs request metrics at debug level.
func (l *ZapLogger) LogRoundTrip(req *http.Request, res *http.Response, err error, start time.Time, dur time.Duration) error {
	var statusCode int
	if res != nil {
		statusCode = res.StatusCode
	}
	l.logger.Debug("Elasticsearch RoundTrip",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status_code", statusCode),
		zap.Duration("duration", dur),
		zap.Error(err),
	)
	return nil
}

func (l *ZapLogger) RequestBodyEnabled() bool { return false }

func (l *ZapLogger) ResponseBodyEnabled() bool { return false }

// NewClient connects to Elasticsearch. Price search is optional: an empty
// ELASTICSEARCH_URL or an unreachable cluster returns a nil client and no error.
// Only an invalid client configuration is reported.
func NewClient(cfg *config.Config, logger *zap.Logger) (*ESClientWrapper, error) {
	if cfg.ElasticsearchURL == "" {
		logger.Info("ELASTICSEARCH_URL not set, price search disabled")
		return nil, nil
	}

	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.ElasticsearchURL},
		Logger:    &ZapLogger{logger: logger.Named("elasticsearch_client")},
		// Retry on 429 TooManyRequests and gateway errors.
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			return time.Duration(i) * 100 * time.Millisecond
		},
		MaxRetries: 5,
	}

	esClient, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		logger.Error("Error creating Elasticsearch client", zap.Error(err))
		return nil, fmt.Errorf("elasticsearch.NewClient: %w", err)
	}

	res, err := esClient.Info()
	if err != nil {
		logger.Warn("Elasticsearch unreachable, price search disabled", zap.String("url", cfg.ElasticsearchURL), zap.Error(err))
		return nil, nil
	}
	defer res.Body.Close()

	if res.IsError() {
		var e map[string]interface{}
		_ = json.NewDecoder(res.Body).Decode(&e)
		logger.Warn("Elasticsearch rejected the connection check, price search disabled",
			zap.String("status", res.Status()),
			zap.Any("error_details", e),
		)
		return nil, nil
	}

	logger.Info("Elasticsearch client initialized", zap.String("url", cfg.ElasticsearchURL), zap.String("es_version", elasticsearch.Version))
	return &ESClientWrapper{Client: esClient}, nil
}
