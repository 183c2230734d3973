package bootstrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
	"net/http"
	"strings"
	"time"
)

const retries = 30
const waitTime = 5 * time.Second

type Bootstrapper struct {
	esClient   *elasticsearch.Client
	logger     *zap.Logger
	maxRetries int
	delay      time.Duration
}

func NewBootstrapper(esClient *elasticsearch.Client, logger *zap.Logger) *Bootstrapper {
	return &Bootstrapper{
		esClient:   esClient,
		logger:     logger,
		maxRetries: retries,
		delay:      waitTime,
	}
}

// WithRetry overrides how long BootstrapElasticsearch waits for the cluster.
func (bs *Bootstrapper) WithRetry(maxRetries int, delay time.Duration) *Bootstrapper {
	bs.maxRetries = maxRetries
	bs.delay = delay
	return bs
}

// BootstrapElasticsearch waits for the cluster and creates the span index
// when it does not exist yet.
func (bs *Bootstrapper) BootstrapElasticsearch(ctx context.Context, spanIndexName string) error {
	if err := bs.waitForElasticsearch(ctx); err != nil {
		return fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}

	if err := bs.createIndex(ctx, spanIndexName, spanIndex); err != nil {
		return fmt.Errorf("error creating span index: %w", err)
	}

	return nil
}

func (bs *Bootstrapper) waitForElasticsearch(ctx context.Context) error {
	for i := 0; i < bs.maxRetries; i++ {
		res, err := bs.esClient.Info(bs.esClient.Info.WithContext(ctx))
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				bs.logger.Info("Elasticsearch is available")
				return nil
			}
		}
		bs.logger.Warn(
			"Elasticsearch not available, retrying...",
			zap.Int("attempt", i+1),
			zap.Int("max_retries", bs.maxRetries),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(bs.delay):
		}
	}

	return fmt.Errorf("Elasticsearch is not available after %d attempts", bs.maxRetries)
}

func (bs *Bootstrapper) createIndex(ctx context.Context, indexName string, index map[string]interface{}) error {
	exists, err := bs.esClient.Indices.Exists(
		[]string{indexName},
		bs.esClient.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("error checking index %s: %w", indexName, err)
	}
	exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		bs.logger.Info("Index already exists", zap.String("index_name", indexName))
		return nil
	}

	body, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("error marshaling index input during bootstrap: %w", err)
	}

	res, err := bs.esClient.Indices.Create(
		indexName,
		bs.esClient.Indices.Create.WithContext(ctx),
		bs.esClient.Indices.Create.WithBody(strings.NewReader(string(body))),
	)
	if err != nil {
		return fmt.Errorf("error creating index during bootstrap %s: %w", indexName, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error response for index %s: %s", indexName, res.String())
	}

	bs.logger.Info("Successfully created index", zap.String("index_name", indexName))
	return nil
}
