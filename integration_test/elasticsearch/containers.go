//go:build integration

package elasticsearch

import (
	"context"
	"fmt"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"time"
)

const (
	elasticsearchImage = "docker.elastic.co/elasticsearch/elasticsearch:8.15.0"
	httpPort           = "9200/tcp"
)

// esContainer is a single node cluster with security disabled.
type esContainer struct {
	container testcontainers.Container
	URI       string
}

func startElasticsearch(ctx context.Context, logger *zap.Logger) (*esContainer, error) {
	startCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	c, err := testcontainers.GenericContainer(startCtx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        elasticsearchImage,
			ExposedPorts: []string{httpPort},
			Env: map[string]string{
				"discovery.type":         "single-node",
				"xpack.security.enabled": "false",
				"ES_JAVA_OPTS":           "-Xms512m -Xmx512m",
			},
			WaitingFor: wait.ForHTTP("/_cluster/health").
				WithPort(httpPort).
				WithStartupTimeout(3 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start elasticsearch container: %w", err)
	}
	ec := &esContainer{container: c}

	endpoint, err := c.PortEndpoint(startCtx, httpPort, "http")
	if err != nil {
		ec.terminate(logger)
		return nil, fmt.Errorf("failed to resolve elasticsearch endpoint: %w", err)
	}
	ec.URI = endpoint
	logger.Info("Elasticsearch container started", zap.String("uri", ec.URI))
	return ec, nil
}

func (ec *esContainer) terminate(logger *zap.Logger) {
	if err := ec.container.Terminate(context.Background()); err != nil {
		logger.Error("Failed to terminate elasticsearch container", zap.Error(err))
	}
}
