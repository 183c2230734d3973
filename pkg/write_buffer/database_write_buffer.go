package write_buffer

import (
	"context"
	"fmt"
	"github.com/Frefreak/otlp-toolkit/pkg/elasticsearch/client"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"sync"
	"time"
)

const DefaultFlushSize = 30
const flushTimeOut = 10 * time.Second

type DatabaseWriteBuffer[ValueType client.Document] interface {
	// WriteToBuffer queues values and starts a background flush once more
	// than the flush size are pending.
	WriteToBuffer(values []ValueType)
	// Flush indexes everything still queued and waits for background flushes.
	Flush(ctx context.Context) error
}

type DatabaseWriteBufferImpl[ValueType client.Document] struct {
	writeQueue  []ValueType
	ac          client.Client
	esIndexName string
	flushSize   int
	indexed     prometheus.Counter
	logger      *zap.Logger
	mu          sync.Mutex
	inFlight    sync.WaitGroup
}

func NewDatabaseWriteBufferImpl[ValueType client.Document](
	ac client.Client,
	esIndexName string,
	flushSize int,
	indexed prometheus.Counter,
	logger *zap.Logger,
) *DatabaseWriteBufferImpl[ValueType] {
	if flushSize <= 0 {
		flushSize = DefaultFlushSize
	}
	return &DatabaseWriteBufferImpl[ValueType]{
		writeQueue:  []ValueType{},
		ac:          ac,
		esIndexName: esIndexName,
		flushSize:   flushSize,
		indexed:     indexed,
		logger:      logger,
	}
}

func (wbc *DatabaseWriteBufferImpl[ValueType]) WriteToBuffer(values []ValueType) {
	wbc.mu.Lock()
	wbc.writeQueue = append(wbc.writeQueue, values...)
	var batch []ValueType
	if len(wbc.writeQueue) > wbc.flushSize {
		batch = wbc.takeQueue()
	}
	wbc.mu.Unlock()

	if batch == nil {
		return
	}
	wbc.inFlight.Add(1)
	go func() {
		defer wbc.inFlight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeOut)
		defer cancel()
		if err := wbc.flushToElasticsearch(ctx, batch); err != nil {
			wbc.logger.Error("Failed to flush to Elasticsearch", zap.Error(err))
		}
	}()
}

func (wbc *DatabaseWriteBufferImpl[ValueType]) Flush(ctx context.Context) error {
	wbc.mu.Lock()
	batch := wbc.takeQueue()
	wbc.mu.Unlock()

	err := wbc.flushToElasticsearch(ctx, batch)
	wbc.inFlight.Wait()
	return err
}

// takeQueue must be called with mu held.
func (wbc *DatabaseWriteBufferImpl[ValueType]) takeQueue() []ValueType {
	batch := wbc.writeQueue
	wbc.writeQueue = []ValueType{}
	return batch
}

func (wbc *DatabaseWriteBufferImpl[ValueType]) flushToElasticsearch(ctx context.Context, batch []ValueType) error {
	if len(batch) == 0 {
		return nil
	}
	docs, err := client.ToBulkDocuments(batch)
	if err != nil {
		return fmt.Errorf("error converting write queue to bulk documents: %w", err)
	}
	if err := wbc.ac.BulkIndex(ctx, wbc.esIndexName, docs); err != nil {
		return fmt.Errorf("error bulk indexing to Elasticsearch: %w", err)
	}
	if wbc.indexed != nil {
		wbc.indexed.Add(float64(len(docs)))
	}
	wbc.logger.Debug("Flushed write buffer", zap.Int("documents", len(docs)), zap.String("index", wbc.esIndexName))
	return nil
}
