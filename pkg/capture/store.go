package capture

import (
	"errors"
	"fmt"
	"github.com/dgraph-io/ristretto"
	"github.com/rs/xid"
	"go.uber.org/zap"
	"sync"
	"time"
)

var (
	ErrCaptureNotFound = errors.New("capture not found")
	ErrSetFailed       = errors.New("failed to set capture in cache")
)

// Store keeps recent captures. It is bounded: once capacity is reached older
// or less used captures are evicted.
type Store interface {
	// Put assigns an id to c and stores it.
	Put(c *Capture) (string, error)
	Get(id string) (*Capture, error)
	// List returns summaries of the captures still held, oldest first.
	List() []Summary
}

type StoreImpl struct {
	cache    *ristretto.Cache
	mu       sync.Mutex
	order    []Summary
	capacity int
	logger   *zap.Logger
}

func NewStoreImpl(capacity int64, logger *zap.Logger) (*StoreImpl, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("capture capacity must be positive, got %d", capacity)
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: capacity * 10,
		MaxCost:     capacity,
		BufferItems: 64,
		// Cost is a capture count, not bytes.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create capture cache: %w", err)
	}
	return &StoreImpl{
		cache:    cache,
		capacity: int(capacity),
		logger:   logger,
	}, nil
}

func (s *StoreImpl) Put(c *Capture) (string, error) {
	if c.ID == "" {
		c.ID = xid.New().String()
	}
	if c.ReceivedAt.IsZero() {
		c.ReceivedAt = time.Now().UTC()
	}
	if !s.cache.Set(c.ID, c, 1) {
		return "", ErrSetFailed
	}
	s.cache.Wait()

	s.mu.Lock()
	s.order = append(s.order, c.Summary())
	if len(s.order) > 2*s.capacity {
		s.order = append([]Summary(nil), s.order[len(s.order)-s.capacity:]...)
	}
	s.mu.Unlock()

	s.logger.Debug("Stored capture",
		zap.String("id", c.ID),
		zap.String("signal", string(c.Signal)),
		zap.Int("items", c.Items()),
	)
	return c.ID, nil
}

func (s *StoreImpl) Get(id string) (*Capture, error) {
	value, found := s.cache.Get(id)
	if !found {
		return nil, fmt.Errorf("%s: %w", id, ErrCaptureNotFound)
	}
	c, ok := value.(*Capture)
	if !ok {
		return nil, fmt.Errorf("value not of expected type %T returned from cache", value)
	}
	return c, nil
}

func (s *StoreImpl) List() []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	summaries := make([]Summary, 0, len(s.order))
	for _, summary := range s.order {
		if _, found := s.cache.Get(summary.ID); found {
			summaries = append(summaries, summary)
		}
	}
	return summaries
}

func (s *StoreImpl) Close() {
	s.cache.Close()
}
