package managers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/chrissnell/wxcore/internal/history"
	"github.com/chrissnell/wxcore/internal/metrics"
	"github.com/chrissnell/wxcore/internal/types"
	"github.com/chrissnell/wxcore/pkg/config"
)

// Eviction reasons used as metric labels
const (
	EvictCapacity = "capacity"
	EvictAge      = "age"
)

// HistoryManager receives readings from the stations and keeps them in a
// bounded History, trimming by age on a timer when max_age is set
type HistoryManager struct {
	History            *history.History
	ReadingDistributor chan types.Reading

	maxAge        time.Duration
	evictInterval time.Duration
	clock         clockwork.Clock
	metrics       *metrics.Metrics
	logger        *zap.SugaredLogger
}

// NewHistoryManager creates a HistoryManager and starts its reading distributor
func NewHistoryManager(ctx context.Context, wg *sync.WaitGroup, hc config.HistoryData, clock clockwork.Clock, m *metrics.Metrics, logger *zap.SugaredLogger) (*HistoryManager, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	maxAge, err := hc.MaxAgeDuration()
	if err != nil {
		return nil, fmt.Errorf("invalid history max_age: %w", err)
	}
	evictInterval, err := hc.EvictIntervalDuration()
	if err != nil {
		return nil, fmt.Errorf("invalid history evict_interval: %w", err)
	}

	h, err := history.New(hc.Capacity, history.WithClock(clock))
	if err != nil {
		return nil, err
	}

	hm := &HistoryManager{
		History:            h,
		ReadingDistributor: make(chan types.Reading, 20),
		maxAge:             maxAge,
		evictInterval:      evictInterval,
		clock:              clock,
		metrics:            m,
		logger:             logger.Named("history"),
	}

	wg.Add(1)
	go hm.startReadingDistributor(ctx, wg)

	return hm, nil
}

// GetReadingDistributor returns the reading distributor channel
func (hm *HistoryManager) GetReadingDistributor() chan<- types.Reading {
	return hm.ReadingDistributor
}

// startReadingDistributor appends incoming readings to the history and runs
// age eviction until ctx is cancelled
func (hm *HistoryManager) startReadingDistributor(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	var evictC <-chan time.Time
	if hm.maxAge > 0 {
		ticker := hm.clock.NewTicker(hm.evictInterval)
		defer ticker.Stop()
		evictC = ticker.Chan()
		hm.logger.Infof("evicting readings older than %v every %v", hm.maxAge, hm.evictInterval)
	}

	readingCount := 0
	for {
		select {
		case r := <-hm.ReadingDistributor:
			readingCount++
			hm.store(r)
			if readingCount%100 == 0 {
				hm.logger.Debugf("%d readings received", readingCount)
			}
		case <-evictC:
			hm.evictExpired()
		case <-ctx.Done():
			hm.logger.Infof("cancellation request received, %d readings received this session", readingCount)
			return
		}
	}
}

func (hm *HistoryManager) store(r types.Reading) {
	dropped := hm.History.Append(r)
	size := hm.History.Len()

	hm.metrics.Evicted(EvictCapacity, dropped, size)
	hm.metrics.ReadingStored(size)
}

func (hm *HistoryManager) evictExpired() {
	n := hm.History.EvictOlderThanAge(hm.maxAge)
	hm.metrics.Evicted(EvictAge, n, hm.History.Len())
	if n > 0 {
		hm.logger.Debugf("evicted %d readings older than %v", n, hm.maxAge)
	}
}
