package listener

import (
	"context"
	"errors"
	"sync"
	"time"

	"loopwise-go/internal/models"
)

const DefaultPollingInterval = 30 * time.Second

// Settler is the part of the controller the poller drives.
type Settler interface {
	SettleDuePayments(ctx context.Context) int
	ReconcilePendingTransfers(ctx context.Context) (models.SettlementReport, error)
}

// SettlementListenerConfig contains configuration for SettlementListener
type SettlementListenerConfig struct {
	Settler         Settler
	PollingInterval time.Duration
}

// SettlementListener periodically completes due scheduled payments and
// reconciles pending transfers against the rail.
type SettlementListener struct {
	settler         Settler
	pollingInterval time.Duration

	mutex      sync.Mutex
	lastReport models.SettlementReport
	lastRun    time.Time
	runs       int

	started  bool
	stopOnce sync.Once

	// Control channels
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewSettlementListener creates a new settlement listener
func NewSettlementListener(cfg SettlementListenerConfig) (*SettlementListener, error) {
	if cfg.Settler == nil {
		return nil, errors.New("settlement listener requires a settler")
	}
	if cfg.PollingInterval <= 0 {
		cfg.PollingInterval = DefaultPollingInterval
	}
	return &SettlementListener{
		settler:         cfg.Settler,
		pollingInterval: cfg.PollingInterval,
		stopChan:        make(chan struct{}),
		doneChan:        make(chan struct{}),
	}, nil
}

// LastReport returns the outcome of the most recent pass and when it ran.
func (l *SettlementListener) LastReport() (models.SettlementReport, time.Time) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.lastReport, l.lastRun
}

// Runs returns how many passes have completed.
func (l *SettlementListener) Runs() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.runs
}
