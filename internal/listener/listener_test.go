package listener

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"loopwise-go/internal/models"
)

type fakeSettler struct {
	mu        sync.Mutex
	due       int
	completed int
	err       error
	calls     int
}

func (f *fakeSettler) SettleDuePayments(context.Context) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.due
}

func (f *fakeSettler) ReconcilePendingTransfers(context.Context) (models.SettlementReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.SettlementReport{TransfersCompleted: f.completed}, f.err
}

func (f *fakeSettler) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestNewSettlementListener(t *testing.T) {
	if _, err := NewSettlementListener(SettlementListenerConfig{}); err == nil {
		t.Fatal("expected error without a settler")
	}

	l, err := NewSettlementListener(SettlementListenerConfig{Settler: &fakeSettler{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.pollingInterval != DefaultPollingInterval {
		t.Errorf("expected default interval, got %s", l.pollingInterval)
	}
}

func TestRunOnce(t *testing.T) {
	tests := []struct {
		name    string
		settler *fakeSettler
		want    models.SettlementReport
	}{
		{"nothing due", &fakeSettler{}, models.SettlementReport{}},
		{"payments and transfers", &fakeSettler{due: 2, completed: 1}, models.SettlementReport{DuePaymentsSettled: 2, TransfersCompleted: 1}},
		{"reconcile error still reports payments", &fakeSettler{due: 1, err: errors.New("journal down")}, models.SettlementReport{DuePaymentsSettled: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewSettlementListener(SettlementListenerConfig{Settler: tt.settler})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := l.RunOnce(context.Background())
			if got != tt.want {
				t.Errorf("RunOnce = %+v, want %+v", got, tt.want)
			}
			last, at := l.LastReport()
			if last != tt.want || at.IsZero() {
				t.Errorf("LastReport = %+v at %v", last, at)
			}
		})
	}
}

func TestStartStop(t *testing.T) {
	settler := &fakeSettler{}
	l, err := NewSettlementListener(SettlementListenerConfig{Settler: settler, PollingInterval: 5 * time.Millisecond})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := l.Start(context.Background()); err == nil {
		t.Error("expected error on second Start")
	}

	deadline := time.Now().Add(2 * time.Second)
	for settler.callCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if settler.callCount() < 3 {
		t.Fatalf("expected at least 3 passes, got %d", settler.callCount())
	}

	l.Stop()
	l.Stop()
	calls := settler.callCount()
	time.Sleep(20 * time.Millisecond)
	if settler.callCount() != calls {
		t.Error("listener kept polling after Stop")
	}
}

func TestStopWithoutStart(t *testing.T) {
	l, err := NewSettlementListener(SettlementListenerConfig{Settler: &fakeSettler{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.Stop()
}
