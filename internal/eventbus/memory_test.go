package eventbus

import (
	"testing"

	"loopwise-go/internal/models"
)

func TestPublishFanOut(t *testing.T) {
	bus := New(0)
	a, unsubA := bus.Subscribe()
	b, unsubB := bus.Subscribe()
	defer unsubA()
	defer unsubB()

	bus.Toast("Funds added successfully!", models.ToastSuccess)

	for _, ch := range []<-chan Event{a, b} {
		ev := <-ch
		if ev.Kind != KindToast || ev.Toast == nil {
			t.Fatalf("expected toast event, got %+v", ev)
		}
		if ev.Toast.Message != "Funds added successfully!" {
			t.Errorf("unexpected message %q", ev.Toast.Message)
		}
		if ev.Timestamp.IsZero() {
			t.Error("expected timestamp to be stamped")
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New(0)
	ch, unsub := bus.Subscribe()
	unsub()
	unsub() // second call is a no-op

	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel")
	}
	bus.Navigate(models.ViewAudit) // must not panic on a closed subscriber
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	bus := New(0)
	_, unsub := bus.Subscribe()
	defer unsub()

	for i := 0; i < subscriberBuffer*2; i++ {
		bus.Changed()
	}
}

func TestRecentHistory(t *testing.T) {
	bus := New(3)
	bus.Toast("one", models.ToastInfo)
	bus.Navigate(models.ViewPayments)
	bus.Toast("two", models.ToastInfo)
	bus.Toast("three", models.ToastError)
	bus.Toast("four", models.ToastSuccess)

	all := bus.Recent("", 0)
	if len(all) != 3 {
		t.Fatalf("expected history capped at 3, got %d", len(all))
	}

	toasts := bus.Recent(KindToast, 2)
	if len(toasts) != 2 {
		t.Fatalf("expected 2 toasts, got %d", len(toasts))
	}
	if toasts[0].Toast.Message != "three" || toasts[1].Toast.Message != "four" {
		t.Errorf("expected oldest-first [three four], got [%s %s]",
			toasts[0].Toast.Message, toasts[1].Toast.Message)
	}

	bus.Reset()
	if len(bus.Recent("", 0)) != 0 {
		t.Error("expected empty history after reset")
	}
}
