package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func order(id uint64, name string, status model.OrderStatus) model.OrderWithItems {
	return model.OrderWithItems{Order: model.Order{ID: id, CustomerName: name, Status: status}}
}

func newTestPoller(t *testing.T, c Customer) (*Poller, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	opts := DefaultOptions()
	opts.Now = clk.Now
	opts.AutoDismiss = time.Hour
	p := New(nil, 7, c, opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(p.close)
	return p, clk
}

func TestFirstObservationOnlySeeds(t *testing.T) {
	p, _ := newTestPoller(t, Customer{Name: "Ada"})
	if got := p.Observe([]model.OrderWithItems{order(1, "Ada", model.OrderReady)}); len(got) != 0 {
		t.Fatalf("first poll raised %d notifications", len(got))
	}
}

func TestPendingToPreparingRaisesExactlyOne(t *testing.T) {
	p, clk := newTestPoller(t, Customer{Name: "Ada"})
	p.Observe([]model.OrderWithItems{order(1, "Ada", model.OrderPending)})

	got := p.Observe([]model.OrderWithItems{order(1, "Ada", model.OrderPreparing)})
	if len(got) != 1 || got[0].Status != model.OrderPreparing || got[0].OrderID != 1 {
		t.Fatalf("raised = %+v", got)
	}
	// Polling again without a change must not raise anything.
	clk.Advance(2 * time.Second)
	if again := p.Observe([]model.OrderWithItems{order(1, "Ada", model.OrderPreparing)}); len(again) != 0 {
		t.Fatalf("repeat poll raised %+v", again)
	}
	if n := len(p.Notifications()); n != 1 {
		t.Fatalf("notifications = %d, want 1", n)
	}
}

func TestCancelledAndPendingAreSilent(t *testing.T) {
	p, _ := newTestPoller(t, Customer{Name: "Ada"})
	p.Observe([]model.OrderWithItems{order(1, "Ada", model.OrderPending), order(2, "Ada", model.OrderPreparing)})
	got := p.Observe([]model.OrderWithItems{order(1, "Ada", model.OrderCancelled), order(2, "Ada", model.OrderPending)})
	if len(got) != 0 {
		t.Fatalf("raised = %+v", got)
	}
}

func TestNewOrderAfterSeedIsSilent(t *testing.T) {
	p, _ := newTestPoller(t, Customer{Name: "Ada"})
	p.Observe(nil)
	if got := p.Observe([]model.OrderWithItems{order(5, "Ada", model.OrderReady)}); len(got) != 0 {
		t.Fatalf("order without previous status raised %+v", got)
	}
}

func TestOtherCustomersIgnored(t *testing.T) {
	p, _ := newTestPoller(t, Customer{Name: "Ada"})
	p.Observe([]model.OrderWithItems{order(1, "Bob", model.OrderPending)})
	if got := p.Observe([]model.OrderWithItems{order(1, "Bob", model.OrderReady)}); len(got) != 0 {
		t.Fatalf("raised for another customer: %+v", got)
	}
}

func TestCapKeepsMostRecentThree(t *testing.T) {
	p, clk := newTestPoller(t, Customer{Name: "Ada"})
	var seed []model.OrderWithItems
	for id := uint64(1); id <= 5; id++ {
		seed = append(seed, order(id, "Ada", model.OrderPending))
	}
	p.Observe(seed)
	for id := uint64(1); id <= 5; id++ {
		clk.Advance(time.Millisecond)
		seed[id-1].Status = model.OrderPreparing
		p.Observe(seed)
	}
	notes := p.Notifications()
	if len(notes) != 3 {
		t.Fatalf("notifications = %d, want 3", len(notes))
	}
	if notes[0].OrderID != 3 || notes[2].OrderID != 5 {
		t.Fatalf("kept = %d..%d, want 3..5", notes[0].OrderID, notes[2].OrderID)
	}
}

func TestSweepDropsOldNotifications(t *testing.T) {
	p, clk := newTestPoller(t, Customer{Name: "Ada"})
	p.Observe([]model.OrderWithItems{order(1, "Ada", model.OrderPending)})
	p.Observe([]model.OrderWithItems{order(1, "Ada", model.OrderReady)})

	clk.Advance(29 * time.Second)
	p.Sweep()
	if len(p.Notifications()) != 1 {
		t.Fatal("dropped before 30s")
	}
	clk.Advance(2 * time.Second)
	p.Sweep()
	if len(p.Notifications()) != 0 {
		t.Fatal("kept after 30s")
	}
}

func TestDismissIsTwoPhase(t *testing.T) {
	p, _ := newTestPoller(t, Customer{Name: "Ada"})
	p.opts.DismissDelay = 10 * time.Millisecond
	changes := make(chan []Notification, 8)
	p.OnChange(func(n []Notification) { changes <- n })

	p.Observe([]model.OrderWithItems{order(1, "Ada", model.OrderPending)})
	raised := p.Observe([]model.OrderWithItems{order(1, "Ada", model.OrderPreparing)})
	<-changes

	p.Dismiss(raised[0].Key)
	first := <-changes
	if len(first) != 1 || !first[0].Dismissing {
		t.Fatalf("after dismiss: %+v", first)
	}
	select {
	case final := <-changes:
		if len(final) != 0 {
			t.Fatalf("after delay: %+v", final)
		}
	case <-time.After(time.Second):
		t.Fatal("notification never removed")
	}
}

func TestAutoDismiss(t *testing.T) {
	p, _ := newTestPoller(t, Customer{Name: "Ada"})
	p.opts.AutoDismiss = 10 * time.Millisecond
	p.opts.DismissDelay = time.Millisecond

	p.Observe([]model.OrderWithItems{order(1, "Ada", model.OrderPending)})
	p.Observe([]model.OrderWithItems{order(1, "Ada", model.OrderReady)})

	deadline := time.Now().Add(time.Second)
	for len(p.Notifications()) > 0 {
		if time.Now().After(deadline) {
			t.Fatal("notification not auto-dismissed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMatchCustomer(t *testing.T) {
	phone := "+22990000001"
	o := model.Order{CustomerName: "Ada Lovelace", CustomerPhone: &phone}
	cases := []struct {
		name string
		c    Customer
		want bool
	}{
		{"name and phone", Customer{Name: "ada lovelace", Phone: phone}, true},
		{"name and wrong phone", Customer{Name: "Ada Lovelace", Phone: "+1"}, false},
		{"name only", Customer{Name: "ADA LOVELACE"}, true},
		{"phone only", Customer{Phone: phone}, true},
		{"wrong phone only", Customer{Phone: "+2"}, false},
		{"nobody", Customer{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MatchCustomer(o, tc.c); got != tc.want {
				t.Fatalf("MatchCustomer = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStatusMessage(t *testing.T) {
	if StatusMessage(model.OrderReady) == StatusMessage("unknown") {
		t.Fatal("ready should have its own message")
	}
}

// slowFetcher counts concurrent fetches.
type slowFetcher struct {
	inFlight, maxInFlight, calls atomic.Int32
	delay                        time.Duration
}

func (f *slowFetcher) FetchSnapshot(ctx context.Context, _ int) (*model.MenuSnapshot, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	f.calls.Add(1)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(f.delay):
	}
	return &model.MenuSnapshot{}, nil
}

func TestRunNeverOverlapsFetchesAndStopsOnCancel(t *testing.T) {
	f := &slowFetcher{delay: 15 * time.Millisecond}
	opts := DefaultOptions()
	opts.InitialDelay = time.Millisecond
	opts.Interval = time.Millisecond
	p := New(f, 7, Customer{Name: "Ada"}, opts, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := p.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run = %v", err)
	}
	if f.maxInFlight.Load() != 1 {
		t.Fatalf("max concurrent fetches = %d, want 1", f.maxInFlight.Load())
	}
	if f.calls.Load() < 3 {
		t.Fatalf("calls = %d, want several", f.calls.Load())
	}
	calls := f.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if f.calls.Load() != calls {
		t.Fatal("polling continued after cancel")
	}
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/menu/7" || r.URL.Query().Get("t") == "" {
			t.Errorf("request = %s", r.URL)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"table":  map[string]any{"id": 3, "number": 7},
			"orders": []map[string]any{{"id": 1, "customerName": "Ada", "status": "ready", "total": "25.50"}},
		})
	}))
	defer srv.Close()

	snap, err := (&HTTPFetcher{BaseURL: srv.URL + "/", Client: srv.Client()}).FetchSnapshot(context.Background(), 7)
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}
	if snap.Table.Number != 7 || len(snap.Orders) != 1 || snap.Orders[0].Status != model.OrderReady {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestHTTPFetcherRejectsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	if _, err := (&HTTPFetcher{BaseURL: srv.URL}).FetchSnapshot(context.Background(), 1); err == nil {
		t.Fatal("expected error for 404")
	}
}
