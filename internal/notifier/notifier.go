// Package notifier watches a table's orders from the customer side and
// raises short-lived notifications when one of the customer's orders
// moves forward.  It polls the public menu snapshot; there is no push
// channel.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// Fetcher returns the current snapshot of a table.
type Fetcher interface {
	FetchSnapshot(ctx context.Context, tableNumber int) (*model.MenuSnapshot, error)
}

// Customer identifies whose orders to follow.
type Customer struct {
	Name  string
	Phone string
}

// Options tune the poller's timing.
type Options struct {
	InitialDelay     time.Duration // second fetch after the first
	Interval         time.Duration // pause between the end of one fetch and the next
	SweepInterval    time.Duration
	MaxAge           time.Duration
	AutoDismiss      time.Duration
	DismissDelay     time.Duration
	MaxNotifications int
	Now              func() time.Time
}

// DefaultOptions returns the timings used by the customer page.
func DefaultOptions() Options {
	return Options{
		InitialDelay:     time.Second,
		Interval:         2 * time.Second,
		SweepInterval:    10 * time.Second,
		MaxAge:           30 * time.Second,
		AutoDismiss:      5 * time.Second,
		DismissDelay:     300 * time.Millisecond,
		MaxNotifications: 3,
	}
}

// Notification is one status change shown to the customer.
type Notification struct {
	Key          string            `json:"key"`
	OrderID      uint64            `json:"orderId"`
	Status       model.OrderStatus `json:"status"`
	CustomerName string            `json:"customerName,omitempty"`
	Total        decimal.Decimal   `json:"total"`
	Message      string            `json:"message"`
	CreatedAt    time.Time         `json:"createdAt"`
	Dismissing   bool              `json:"dismissing"`
}

// Poller follows one customer's orders at one table.  A Poller is bound
// to its table and customer; when either changes, cancel Run and build a
// new Poller.
type Poller struct {
	fetcher  Fetcher
	table    int
	customer Customer
	opts     Options
	log      *slog.Logger

	mu       sync.Mutex
	seeded   bool
	statuses map[uint64]model.OrderStatus
	notes    []Notification
	timers   map[string]*time.Timer
	onChange func([]Notification)
	closed   bool
}

// New returns a Poller.  Zero option fields fall back to DefaultOptions.
func New(f Fetcher, tableNumber int, c Customer, opts Options, log *slog.Logger) *Poller {
	def := DefaultOptions()
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = def.InitialDelay
	}
	if opts.Interval <= 0 {
		opts.Interval = def.Interval
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = def.SweepInterval
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = def.MaxAge
	}
	if opts.AutoDismiss <= 0 {
		opts.AutoDismiss = def.AutoDismiss
	}
	if opts.DismissDelay <= 0 {
		opts.DismissDelay = def.DismissDelay
	}
	if opts.MaxNotifications <= 0 {
		opts.MaxNotifications = def.MaxNotifications
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Poller{
		fetcher:  f,
		table:    tableNumber,
		customer: c,
		opts:     opts,
		log:      log,
		statuses: map[uint64]model.OrderStatus{},
		timers:   map[string]*time.Timer{},
	}
}

// OnChange registers fn to receive a snapshot of the notifications every
// time the list changes.  fn runs without the poller's lock held.
func (p *Poller) OnChange(fn func([]Notification)) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

// Run polls until ctx is cancelled.  It fetches immediately, again after
// InitialDelay, and then Interval after each fetch completes, so fetches
// never overlap.  A separate ticker sweeps old notifications.  Every
// pending timer is stopped before Run returns.
func (p *Poller) Run(ctx context.Context) error {
	defer p.close()

	sweep := time.NewTicker(p.opts.SweepInterval)
	defer sweep.Stop()

	_ = p.Poll(ctx)
	next := time.NewTimer(p.opts.InitialDelay)
	defer next.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sweep.C:
			p.Sweep()
		case <-next.C:
			_ = p.Poll(ctx)
			next.Reset(p.opts.Interval)
		}
	}
}

// Poll performs one fetch and processes the result.  Fetch errors are
// logged and leave the state untouched.
func (p *Poller) Poll(ctx context.Context) error {
	snap, err := p.fetcher.FetchSnapshot(ctx, p.table)
	if err != nil {
		if ctx.Err() == nil {
			p.log.Warn("snapshot fetch failed", "table", p.table, "err", err)
		}
		return err
	}
	p.Observe(snap.Orders)
	return nil
}

// Observe compares orders against the last seen statuses and returns the
// notifications it raised.  The first call only records statuses.
func (p *Poller) Observe(orders []model.OrderWithItems) []Notification {
	now := p.opts.Now()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	current := make(map[uint64]model.OrderStatus, len(orders))
	var raised []Notification
	for _, o := range orders {
		if !MatchCustomer(o.Order, p.customer) {
			continue
		}
		current[o.ID] = o.Status
		if !p.seeded {
			continue
		}
		prev, ok := p.statuses[o.ID]
		if !ok || prev == o.Status || !notifiable(o.Status) {
			continue
		}
		n := Notification{
			Key:          fmt.Sprintf("%d-%s-%d", o.ID, o.Status, now.UnixMilli()),
			OrderID:      o.ID,
			Status:       o.Status,
			CustomerName: o.CustomerName,
			Total:        o.Total,
			Message:      StatusMessage(o.Status),
			CreatedAt:    now,
		}
		if p.addLocked(n) {
			raised = append(raised, n)
		}
	}
	p.statuses = current
	p.seeded = true
	snapshot, fn := p.snapshotLocked(), p.onChange
	p.mu.Unlock()

	if len(raised) > 0 && fn != nil {
		fn(snapshot)
	}
	return raised
}

func notifiable(s model.OrderStatus) bool {
	return s == model.OrderPreparing || s == model.OrderReady || s == model.OrderCompleted
}

// addLocked appends n unless its key is already present, trims the list
// to MaxNotifications and arms the auto-dismiss timer.
func (p *Poller) addLocked(n Notification) bool {
	for _, existing := range p.notes {
		if existing.Key == n.Key {
			return false
		}
	}
	p.notes = append(p.notes, n)
	for len(p.notes) > p.opts.MaxNotifications {
		p.stopTimerLocked(p.notes[0].Key)
		p.notes = p.notes[1:]
	}
	key := n.Key
	p.timers[key] = time.AfterFunc(p.opts.AutoDismiss, func() { p.Dismiss(key) })
	return true
}

// Dismiss starts removing a notification: it is flagged as dismissing at
// once and dropped after DismissDelay.  Unknown keys are ignored.
func (p *Poller) Dismiss(key string) {
	p.mu.Lock()
	idx := p.indexLocked(key)
	if p.closed || idx < 0 || p.notes[idx].Dismissing {
		p.mu.Unlock()
		return
	}
	p.stopTimerLocked(key)
	p.notes[idx].Dismissing = true
	p.timers[key] = time.AfterFunc(p.opts.DismissDelay, func() { p.remove(key) })
	snapshot, fn := p.snapshotLocked(), p.onChange
	p.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
}

func (p *Poller) remove(key string) {
	p.mu.Lock()
	idx := p.indexLocked(key)
	if idx < 0 {
		p.mu.Unlock()
		return
	}
	delete(p.timers, key)
	p.notes = append(p.notes[:idx], p.notes[idx+1:]...)
	snapshot, fn := p.snapshotLocked(), p.onChange
	p.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
}

// Sweep drops every notification older than MaxAge.
func (p *Poller) Sweep() {
	cutoff := p.opts.Now().Add(-p.opts.MaxAge)

	p.mu.Lock()
	kept := p.notes[:0]
	changed := false
	for _, n := range p.notes {
		if n.CreatedAt.After(cutoff) {
			kept = append(kept, n)
			continue
		}
		p.stopTimerLocked(n.Key)
		changed = true
	}
	p.notes = kept
	snapshot, fn := p.snapshotLocked(), p.onChange
	p.mu.Unlock()

	if changed && fn != nil {
		fn(snapshot)
	}
}

// Notifications returns a copy of the current notifications, oldest first.
func (p *Poller) Notifications() []Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Poller) snapshotLocked() []Notification {
	return append([]Notification(nil), p.notes...)
}

func (p *Poller) indexLocked(key string) int {
	for i, n := range p.notes {
		if n.Key == key {
			return i
		}
	}
	return -1
}

func (p *Poller) stopTimerLocked(key string) {
	if t, ok := p.timers[key]; ok {
		t.Stop()
		delete(p.timers, key)
	}
}

func (p *Poller) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	for key := range p.timers {
		p.stopTimerLocked(key)
	}
}

// MatchCustomer reports whether o belongs to c.  Name and phone together
// must both match, otherwise whichever one is known is used; names
// compare case-insensitively.  A customer with neither matches nothing.
func MatchCustomer(o model.Order, c Customer) bool {
	name := strings.TrimSpace(c.Name)
	phone := strings.TrimSpace(c.Phone)
	orderPhone := ""
	if o.CustomerPhone != nil {
		orderPhone = strings.TrimSpace(*o.CustomerPhone)
	}
	nameOK := strings.EqualFold(strings.TrimSpace(o.CustomerName), name)
	switch {
	case name != "" && phone != "":
		return nameOK && orderPhone == phone
	case name != "":
		return nameOK
	case phone != "":
		return orderPhone == phone
	}
	return false
}

// StatusMessage is the text shown for an order reaching status.
func StatusMessage(status model.OrderStatus) string {
	switch status {
	case model.OrderPending:
		return "Order confirmed! We are getting everything ready."
	case model.OrderPreparing:
		return "Your order has been sent to the counter and is being prepared."
	case model.OrderReady:
		return "Your order is ready! You will be served in a moment."
	case model.OrderCompleted:
		return "Order delivered. Thank you for your visit!"
	}
	return "Your order status has been updated."
}
