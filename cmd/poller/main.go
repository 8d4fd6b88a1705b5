// Command poller follows a customer's orders at one table and prints a
// line whenever one of them changes status.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/logger"
	"github.com/iliyamo/restaurant-pos/internal/notifier"
)

func main() {
	var (
		baseURL  = flag.String("base-url", "http://localhost:5000", "POS API base URL")
		table    = flag.Int("table", 0, "table number")
		name     = flag.String("name", "", "customer name used when ordering")
		phone    = flag.String("phone", "", "customer phone used when ordering")
		interval = flag.Duration("interval", 2*time.Second, "pause between polls")
	)
	flag.Parse()

	if *table <= 0 {
		usage("-table is required")
	}
	if *name == "" && *phone == "" {
		usage("one of -name or -phone is required")
	}

	opts := notifier.DefaultOptions()
	opts.Interval = *interval
	fetcher := &notifier.HTTPFetcher{BaseURL: *baseURL, Client: &http.Client{Timeout: 10 * time.Second}}
	p := notifier.New(fetcher, *table, notifier.Customer{Name: *name, Phone: *phone}, opts, logger.New("pos-poller", "development"))

	var (
		mu   sync.Mutex
		seen = map[string]bool{}
	)
	p.OnChange(func(ns []notifier.Notification) {
		mu.Lock()
		defer mu.Unlock()
		for _, n := range ns {
			if seen[n.Key] {
				continue
			}
			seen[n.Key] = true
			fmt.Printf("%s  order #%d  %-10s %s\n", n.CreatedAt.Format("15:04:05"), n.OrderID, n.Status, n.Message)
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("following table %d, press Ctrl+C to stop\n", *table)
	if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	flag.Usage()
	os.Exit(2)
}
