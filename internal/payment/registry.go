package payment

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/iliyamo/restaurant-pos/internal/config"
)

// Registry maps method identifiers to providers.
type Registry map[string]Provider

// NewRegistry builds one provider per method from cfg.
func NewRegistry(cfg config.PaymentConfig, client *http.Client) Registry {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	opts := Options{
		Production:    cfg.Production,
		PublicBaseURL: cfg.PublicBaseURL,
		Currency:      cfg.Currency,
		HTTP:          client,
	}
	return NewRegistryOf(
		NewCash(cfg.CashEnabled, opts),
		NewOrangeMoney(cfg.Orange, opts),
		NewMTNMoMo(cfg.MTN, opts),
		NewMoovMoney(cfg.Moov, opts),
		NewWave(cfg.Wave, opts),
	)
}

// NewRegistryOf indexes the given providers by method.
func NewRegistryOf(providers ...Provider) Registry {
	r := make(Registry, len(providers))
	for _, p := range providers {
		r[p.Method()] = p
	}
	return r
}

// Lookup returns the provider for method.
func Lookup(r Registry, method string) (Provider, error) {
	p, ok := r[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}
	return p, nil
}

// methodOrder fixes the listing order shown to customers.
var methodOrder = map[string]int{
	config.MethodCash:        0,
	config.MethodOrangeMoney: 1,
	config.MethodMTNMoMo:     2,
	config.MethodMoovMoney:   3,
	config.MethodWave:        4,
}

func (r Registry) sorted() []Provider {
	out := make([]Provider, 0, len(r))
	for _, p := range r {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		oi, iok := methodOrder[out[i].Method()]
		oj, jok := methodOrder[out[j].Method()]
		if iok != jok {
			return iok
		}
		if oi != oj {
			return oi < oj
		}
		return out[i].Method() < out[j].Method()
	})
	return out
}
