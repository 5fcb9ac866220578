// Package quote fetches market prices and FX rates from public providers and
// normalizes them into a prices document.
package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/allocation"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const (
	// DefaultQuoteURL is the chart endpoint of Yahoo Finance, the symbol is appended.
	DefaultQuoteURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	// DefaultFXURL serves the latest rates for a base currency, appended to the URL.
	DefaultFXURL = "https://open.er-api.com/v6/latest"
)

// baseline is the FX table used when the provider cannot be reached, in JPY
// per unit.
var baseline = map[string]float64{
	"JPY": 1,
	"USD": 150.4,
	"HKD": 19.4,
	"CNY": 21.1,
}

// ErrNoPrice is returned when the provider answers without a price.
var ErrNoPrice = errors.New("no price")

// Fetcher retrieves quotes and rates. Its exported fields can be changed
// before the first call.
type Fetcher struct {
	BaseURL string
	FXURL   string
	Client  *http.Client
	Limiter *rate.Limiter // nil disables rate limiting
	Log     zerolog.Logger

	memo *cache.Cache
	now  func() time.Time
}

// New returns a Fetcher on the default providers, with a daily disk cache
// and at most 5 requests per second.
func New(log zerolog.Logger) *Fetcher {
	return &Fetcher{
		BaseURL: DefaultQuoteURL,
		FXURL:   DefaultFXURL,
		Client:  NewCachingClient("", log),
		Limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		Log:     log,
	}
}

func (f *Fetcher) cache() *cache.Cache {
	if f.memo == nil {
		f.memo = cache.New(time.Hour, 2*time.Hour)
	}
	return f.memo
}

func (f *Fetcher) timestamp() time.Time {
	if f.now != nil {
		return f.now()
	}
	return time.Now().UTC()
}

func (f *Fetcher) client() *http.Client {
	if f.Client == nil {
		return http.DefaultClient
	}
	return f.Client
}

// get waits for the limiter, then GETs addr as JSON.
func (f *Fetcher) get(ctx context.Context, addr string) (any, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	var jobj any
	if err := jwget(ctx, f.client(), addr, &jobj); err != nil {
		return nil, err
	}
	return jobj, nil
}

// first returns the value at path in jobj. jsonpath may answer a list of one
// element or the element itself, the first element is kept.
func first(path string, jobj any) (any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, err
	}
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return nil, fmt.Errorf("%s: empty result", path)
		}
		jval = jlist[0]
	}
	return jval, nil
}

// Quote returns the latest price of a provider symbol, in its quote currency.
func (f *Fetcher) Quote(ctx context.Context, symbol string) (allocation.Quote, error) {
	key := "quote:" + symbol
	if q, found := f.cache().Get(key); found {
		return q.(allocation.Quote), nil
	}

	addr := strings.TrimSuffix(f.BaseURL, "/") + "/" + url.PathEscape(symbol)
	jobj, err := f.get(ctx, addr)
	if err != nil {
		return allocation.Quote{}, fmt.Errorf("cannot get quote for %q: %w", symbol, err)
	}

	jprice, err := first("$.chart.result[0].meta.regularMarketPrice", jobj)
	if err != nil {
		return allocation.Quote{}, fmt.Errorf("cannot read quote for %q: %w", symbol, ErrNoPrice)
	}
	price, ok := jprice.(float64)
	if !ok {
		return allocation.Quote{}, fmt.Errorf("cannot read quote for %q: %w: %v", symbol, ErrNoPrice, jprice)
	}
	q := allocation.Quote{
		Ticker:    symbol,
		Price:     allocation.V(price),
		FetchedAt: f.timestamp(),
	}
	if jcur, err := first("$.chart.result[0].meta.currency", jobj); err == nil {
		if cur, ok := jcur.(string); ok {
			q.Currency = allocation.NormalizeCurrency(cur)
		}
	}

	f.cache().SetDefault(key, q)
	return q, nil
}

// Rates returns the number of base units per unit of every currency the
// provider knows. When the provider fails, the baseline table is used
// instead (it is empty if base is not part of it).
func (f *Fetcher) Rates(ctx context.Context, base string) map[string]allocation.Value {
	base = allocation.NormalizeCurrency(base)
	key := "fx:" + base
	if r, found := f.cache().Get(key); found {
		return r.(map[string]allocation.Value)
	}

	rates, err := f.fetchRates(ctx, base)
	if err != nil {
		f.Log.Warn().Err(err).Str("base", base).Msg("using baseline fx rates")
		return baselineRates(base)
	}
	f.cache().SetDefault(key, rates)
	return rates
}

func (f *Fetcher) fetchRates(ctx context.Context, base string) (map[string]allocation.Value, error) {
	addr := strings.TrimSuffix(f.FXURL, "/") + "/" + url.PathEscape(base)
	jobj, err := f.get(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("cannot get rates for %s: %w", base, err)
	}
	jrates, err := first("$.rates", jobj)
	if err != nil {
		return nil, fmt.Errorf("cannot read rates for %s: %w", base, err)
	}
	m, ok := jrates.(map[string]any)
	if !ok || len(m) == 0 {
		return nil, fmt.Errorf("cannot read rates for %s: no rates", base)
	}

	// the provider answers units per base unit, the table needs the inverse.
	one := decimal.NewFromInt(1)
	rates := make(map[string]allocation.Value, len(m))
	for cur, jv := range m {
		v, ok := jv.(float64)
		if !ok || v <= 0 {
			continue
		}
		rates[allocation.NormalizeCurrency(cur)] = allocation.V(one.Div(decimal.NewFromFloat(v)).Round(6))
	}
	rates[base] = allocation.V(1)
	return rates, nil
}

// baselineRates converts the baseline table to base.
func baselineRates(base string) map[string]allocation.Value {
	b, ok := baseline[base]
	if !ok {
		return map[string]allocation.Value{}
	}
	rates := make(map[string]allocation.Value, len(baseline))
	for cur, r := range baseline {
		rates[cur] = allocation.V(decimal.NewFromFloat(r).Div(decimal.NewFromFloat(b)).Round(6))
	}
	return rates
}
