package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Variant selects a Sina quote feed layout.
type Variant string

const (
	// VariantGold is the Shanghai Gold Exchange feed (gds_AU9999).
	VariantGold Variant = "gold"
	// VariantForex is the spot FX feed (fx_sjpycny).
	VariantForex Variant = "forex"
)

const (
	defaultSinaBaseURL = "https://hq.sinajs.cn"
	maxBodyBytes       = 64 << 10
	userAgent          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// SinaOptions configures a SinaSource.
type SinaOptions struct {
	Variant Variant
	Symbol  string
	BaseURL string       // empty for the public endpoint
	Layout  *FieldLayout // overrides the variant's field positions
	Timeout time.Duration
	Proxy   string
}

// SinaSource implements QuoteSource against hq.sinajs.cn.
type SinaSource struct {
	BaseURL string
	List    string
	Symbol  string
	Referer string
	Layout  FieldLayout
	Client  *http.Client

	now func() time.Time
}

// Preset returns the list code, referer and field layout for a variant.
func Preset(v Variant, symbol string) (list, referer string, layout FieldLayout, err error) {
	switch v {
	case VariantGold:
		sym := strings.ToUpper(symbol)
		list = "gds_" + sym
		referer = fmt.Sprintf("https://finance.sina.com.cn/futures/quotes/%s.shtml", sym)
		layout = FieldLayout{Marker: list, Current: 0, High: 4, Low: 5, Open: 8}
	case VariantForex:
		sym := strings.ToLower(symbol)
		list = "fx_s" + sym
		referer = fmt.Sprintf("https://finance.sina.com.cn/money/forex/hq/%s.shtml", strings.ToUpper(sym))
		layout = FieldLayout{Marker: list, Current: 8, High: 6, Low: 7, Open: 5}
	default:
		err = fmt.Errorf("unknown feed variant %q", v)
	}
	return list, referer, layout, err
}

// NewSinaSource creates a Sina feed client with optional proxy support.
func NewSinaSource(opts SinaOptions) (*SinaSource, error) {
	list, referer, layout, err := Preset(opts.Variant, opts.Symbol)
	if err != nil {
		return nil, err
	}
	if opts.Layout != nil {
		layout = *opts.Layout
		if layout.Marker == "" {
			layout.Marker = list
		}
	}
	base := opts.BaseURL
	if base == "" {
		base = defaultSinaBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	transport := &http.Transport{}
	if opts.Proxy != "" {
		if u, err := url.Parse(opts.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &SinaSource{
		BaseURL: strings.TrimRight(base, "/"),
		List:    list,
		Symbol:  opts.Symbol,
		Referer: referer,
		Layout:  layout,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		now: time.Now,
	}, nil
}

func (s *SinaSource) Name() string { return "sina:" + s.List }

// Fetch performs one GET. The rn parameter defeats intermediate caches.
func (s *SinaSource) Fetch(ctx context.Context) (RawQuote, error) {
	now := s.now()
	endpoint := fmt.Sprintf("%s/rn=%s&list=%s", s.BaseURL, strconv.FormatInt(now.UnixMilli(), 10), url.QueryEscape(s.List))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return RawQuote{}, &FetchError{Source: s.Name(), Err: err}
	}
	req.Header.Set("Referer", s.Referer)
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return RawQuote{}, &FetchError{Source: s.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return RawQuote{}, &FetchError{Source: s.Name(), StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return RawQuote{}, &FetchError{Source: s.Name(), Err: fmt.Errorf("read body: %w", err)}
	}

	return RawQuote{
		Symbol:    s.Symbol,
		Body:      string(body),
		Layout:    s.Layout,
		FetchedAt: now,
	}, nil
}
