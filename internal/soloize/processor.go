package soloize

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/jonboulle/clockwork"

	"github.com/weathercal/weathercal/internal/observability"
)

var (
	// ErrInvalidFeedURL rejects a feed before any network call is made.
	ErrInvalidFeedURL = errors.New("invalid feed url")
	// ErrFeedFetch wraps network and status failures while fetching a feed.
	ErrFeedFetch = errors.New("feed fetch failed")
	// ErrFeedParse wraps calendar parse failures, distinct from fetch errors.
	ErrFeedParse = errors.New("feed parse failed")
)

// ValidateURL rejects feed URLs that could reach internal services:
// non-HTTP schemes, loopback, and private address literals.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFeedURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: only http and https URLs are allowed", ErrInvalidFeedURL)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidFeedURL)
	}
	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("%w: access to localhost is not allowed", ErrInvalidFeedURL)
	}
	if ip := net.ParseIP(host); ip != nil && (ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()) {
		return fmt.Errorf("%w: access to private addresses is not allowed", ErrInvalidFeedURL)
	}
	return nil
}

// Processor runs the fetch-validate-parse-filter-serialize pipeline and
// fronts it with the proactive refresh cache.
type Processor struct {
	cache   *Cache
	client  *http.Client
	clock   clockwork.Clock
	metrics *observability.Metrics
	timeout time.Duration
}

// NewProcessor creates a Processor. metrics may be nil.
func NewProcessor(cache *Cache, client *http.Client, clock clockwork.Clock, timeout time.Duration, metrics *observability.Metrics) *Processor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Processor{
		cache:   cache,
		client:  client,
		clock:   clock,
		metrics: metrics,
		timeout: timeout,
	}
}

// FetchAndProcess runs the full pipeline for a feed URL: validate, fetch,
// parse, drop events that already ended, strip attendees, and serialize.
func (p *Processor) FetchAndProcess(ctx context.Context, feedURL string) (string, error) {
	if err := ValidateURL(feedURL); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFeedFetch, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFeedFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrFeedFetch, resp.StatusCode)
	}

	cal, err := ics.ParseCalendar(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFeedParse, err)
	}

	now := p.clock.Now().UTC()
	out := ics.NewCalendar()
	kept := 0
	for _, event := range cal.Events() {
		if cutoff, ok := eventCutoff(event); ok && cutoff.Before(now) {
			continue
		}
		stripAttendees(event)
		out.AddVEvent(event)
		kept++
	}
	log.Printf("soloize: %s has %d upcoming events after filtering", feedURL, kept)
	return out.Serialize(), nil
}

// FetchAndProcessCached serves from the cache when possible. The first
// request for a URL pays full pipeline latency and enrolls the URL for
// background refresh; later requests are cache-served until the next cycle.
func (p *Processor) FetchAndProcessCached(ctx context.Context, feedURL string) (string, error) {
	if content, ok := p.cache.Get(feedURL); ok {
		p.countLookup("hit")
		return content, nil
	}
	p.countLookup("miss")

	content, err := p.FetchAndProcess(ctx, feedURL)
	if err != nil {
		return "", err
	}
	p.cache.Set(feedURL, content)
	return content, nil
}

// RefreshAll re-runs the pipeline for every tracked URL, overwriting cache
// entries on success. Per-URL failures are logged and skipped; the caller's
// refresh loop must never die on one bad feed.
func (p *Processor) RefreshAll(ctx context.Context) {
	urls := p.cache.TrackedURLs()
	log.Printf("soloize: refreshing %d tracked feeds", len(urls))

	for _, feedURL := range urls {
		content, err := p.FetchAndProcess(ctx, feedURL)
		if err != nil {
			log.Printf("soloize: refresh failed for %s: %v", feedURL, err)
			if p.metrics != nil {
				p.metrics.SoloizeRefreshErrors.Inc()
			}
			continue
		}
		p.cache.Set(feedURL, content)
	}

	if p.metrics != nil {
		p.metrics.SoloizeRefreshCycles.Inc()
		p.metrics.SoloizeLastRefresh.Set(float64(p.clock.Now().Unix()))
	}
}

func (p *Processor) countLookup(result string) {
	if p.metrics == nil {
		return
	}
	p.metrics.SoloizeCacheLookups.WithLabelValues(result).Inc()
}

// eventCutoff returns the timestamp deciding whether an event is past:
// its end when present, otherwise its start. Events with neither are kept.
func eventCutoff(event *ics.VEvent) (time.Time, bool) {
	if end, err := event.GetEndAt(); err == nil {
		return end, true
	}
	if start, err := event.GetStartAt(); err == nil {
		return start, true
	}
	return time.Time{}, false
}

func stripAttendees(event *ics.VEvent) {
	kept := event.Properties[:0]
	for _, prop := range event.Properties {
		if prop.IANAToken == string(ics.ComponentPropertyAttendee) {
			continue
		}
		kept = append(kept, prop)
	}
	event.Properties = kept
}
