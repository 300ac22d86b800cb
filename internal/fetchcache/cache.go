// Package fetchcache provides a capacity-bounded, TTL-expiring cache-aside
// layer in front of upstream HTTP GETs. Each Pool is tuned independently to
// the upstream's cache-control guidance.
package fetchcache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"

	"github.com/weathercal/weathercal/internal/observability"
)

// UpstreamError carries a non-200 upstream response so the boundary layer
// can relay the original status and body. Failures are never cached.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
}

// Response is a successfully fetched upstream response.
type Response struct {
	Status int
	Body   []byte
}

// Config tunes one cache pool.
type Config struct {
	Name      string        // pool label for metrics and the circuit breaker
	Capacity  int           // max live entries; LRU eviction on overflow
	TTL       time.Duration // entries are never served past this age
	Timeout   time.Duration // per-request upstream timeout
	UserAgent string
}

// Pool is one URL -> response cache. Concurrent misses for the same key are
// not deduplicated; racing writers fetch equivalent data and the last one
// wins. The lock is only held for map operations, never across a fetch.
type Pool struct {
	cfg     Config
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	clock   clockwork.Clock
	metrics *observability.Metrics

	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // most recently used
	tail    *entry // least recently used
}

type entry struct {
	key        string
	value      Response
	insertedAt time.Time
	prev       *entry
	next       *entry
}

// New creates a Pool. metrics may be nil.
func New(cfg Config, client *http.Client, clock clockwork.Clock, metrics *observability.Metrics) *Pool {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Pool{
		cfg:     cfg,
		client:  client,
		breaker: cb,
		clock:   clock,
		metrics: metrics,
		entries: make(map[string]*entry),
	}
}

// Fetch returns the cached response for url when it is still live, and
// otherwise performs a blocking GET, caching the result on success.
func (p *Pool) Fetch(ctx context.Context, url string) (Response, error) {
	if resp, ok := p.lookup(url); ok {
		p.countLookup("hit")
		return resp, nil
	}
	p.countLookup("miss")

	resp, err := p.get(ctx, url)
	if err != nil {
		if p.metrics != nil {
			p.metrics.UpstreamRequests.WithLabelValues(p.cfg.Name, "error").Inc()
		}
		return Response{}, err
	}
	if p.metrics != nil {
		p.metrics.UpstreamRequests.WithLabelValues(p.cfg.Name, "success").Inc()
	}
	p.store(url, resp)
	return resp, nil
}

func (p *Pool) countLookup(result string) {
	if p.metrics == nil {
		return
	}
	p.metrics.FetchCacheLookups.WithLabelValues(p.cfg.Name, result).Inc()
}

func (p *Pool) lookup(url string) (Response, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[url]
	if !ok {
		return Response{}, false
	}
	if p.clock.Since(e.insertedAt) >= p.cfg.TTL {
		delete(p.entries, e.key)
		p.remove(e)
		return Response{}, false
	}
	p.moveToFront(e)
	return e.value, true
}

func (p *Pool) store(url string, value Response) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.entries[url]; ok {
		e.value = value
		e.insertedAt = p.clock.Now()
		p.moveToFront(e)
		return
	}

	e := &entry{key: url, value: value, insertedAt: p.clock.Now()}
	p.entries[url] = e
	p.addToFront(e)

	if len(p.entries) > p.cfg.Capacity {
		p.evictTail()
	}
}

func (p *Pool) get(ctx context.Context, url string) (Response, error) {
	timeout := p.cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := p.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		if p.cfg.UserAgent != "" {
			req.Header.Set("User-Agent", p.cfg.UserAgent)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
		}
		return Response{Status: resp.StatusCode, Body: body}, nil
	})
	if err != nil {
		return Response{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	return result.(Response), nil
}

func (p *Pool) moveToFront(e *entry) {
	if e == p.head {
		return
	}
	p.remove(e)
	p.addToFront(e)
}

func (p *Pool) addToFront(e *entry) {
	e.next = p.head
	e.prev = nil
	if p.head != nil {
		p.head.prev = e
	}
	p.head = e
	if p.tail == nil {
		p.tail = e
	}
}

func (p *Pool) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		p.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		p.tail = e.prev
	}
}

func (p *Pool) evictTail() {
	if p.tail == nil {
		return
	}
	delete(p.entries, p.tail.key)
	p.remove(p.tail)
}
