package health

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Service reports the liveness of one service.
type Service struct {
	Name string
}

// NewService constructs a health service for the named binary.
func NewService(name string) *Service {
	return &Service{Name: name}
}

// Status returns the payload served on /health.
func (s *Service) Status() map[string]string {
	return map[string]string{"status": "ok"}
}

// ServiceStatus returns the payload served on /api/health.
func (s *Service) ServiceStatus() map[string]string {
	return map[string]string{"status": "ok", "service": s.Name}
}

// Target is a service base URL to probe.
type Target struct {
	Name    string
	BaseURL string
}

// Result is the outcome of probing one Target.
type Result struct {
	Name    string
	URL     string
	Healthy bool
	Status  int
	Err     error
	Latency time.Duration
}

func (r Result) String() string {
	if r.Healthy {
		return fmt.Sprintf("%s: UP (%s, %dms)", r.Name, r.URL, r.Latency.Milliseconds())
	}
	reason := fmt.Sprintf("status %d", r.Status)
	if r.Err != nil {
		reason = r.Err.Error()
	}
	return fmt.Sprintf("%s: DOWN (%s, %s)", r.Name, r.URL, reason)
}

// CheckAll probes GET {BaseURL}/health on every target concurrently and
// returns the results sorted by name.
func CheckAll(ctx context.Context, client *http.Client, targets []Target) []Result {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	results := make([]Result, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		g.Go(func() error {
			results[i] = check(gctx, client, target)
			return nil
		})
	}
	_ = g.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results
}

// AllHealthy reports whether every result is healthy.
func AllHealthy(results []Result) bool {
	for _, r := range results {
		if !r.Healthy {
			return false
		}
	}
	return true
}

func check(ctx context.Context, client *http.Client, target Target) Result {
	url := strings.TrimRight(target.BaseURL, "/") + "/health"
	res := Result{Name: target.Name, URL: url}
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		res.Err = err
		return res
	}
	resp, err := client.Do(req)
	res.Latency = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close()
	res.Status = resp.StatusCode
	res.Healthy = resp.StatusCode == http.StatusOK
	return res
}
