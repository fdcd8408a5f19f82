package database

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Pinger is satisfied by every client in this package.
type Pinger interface {
	Ping(ctx context.Context) error
}

type DependencyStatus struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency"`
}

// CheckAll pings every dependency concurrently, each under its own timeout.
// Results are sorted by name.
func CheckAll(ctx context.Context, deps map[string]Pinger, timeout time.Duration) ([]DependencyStatus, bool) {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make([]DependencyStatus, 0, len(deps))
	)

	for name, dep := range deps {
		wg.Add(1)
		go func(name string, dep Pinger) {
			defer wg.Done()

			pingCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			err := dep.Ping(pingCtx)
			status := DependencyStatus{
				Name:    name,
				Healthy: err == nil,
				Latency: time.Since(start).Round(time.Millisecond).String(),
			}
			if err != nil {
				status.Error = err.Error()
			}

			mu.Lock()
			results = append(results, status)
			mu.Unlock()
		}(name, dep)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	healthy := true
	for _, r := range results {
		healthy = healthy && r.Healthy
	}
	return results, healthy
}
