package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/ignite/contact-manager/internal/pkg/httputil"
	"github.com/redis/go-redis/v9"
)

// Overall verdicts.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// Per-dependency states.
const (
	checkUp       = "up"
	checkSlow     = "degraded"
	checkDown     = "down"
	notConfigured = "not configured"
)

// HealthStatus is the /health response body.
type HealthStatus struct {
	Status  string                    `json:"status"`
	Version string                    `json:"version"`
	Uptime  string                    `json:"uptime"`
	Checks  map[string]ComponentCheck `json:"checks"`
}

// ComponentCheck is the result of pinging one dependency.
type ComponentCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// dependency is something the service talks to. A nil ping means the
// dependency is not configured in this deployment.
type dependency struct {
	name     string
	required bool
	timeout  time.Duration
	slowAt   time.Duration
	ping     func(ctx context.Context) error
}

// HealthChecker pings the contact database and the optional Redis cache.
// Losing a required dependency makes the service unhealthy; anything else
// only degrades it.
type HealthChecker struct {
	deps    []dependency
	started time.Time
}

const serviceVersion = "1.0.0"

// NewHealthChecker builds a checker over db and redisClient, either of
// which may be nil.
func NewHealthChecker(db *sql.DB, redisClient *redis.Client) *HealthChecker {
	database := dependency{name: "database", required: true, timeout: 3 * time.Second, slowAt: time.Second}
	if db != nil {
		database.ping = db.PingContext
	}
	cache := dependency{name: "redis", timeout: 2 * time.Second, slowAt: 500 * time.Millisecond}
	if redisClient != nil {
		cache.ping = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	return &HealthChecker{deps: []dependency{database, cache}, started: time.Now()}
}

// HandleHealth always answers 200; the body carries the verdict.
//
//	GET /health
func (hc *HealthChecker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks, overall := hc.evaluate(r.Context())
	httputil.OK(w, HealthStatus{
		Status:  overall,
		Version: serviceVersion,
		Uptime:  time.Since(hc.started).Round(time.Second).String(),
		Checks:  checks,
	})
}

// HandleLiveness answers 200 whenever the process can serve a request.
//
//	GET /health/live
func (hc *HealthChecker) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "alive"})
}

// HandleReadiness answers 503 while a required dependency is down.
//
//	GET /health/ready
func (hc *HealthChecker) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	checks, overall := hc.evaluate(r.Context())
	code := http.StatusOK
	if overall == statusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	httputil.JSON(w, code, map[string]any{
		"ready":  code == http.StatusOK,
		"status": overall,
		"checks": checks,
	})
}

func (hc *HealthChecker) evaluate(ctx context.Context) (map[string]ComponentCheck, string) {
	checks := make(map[string]ComponentCheck, len(hc.deps))
	overall := statusHealthy
	for _, d := range hc.deps {
		c := d.check(ctx)
		checks[d.name] = c
		overall = worse(overall, verdict(d, c))
	}
	return checks, overall
}

func (d dependency) check(ctx context.Context) ComponentCheck {
	if d.ping == nil {
		return ComponentCheck{Status: checkDown, Message: notConfigured}
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	err := d.ping(ctx)
	took := time.Since(start)
	switch {
	case err != nil:
		// Driver errors can name hosts, so the message is fixed.
		return ComponentCheck{Status: checkDown, Latency: took.String(), Message: "ping failed"}
	case took > d.slowAt:
		return ComponentCheck{Status: checkSlow, Latency: took.String(), Message: "slow response"}
	}
	return ComponentCheck{Status: checkUp, Latency: took.String(), Message: "connected"}
}

// verdict maps one dependency's check onto an overall status.
func verdict(d dependency, c ComponentCheck) string {
	switch {
	case c.Message == notConfigured:
		return statusHealthy
	case c.Status == checkDown && d.required:
		return statusUnhealthy
	case c.Status != checkUp:
		return statusDegraded
	}
	return statusHealthy
}

func worse(a, b string) string {
	rank := map[string]int{statusHealthy: 0, statusDegraded: 1, statusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
