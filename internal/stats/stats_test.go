package stats

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewStatsUpdater(t *testing.T) {
	mux := http.NewServeMux()
	su := NewStatsUpdater(mux)
	assert.NotNil(t, su, "expected StatsUpdater to be non-nil")
	assert.NotNil(t, su.updateChan, "expected updateChan to be initialized")
	handler, pattern := mux.Handler(&http.Request{URL: &url.URL{Path: "/debug/vars"}, Method: http.MethodGet})
	assert.NotNil(t, handler, "expected handler for /debug/vars to be set")
	assert.Equal(t, "GET /debug/vars", pattern, "expected handler to be registered for GET method on /debug/vars")
}

func TestIncrDecr(t *testing.T) {
	mux := http.NewServeMux()
	su := NewStatsUpdater(mux)
	su.RegisterMetric("ActiveConnections")
	su.Run()
	defer su.Stop()

	su.Incr("ActiveConnections")
	su.Incr("ActiveConnections")
	su.Decr("ActiveConnections")

	assert.Eventually(t, func() bool {
		return su.Get("ActiveConnections") == 1
	}, time.Second, 10*time.Millisecond, "expected ActiveConnections to settle at 1")
}

func TestNewStatsUpdaterTwice(t *testing.T) {
	su1 := NewStatsUpdater(http.NewServeMux())
	// a second instance must reuse the exported map instead of
	// panicking on the duplicate expvar name
	su2 := NewStatsUpdater(http.NewServeMux())
	su2.RegisterMetric("ReuseMetric")
	su2.RegisterMetric("ReuseMetric")
	su2.Run()
	defer su2.Stop()

	su2.Incr("ReuseMetric")

	assert.Eventually(t, func() bool {
		return su1.Get("ReuseMetric") == 1
	}, time.Second, 10*time.Millisecond, "expected both instances to share the exported map")
}

func TestIncrUnregisteredMetric(t *testing.T) {
	mux := http.NewServeMux()
	su := NewStatsUpdater(mux)
	su.Run()
	defer su.Stop()

	su.Incr("LateMetric")

	assert.Eventually(t, func() bool {
		return su.Get("LateMetric") == 1
	}, time.Second, 10*time.Millisecond, "expected unregistered metric to be created on first update")
}
