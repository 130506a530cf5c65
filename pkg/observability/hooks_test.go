package observability

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	e := NoopEnumerationHooks{}
	e.OnEnumerateStart(ctx, "J1", 4)
	e.OnEnumerateComplete(ctx, "J1", 4, 9, 2, time.Millisecond, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "phases")
	c.OnCacheMiss(ctx, "phases")
	c.OnCacheSet(ctx, "phases", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/phases")
	h.OnResponse(ctx, "POST", "/v1/phases", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Enumeration().(NoopEnumerationHooks); !ok {
		t.Error("Enumeration() should return NoopEnumerationHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customEnum := &testEnumerationHooks{}
	SetEnumerationHooks(customEnum)
	if Enumeration() != customEnum {
		t.Error("SetEnumerationHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Enumeration().(NoopEnumerationHooks); !ok {
		t.Error("Reset() should restore NoopEnumerationHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testEnumerationHooks{}
	SetEnumerationHooks(custom)
	SetEnumerationHooks(nil)

	if Enumeration() != custom {
		t.Error("SetEnumerationHooks(nil) should be ignored")
	}
}

func TestInstallPartial(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testCacheHooks{}
	Install(custom)

	if Cache() != custom {
		t.Error("Install should register cache hooks")
	}
	if _, ok := Enumeration().(NoopEnumerationHooks); !ok {
		t.Error("Install should leave unimplemented families alone")
	}
}

func TestPrometheusCounters(t *testing.T) {
	ctx := context.Background()
	p := NewPrometheus(prometheus.NewRegistry())

	p.OnEnumerateStart(ctx, "J1", 4)
	p.OnEnumerateComplete(ctx, "J1", 4, 9, 2, time.Millisecond, nil)
	p.OnEnumerateStart(ctx, "J2", 4)
	p.OnEnumerateComplete(ctx, "J2", 4, 0, 0, time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(p.enumerations.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok enumerations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.enumerations.WithLabelValues("error")); got != 1 {
		t.Errorf("error enumerations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.inflight); got != 0 {
		t.Errorf("inflight = %v, want 0", got)
	}

	p.OnCacheHit(ctx, "phases")
	p.OnCacheMiss(ctx, "phases")
	p.OnCacheMiss(ctx, "phases")
	p.OnCacheSet(ctx, "phases", 512)

	if got := testutil.ToFloat64(p.cacheRequests.WithLabelValues("phases", "miss")); got != 2 {
		t.Errorf("cache misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(p.cacheBytes.WithLabelValues("phases")); got != 512 {
		t.Errorf("cache bytes = %v, want 512", got)
	}

	p.OnResponse(ctx, "POST", "/v1/phases", 200, time.Millisecond)
	if got := testutil.ToFloat64(p.httpRequests.WithLabelValues("POST", "/v1/phases", "200")); got != 1 {
		t.Errorf("http requests = %v, want 1", got)
	}
}

func TestPrometheusHandler(t *testing.T) {
	p := NewPrometheus(nil)
	p.OnCacheHit(context.Background(), "phases")

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `safephase_cache_requests_total{key_type="phases",result="hit"} 1`) {
		t.Errorf("metrics output missing cache counter:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("default registry should include Go collector")
	}
}

type testEnumerationHooks struct{ NoopEnumerationHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
