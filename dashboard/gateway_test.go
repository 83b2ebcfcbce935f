package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
)

type countingFetcher struct {
	calls atomic.Int32
	fn    func(ctx context.Context, propertyId, tenantId string) (*RawRevenueSummary, error)
}

func (f *countingFetcher) FetchRevenueSummary(ctx context.Context, propertyId, tenantId string) (*RawRevenueSummary, error) {
	f.calls.Add(1)
	return f.fn(ctx, propertyId, tenantId)
}

// tenantRevenue answers per (tenant, property) so cross-tenant mixups are visible.
func tenantRevenue() *countingFetcher {
	data := map[string]map[string]RawRevenueSummary{
		"tenant-a": {
			"prop-001": {PropertyId: "prop-001", Total: "2250.000", Currency: "USD", Count: 4},
			"prop-002": {PropertyId: "prop-002", Total: "1234.565", Currency: "USD", Count: 7},
		},
		"tenant-b": {
			"prop-001": {PropertyId: "prop-001", Total: "980.10", Currency: "EUR", Count: 2},
		},
	}
	return &countingFetcher{fn: func(ctx context.Context, propertyId, tenantId string) (*RawRevenueSummary, error) {
		raw, ok := data[tenantId][propertyId]
		if !ok {
			return nil, ErrNotFound
		}
		return &raw, nil
	}}
}

func newTestGateway(t *testing.T, f RevenueFetcher) *Gateway {
	t.Helper()
	return NewGateway(mustDirectory(t), f)
}

func TestGateway_GetRevenueSummary_Scenario(t *testing.T) {
	f := tenantRevenue()
	g := newTestGateway(t, f)

	got, err := g.GetRevenueSummary(context.Background(), "prop-002", Principal{TenantId: "tenant-a"})
	if err != nil {
		t.Fatalf("GetRevenueSummary: %v", err)
	}
	want := &RevenueSummaryResponse{
		PropertyId:        "prop-002",
		TotalRevenue:      1234.57,
		Currency:          "USD",
		ReservationsCount: 7,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if f.calls.Load() != 1 {
		t.Fatalf("expected 1 fetch, got %d", f.calls.Load())
	}
}

func TestGateway_GetRevenueSummary_ForbiddenNeverFetches(t *testing.T) {
	f := tenantRevenue()
	g := newTestGateway(t, f)

	cases := []struct {
		tenant, property string
	}{
		{"tenant-a", "prop-004"},
		{"tenant-b", "prop-002"},
		{"tenant-b", "prop-999"},
		{"tenant-z", "prop-001"},
		{"", "prop-001"},
		{"tenant-a", ""},
	}
	for _, tc := range cases {
		_, err := g.GetRevenueSummary(context.Background(), tc.property, Principal{TenantId: tc.tenant})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("(%q, %q) expected ErrForbidden, got %v", tc.tenant, tc.property, err)
		}
		if err.Error() != "not your property" {
			t.Fatalf("forbidden message must be generic, got %q", err.Error())
		}
	}
	if n := f.calls.Load(); n != 0 {
		t.Fatalf("fetcher must not be called for unowned properties, got %d calls", n)
	}
}

func TestGateway_GetRevenueSummary_CrossTenantIdCollision(t *testing.T) {
	g := newTestGateway(t, tenantRevenue())

	a, err := g.GetRevenueSummary(context.Background(), "prop-001", Principal{TenantId: "tenant-a"})
	if err != nil {
		t.Fatalf("tenant-a: %v", err)
	}
	b, err := g.GetRevenueSummary(context.Background(), "prop-001", Principal{TenantId: "tenant-b"})
	if err != nil {
		t.Fatalf("tenant-b: %v", err)
	}
	if a.TotalRevenue != 2250 || a.Currency != "USD" || a.ReservationsCount != 4 {
		t.Fatalf("tenant-a got someone else's data: %+v", a)
	}
	if b.TotalRevenue != 980.10 || b.Currency != "EUR" || b.ReservationsCount != 2 {
		t.Fatalf("tenant-b got someone else's data: %+v", b)
	}
}

func TestGateway_GetRevenueSummary_PassesTenantToFetcher(t *testing.T) {
	var seen string
	f := &countingFetcher{fn: func(ctx context.Context, propertyId, tenantId string) (*RawRevenueSummary, error) {
		seen = tenantId
		return &RawRevenueSummary{PropertyId: propertyId, Total: "1", Currency: "USD"}, nil
	}}
	g := newTestGateway(t, f)
	if _, err := g.GetRevenueSummary(context.Background(), "prop-004", Principal{TenantId: "tenant-b"}); err != nil {
		t.Fatalf("GetRevenueSummary: %v", err)
	}
	if seen != "tenant-b" {
		t.Fatalf("expected fetch scoped to tenant-b, got %q", seen)
	}
}

func TestGateway_GetRevenueSummary_FetchErrorsPropagateUnchanged(t *testing.T) {
	upstream := errors.New("connection reset")
	wrapped := errors.Join(ErrUpstream, upstream)
	for _, want := range []error{ErrNotFound, wrapped, context.DeadlineExceeded} {
		f := &countingFetcher{fn: func(ctx context.Context, propertyId, tenantId string) (*RawRevenueSummary, error) {
			return nil, want
		}}
		g := newTestGateway(t, f)
		got, err := g.GetRevenueSummary(context.Background(), "prop-001", Principal{TenantId: "tenant-a"})
		if err != want {
			t.Fatalf("expected %v unchanged, got %v", want, err)
		}
		if got != nil {
			t.Fatalf("expected no response on error, got %+v", got)
		}
		if f.calls.Load() != 1 {
			t.Fatalf("gateway must not retry, got %d calls", f.calls.Load())
		}
	}
}

func TestGateway_GetRevenueSummary_UpstreamInconsistencies(t *testing.T) {
	cases := []struct {
		name string
		raw  *RawRevenueSummary
	}{
		{"nil summary", nil},
		{"different property", &RawRevenueSummary{PropertyId: "prop-003", Total: "10", Currency: "USD", Count: 1}},
		{"negative count", &RawRevenueSummary{PropertyId: "prop-001", Total: "10", Currency: "USD", Count: -1}},
		{"unparseable total", &RawRevenueSummary{PropertyId: "prop-001", Total: "ten", Currency: "USD", Count: 1}},
		{"out of range total", &RawRevenueSummary{PropertyId: "prop-001", Total: "1e200000000", Currency: "USD", Count: 1}},
	}
	for _, tc := range cases {
		raw := tc.raw
		f := &countingFetcher{fn: func(ctx context.Context, propertyId, tenantId string) (*RawRevenueSummary, error) {
			return raw, nil
		}}
		g := newTestGateway(t, f)
		got, err := g.GetRevenueSummary(context.Background(), "prop-001", Principal{TenantId: "tenant-a"})
		if !errors.Is(err, ErrUpstream) {
			t.Fatalf("%s: expected ErrUpstream, got %v", tc.name, err)
		}
		if got != nil {
			t.Fatalf("%s: expected no response, got %+v", tc.name, got)
		}
	}
}

func TestGateway_GetRevenueSummary_CancelledFetchIsAnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &countingFetcher{fn: func(ctx context.Context, propertyId, tenantId string) (*RawRevenueSummary, error) {
		cancel()
		// misbehaving source that answers anyway
		return &RawRevenueSummary{PropertyId: propertyId, Total: "0", Currency: "USD"}, nil
	}}
	g := newTestGateway(t, f)
	got, err := g.GetRevenueSummary(ctx, "prop-001", Principal{TenantId: "tenant-a"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no zero-value response, got %+v", got)
	}
}

func TestGateway_GetRevenueSummary_Idempotent(t *testing.T) {
	g := newTestGateway(t, tenantRevenue())
	p := Principal{TenantId: "tenant-a"}

	first, err := g.GetRevenueSummary(context.Background(), "prop-002", p)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := g.GetRevenueSummary(context.Background(), "prop-002", p)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	b1, _ := json.Marshal(first)
	b2, _ := json.Marshal(second)
	if string(b1) != string(b2) {
		t.Fatalf("responses differ: %s vs %s", b1, b2)
	}
	if string(b1) != `{"property_id":"prop-002","total_revenue":1234.57,"currency":"USD","reservations_count":7}` {
		t.Fatalf("unexpected body %s", b1)
	}
}

func TestGateway_GetRevenueSummary_ConcurrentTenantsStayIsolated(t *testing.T) {
	g := newTestGateway(t, tenantRevenue())

	var wg sync.WaitGroup
	errs := make(chan error, 200)
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r, err := g.GetRevenueSummary(context.Background(), "prop-001", Principal{TenantId: "tenant-a"})
			if err != nil || r.Currency != "USD" {
				errs <- errors.New("tenant-a saw foreign or no data")
			}
		}()
		go func() {
			defer wg.Done()
			r, err := g.GetRevenueSummary(context.Background(), "prop-001", Principal{TenantId: "tenant-b"})
			if err != nil || r.Currency != "EUR" {
				errs <- errors.New("tenant-b saw foreign or no data")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestGateway_ListProperties(t *testing.T) {
	g := newTestGateway(t, tenantRevenue())

	a := g.ListProperties(context.Background(), Principal{TenantId: "tenant-a"})
	if len(a) != 3 || a[0].Id != "prop-001" || a[0].Name != "Beach House Alpha" {
		t.Fatalf("unexpected tenant-a properties %+v", a)
	}
	for _, p := range a {
		if p.Id == "prop-004" || p.Id == "prop-005" {
			t.Fatalf("tenant-a sees tenant-b property %s", p.Id)
		}
	}

	if got := g.ListProperties(context.Background(), Principal{}); len(got) != 0 {
		t.Fatalf("default tenant should see nothing, got %+v", got)
	}
	if got := g.ListProperties(context.Background(), Principal{TenantId: "tenant-unknown"}); len(got) != 0 {
		t.Fatalf("unknown tenant should see nothing, got %+v", got)
	}
}

func TestPrincipal_ResolvedTenantId(t *testing.T) {
	if got := (Principal{}).ResolvedTenantId(); got != DefaultTenantId {
		t.Fatalf("expected %s, got %s", DefaultTenantId, got)
	}
	if got := (Principal{TenantId: "tenant-a"}).ResolvedTenantId(); got != "tenant-a" {
		t.Fatalf("expected tenant-a, got %s", got)
	}
}
