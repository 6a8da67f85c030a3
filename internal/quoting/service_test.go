package quoting

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"booking_portal_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type stubPricer struct {
	calls atomic.Int32
	fn    func(ctx context.Context, req Request) (Result, error)
}

func (s *stubPricer) Recalculate(ctx context.Context, req Request) (Result, error) {
	s.calls.Add(1)
	return s.fn(ctx, req)
}

func testLogger() *logger.Logger {
	return logger.NewWithHandler(slog.NewTextHandler(io.Discard, nil))
}

func validRequest() Request {
	return Request{BookingID: "b-1", StartAddress: "Storgatan 1", EndAddress: "Kungsgatan 9"}
}

func TestRecalculateRejectsShortAddressesWithoutCalling(t *testing.T) {
	pricer := &stubPricer{fn: func(context.Context, Request) (Result, error) { return Result{NewPrice: 1}, nil }}
	svc := NewService(pricer, nil, testLogger())

	for _, req := range []Request{
		{StartAddress: "", EndAddress: "Kungsgatan 9"},
		{StartAddress: "St", EndAddress: "Kungsgatan 9"},
		{StartAddress: "Storgatan 1", EndAddress: "  "},
	} {
		if _, ok := svc.Recalculate(context.Background(), "s", req); ok {
			t.Fatalf("expected no result for %+v", req)
		}
	}
	if pricer.calls.Load() != 0 {
		t.Fatalf("expected no pricing calls, got %d", pricer.calls.Load())
	}
}

func TestRecalculateFailureIsNoResult(t *testing.T) {
	pricer := &stubPricer{fn: func(context.Context, Request) (Result, error) {
		return Result{}, errors.New("boom")
	}}
	svc := NewService(pricer, nil, testLogger())

	if _, ok := svc.Recalculate(context.Background(), "s", validRequest()); ok {
		t.Fatalf("expected no result on failure")
	}
}

func TestNewerCallSupersedesPending(t *testing.T) {
	started := make(chan struct{})
	pricer := &stubPricer{fn: func(ctx context.Context, req Request) (Result, error) {
		if req.EndAddress == "Kungsgatan 9" {
			close(started)
			<-ctx.Done()
			return Result{}, ctx.Err()
		}
		return Result{DistanceKm: 7, NewPrice: 3200}, nil
	}}
	svc := NewService(pricer, nil, testLogger())

	var wg sync.WaitGroup
	var firstOK bool
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstOK = svc.Recalculate(context.Background(), "session-1", validRequest())
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatalf("first call never started")
	}

	second := validRequest()
	second.EndAddress = "Drottninggatan 5"
	result, ok := svc.Recalculate(context.Background(), "session-1", second)
	wg.Wait()

	if firstOK {
		t.Fatalf("expected superseded call to report no result")
	}
	if !ok || result.NewPrice != 3200 {
		t.Fatalf("expected second call to succeed, got %+v %v", result, ok)
	}
}

func TestCancelAbortsInflightCall(t *testing.T) {
	started := make(chan struct{})
	pricer := &stubPricer{fn: func(ctx context.Context, _ Request) (Result, error) {
		close(started)
		<-ctx.Done()
		return Result{}, ctx.Err()
	}}
	svc := NewService(pricer, nil, testLogger())

	done := make(chan bool)
	go func() {
		_, ok := svc.Recalculate(context.Background(), "session-1", validRequest())
		done <- ok
	}()
	<-started
	svc.Cancel("session-1")

	select {
	case ok := <-done:
		if ok {
			t.Fatalf("expected cancelled call to report no result")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("cancel did not abort the call")
	}
}

func TestRedisCacheServesRepeatedRequests(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	pricer := &stubPricer{fn: func(context.Context, Request) (Result, error) {
		return Result{DistanceKm: 12, NewPrice: 3400}, nil
	}}
	svc := NewService(pricer, NewRedisCache(client, time.Minute), testLogger())

	first, ok := svc.Recalculate(context.Background(), "s", validRequest())
	if !ok {
		t.Fatalf("expected first call to succeed")
	}

	again := validRequest()
	again.StartAddress = "  storgatan   1 "
	second, ok := svc.Recalculate(context.Background(), "s", again)
	if !ok || second != first {
		t.Fatalf("expected cached result %+v, got %+v", first, second)
	}
	if pricer.calls.Load() != 1 {
		t.Fatalf("expected one pricing call, got %d", pricer.calls.Load())
	}

	mr.FastForward(2 * time.Minute)
	if _, ok := svc.Recalculate(context.Background(), "s", validRequest()); !ok || pricer.calls.Load() != 2 {
		t.Fatalf("expected expired entry to trigger a new call")
	}
}
