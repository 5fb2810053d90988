package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/tthomas/go-rpc/payload"
)

// echoHandler returns the request payload unchanged and always succeeds.
func echoHandler(_ context.Context, _ string, req payload.Payload) (payload.Payload, bool) {
	return req, true
}

// slowHandler sleeps past any reasonable test timeout before succeeding.
func slowHandler(_ context.Context, _ string, req payload.Payload) (payload.Payload, bool) {
	time.Sleep(200 * time.Millisecond)
	return req, true
}

func TestLogging(t *testing.T) {
	handler := LoggingMiddleware()(echoHandler)

	resp, ok := handler(context.Background(), "add2", payload.New(1, nil))
	if !ok {
		t.Fatal("expected success")
	}
	if resp.Data1 != 1 {
		t.Fatalf("expected payload unchanged, got %+v", resp)
	}
}

func TestTimeoutPass(t *testing.T) {
	handler := TimeOutMiddleware(500 * time.Millisecond)(echoHandler)

	_, ok := handler(context.Background(), "add2", payload.New(1, nil))
	if !ok {
		t.Fatal("expected the fast handler to beat the timeout")
	}
}

func TestTimeoutExceeded(t *testing.T) {
	handler := TimeOutMiddleware(50 * time.Millisecond)(slowHandler)

	_, ok := handler(context.Background(), "add2", payload.New(1, nil))
	if ok {
		t.Fatal("expected the slow handler to miss the timeout")
	}
}

func TestRateLimit(t *testing.T) {
	// rate=1/s, burst=2: the first 2 calls pass immediately, the 3rd is rejected.
	handler := RateLimitMiddleware(1, 2)(echoHandler)
	req := payload.New(1, nil)

	for i := 0; i < 2; i++ {
		if _, ok := handler(context.Background(), "add2", req); !ok {
			t.Fatalf("request %d should pass", i)
		}
	}

	if _, ok := handler(context.Background(), "add2", req); ok {
		t.Fatal("request 3 should be rate limited")
	}
}

func TestChain(t *testing.T) {
	chained := Chain(LoggingMiddleware(), TimeOutMiddleware(500*time.Millisecond))
	handler := chained(echoHandler)

	resp, ok := handler(context.Background(), "add2", payload.New(1, nil))
	if !ok {
		t.Fatal("expected success through the chain")
	}
	if resp.Data1 != 1 {
		t.Fatalf("expected payload unchanged, got %+v", resp)
	}
}
