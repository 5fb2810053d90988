package test

import (
	"bytes"
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/tthomas/go-rpc/client"
	"github.com/tthomas/go-rpc/payload"
	"github.com/tthomas/go-rpc/server"
)

func setupBenchServer(b *testing.B, port int) *server.Server {
	b.Helper()
	svr := server.NewServer()
	if _, err := svr.Register("add2", add2); err != nil {
		b.Fatal(err)
	}
	addr := "127.0.0.1:" + strconv.Itoa(port)
	go svr.ServeAll("tcp", addr)

	for i := 0; i < 200; i++ {
		conn, err := net.Dial("tcp", addr)
		if err == nil {
			conn.Close()
			return svr
		}
		time.Sleep(2 * time.Millisecond)
	}
	b.Fatalf("server on %s never came up", addr)
	return nil
}

// Scenario 1: single goroutine, serial calls on one session.
func BenchmarkSerialCall(b *testing.B) {
	port := 29090
	svr := setupBenchServer(b, port)
	b.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		svr.Shutdown(ctx)
	})

	sess, err := client.Dial("127.0.0.1", port)
	if err != nil {
		b.Fatal(err)
	}
	defer sess.Close()

	h, err := sess.Find("add2")
	if err != nil {
		b.Fatal(err)
	}

	req := payload.New(1, []byte{2})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := sess.Call(h, req); err != nil {
			b.Fatal(err)
		}
	}
}

// Scenario 2: many goroutines, each with its own dedicated session (a
// Session is not safe for concurrent use, so the benchmark dials once per
// goroutine rather than sharing one).
func BenchmarkConcurrentCallsOneSessionPerGoroutine(b *testing.B) {
	port := 29091
	svr := setupBenchServer(b, port)
	b.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		svr.Shutdown(ctx)
	})

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		sess, err := client.Dial("127.0.0.1", port)
		if err != nil {
			b.Fatal(err)
		}
		defer sess.Close()

		h, err := sess.Find("add2")
		if err != nil {
			b.Fatal(err)
		}

		req := payload.New(1, []byte{2})
		for pb.Next() {
			if _, err := sess.Call(h, req); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// Scenario 3: payload codec throughput, no network involved.
func BenchmarkPayloadRoundTrip(b *testing.B) {
	p := payload.New(42, []byte("benchmark payload"))
	var buf bytes.Buffer

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		if err := payload.Encode(&buf, p); err != nil {
			b.Fatal(err)
		}
		if _, err := payload.Decode(&buf); err != nil {
			b.Fatal(err)
		}
	}
}
