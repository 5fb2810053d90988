// Command rpcserver is a demonstration program: it registers a single
// "add2" procedure (data1 plus the first byte of data2) and serves it
// until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tthomas/go-rpc/payload"
	"github.com/tthomas/go-rpc/registry"
	"github.com/tthomas/go-rpc/server"
)

func main() {
	port := flag.Int("p", 8080, "port to listen on")
	flag.Parse()

	svr := server.NewServer()

	add2 := registry.HandlerFunc(func(req payload.Payload) (payload.Payload, bool) {
		sum := req.Data1
		if req.Data2Len > 0 {
			sum += int32(req.Data2[0])
		}
		return payload.New(sum, nil), true
	})
	if _, err := svr.Register("add2", add2); err != nil {
		log.Fatalf("register add2: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- svr.ServeAll("tcp6", fmt.Sprintf(":%d", *port))
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("serve: %v", err)
		}
	case <-sigCh:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := svr.Shutdown(ctx); err != nil {
			log.Fatalf("shutdown: %v", err)
		}
	}
}
