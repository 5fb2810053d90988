// Command rpcclient is a demonstration program: it finds "add2" and calls
// it twice with (0, 100) and (1, 100), printing each result.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/tthomas/go-rpc/client"
	"github.com/tthomas/go-rpc/payload"
)

func main() {
	addr := flag.String("i", "127.0.0.1", "server address")
	port := flag.Int("p", 8080, "server port")
	flag.Parse()

	sess, err := client.Dial(*addr, *port)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer sess.Close()

	handle, err := sess.Find("add2")
	if err != nil {
		log.Fatalf("function add2 does not exist: %v", err)
	}

	for i := int32(0); i < 2; i++ {
		left := i
		right := byte(100)

		req := payload.New(left, []byte{right})
		resp, err := sess.Call(handle, req)
		if err != nil {
			log.Fatalf("call add2 failed: %v", err)
		}
		fmt.Printf("Result of adding %d and %d: %d\n", left, right, resp.Data1)
	}
}
