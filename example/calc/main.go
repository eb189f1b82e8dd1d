// Command calc wires the demo and textutil services into a microrpc engine,
// replays a table of example requests, then serves requests from stdin, one
// per line.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/MegaGrindStone/go-microrpc"
	"github.com/MegaGrindStone/go-microrpc/services/demo"
	"github.com/MegaGrindStone/go-microrpc/services/textutil"
)

// exampleRequests exercises both dialects, notifications, batches, and a few
// malformed inputs.
var exampleRequests = []string{
	`{"jsonrpc": "2.0", "method": "getTimeDate", "params": none, "id": 10}`,
	`{"jsonrpc": "2.0", "method": "helloWorld", "params": ["Hello World"], "id": 11}`,
	`{"method": "search", "params": [{"last_name": "Python", "age": 26}], "id": 22}`,
	`{"jsonrpc": "2.0", "method": "search", "params": [{"last_n": "Python"}], "id": 43}`,
	`{"jsonrpc": "2.0", "method": "search", "params": [{"last_name": "Doe"}], "id": 54}`,
	`{"jsonrpc": "2.0", "thod": "search", `, // truncated, will not parse
	`{"method": "err_example",  "params": [], "id": 36}`,
	`{"jsonrpc": "2.0", "method": "use_param", "params": [], "id": 37s}`,
	`{"jsonrpc": "2.0", "method": "calculate", "params": [{"first": 128, "second": 32, "op": "+"}], "id": 38}`,
	`{"jsonrpc": "2.0", "method": "calculate", "params": [{"second": 0x10, "first": 0x2, "op": "*"}], "id": 39}`,
	`{"jsonrpc": "2.0", "method": "calculate", "params": [{"first": 128, "second": 32, "op": "+"}], "id": 40}`,
	`{"jsonrpc": "2.0", "method": "ordered_params", "params": [128, "the string", 0x100], "id": 41}`,
	`{"method": "handleMessage", "params": ["user3", "sorry, gotta go now, ttyl"], "id": null}`,
	`{"jsonrpc": "2.0", "method": "calculate", "params": [{"first": -0x17, "second": -17, "op": "+"}], "id": 43}`,
	`{"jsonrpc": "2.0", "method": "calculate", "params": [{"first": -0x32, "second": -055, "op": "-"}], "id": 44}`,
	`{"jsonrpc": "2.0", "method": "send_back", "params": [{"what": "{[{abcde}]}"}], "id": 45}`,
	`{"jsonrpc": "2.0", "thod": "search".. }`, // parses far enough to sniff the dialect
	`[{"jsonrpc": "2.0", "method": "calculate", "params": [{"first": 128, "second": 32, "op": "+"}], "id": 38},` +
		`{"jsonrpc": "2.0", "method": "calculate", "params": [{"second": 0x10, "first": 0x2, "op": "*"}], "id": 39}]`,
	`[,233]`,
	`{"jsonrpc": "2.0", "method": "match", "params": [{"pattern": "*.go", "names": ["engine.go", "engine.c", "token.go"]}], "id": 46}`,
	`{"jsonrpc": "2.0", "method": "diff", "params": [{"old": "line one", "new": "line two"}], "id": 47}`,
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	engine := microrpc.NewEngine(microrpc.WithLogger(logger))
	if err := demo.NewService().Register(engine); err != nil {
		log.Fatal(err)
	}
	if err := (textutil.Service{}).Register(engine); err != nil {
		log.Fatal(err)
	}

	x := &microrpc.Exchange{
		Response: microrpc.NewBuffer(make([]byte, 1024)),
		Arena:    make([]microrpc.Token, 256),
	}
	for i, req := range exampleRequests {
		x.Request = []byte(req)
		resp := engine.Handle(x)
		fmt.Printf("\n%d:\n--> %s\n<-- %s\n", i, req, resp)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Println("Exiting...")
		cancel()
	}()

	fmt.Println("\nReading requests from stdin, one per line.")
	stdio := microrpc.NewStdIO(engine, os.Stdin, os.Stdout,
		microrpc.WithStdIOLogger(logger))
	if err := stdio.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Print(err)
	}
}
