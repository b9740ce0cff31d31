// Command mcpcall sends JSON-RPC calls to an MCP endpoint.
//
//	mcpcall --url http://localhost:8000/mcp capabilities
//	mcpcall call tools/search '{"query":"weather"}'
//	mcpcall calc '(2 + 3) * 4'
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp(os.Stdout, os.Stderr).execute(ctx, os.Args[1:]); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
