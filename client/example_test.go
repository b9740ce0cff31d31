package client_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/felixgeelhaar/mcpcall/client"
	"github.com/felixgeelhaar/mcpcall/middleware"
)

func ExampleNewHTTP() {
	c, err := client.NewHTTP(client.HTTPConfig{
		URL:     "http://localhost:8000/mcp",
		Timeout: 10 * time.Second,
	}, client.WithMiddleware(middleware.DefaultStack(middleware.NopLogger{})...))
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	result, err := c.Call(context.Background(), "get_capabilities", nil)

	var (
		transportErr *client.TransportError
		remoteErr    *client.RemoteError
	)
	switch {
	case errors.As(err, &transportErr):
		fmt.Println("server unreachable:", transportErr)
	case errors.As(err, &remoteErr):
		fmt.Println("server refused:", remoteErr.Message)
	case err != nil:
		fmt.Println("bad response:", err)
	default:
		fmt.Println(result)
	}
}
