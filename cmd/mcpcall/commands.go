package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/mcpcall/calc"
	"github.com/felixgeelhaar/mcpcall/client"
)

// withClient runs fn with a client that is closed afterwards.
func (a *app) withClient(ctx context.Context, fn func(context.Context, *client.Client) (any, error)) error {
	c, err := a.newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	result, err := fn(ctx, c)
	if err != nil {
		return err
	}
	return a.print(result)
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseParams validates an optional JSON argument and passes it through
// untouched. No argument means no params.
func parseParams(args []string) (json.RawMessage, error) {
	if len(args) == 0 {
		return nil, nil
	}
	raw := json.RawMessage(args[0])
	if !json.Valid(raw) {
		return nil, fmt.Errorf("invalid params JSON: %s", args[0])
	}
	return raw, nil
}

// params converts raw to a call argument; nil stays an untyped nil so the
// client sends {}.
func params(raw json.RawMessage) any {
	if raw == nil {
		return nil
	}
	return raw
}

func newCallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "call <method> [params-json]",
		Short: "Call any method",
		Example: `  mcpcall call get_capabilities
  mcpcall call send_message '{"content":"hello"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			return a.withClient(cmd.Context(), func(ctx context.Context, c *client.Client) (any, error) {
				return c.Call(ctx, args[0], params(raw))
			})
		},
	}
}

func newInitializeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "initialize",
		Short: "Perform the initialize handshake and print server info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd.Context(), func(ctx context.Context, c *client.Client) (any, error) {
				info, err := c.Initialize(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"name":            info.Name,
					"version":         info.Version,
					"protocolVersion": info.ProtocolVersion,
					"capabilities":    info.Capabilities,
				}, nil
			})
		},
	}
}

func newCapabilitiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "capabilities",
		Aliases: []string{"caps"},
		Short:   "Ask the server which methods it supports",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd.Context(), func(ctx context.Context, c *client.Client) (any, error) {
				return c.Capabilities(ctx)
			})
		},
	}
}

func newResourcesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List the server's resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd.Context(), func(ctx context.Context, c *client.Client) (any, error) {
				return c.ListResources(ctx)
			})
		},
	}
}

func newPingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd.Context(), func(ctx context.Context, c *client.Client) (any, error) {
				if err := c.Ping(ctx); err != nil {
					return nil, err
				}
				return map[string]string{"status": "ok"}, nil
			})
		},
	}
}

func newSendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send <message>",
		Short: "Send a message through the server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd.Context(), func(ctx context.Context, c *client.Client) (any, error) {
				return c.SendMessage(ctx, strings.Join(args, " "))
			})
		},
	}
}

func newExecCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <command>",
		Short: "Ask the server to execute a command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd.Context(), func(ctx context.Context, c *client.Client) (any, error) {
				return c.ExecuteCommand(ctx, strings.Join(args, " "))
			})
		},
	}
}

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "Send a chat message to the server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd.Context(), func(ctx context.Context, c *client.Client) (any, error) {
				return c.Chat(ctx, strings.Join(args, " "))
			})
		},
	}
}

func newToolCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "tool <name> [params-json]",
		Short:   "Run a server tool",
		Example: `  mcpcall tool search '{"query":"weather"}'`,
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			if raw != nil && !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
				return fmt.Errorf("tool params must be a JSON object")
			}
			return a.withClient(cmd.Context(), func(ctx context.Context, c *client.Client) (any, error) {
				return c.ExecuteTool(ctx, args[0], params(raw))
			})
		},
	}
}

func newCalcCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "calc <expression>",
		Short: "Evaluate an arithmetic expression locally",
		Long:  "calc evaluates numbers, parentheses and the operators + - * / // % ** without contacting the server.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := calc.Eval(strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, calc.Format(v))
			return err
		},
	}
}
