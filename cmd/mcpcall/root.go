package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/felixgeelhaar/mcpcall/client"
	"github.com/felixgeelhaar/mcpcall/internal/config"
	"github.com/felixgeelhaar/mcpcall/internal/logs"
	"github.com/felixgeelhaar/mcpcall/middleware"
)

// app carries what the subcommands share.
type app struct {
	v          *viper.Viper
	configPath string
	trace      bool

	out    io.Writer
	errOut io.Writer

	cfg      *config.Config
	logger   *slog.Logger
	logClose io.Closer
	tp       *sdktrace.TracerProvider
	stopped  bool
}

func newApp(out, errOut io.Writer) *app {
	return &app{v: config.New(), out: out, errOut: errOut}
}

// execute runs the command tree with args. The logger and tracer provider
// are released whether or not the command succeeds.
func (a *app) execute(ctx context.Context, args []string) error {
	root := newRootCmd(a)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if shutdownErr := a.shutdown(context.WithoutCancel(ctx)); err == nil {
		err = shutdownErr
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "mcpcall",
		Short:         "Call MCP endpoints over JSON-RPC 2.0",
		Long:          "mcpcall sends one JSON-RPC 2.0 request per invocation to an MCP endpoint and prints the result as JSON.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file (default ./mcpcall.yaml)")
	flags.StringP("url", "u", "http://localhost:8000/mcp", "MCP endpoint URL")
	flags.Duration("timeout", client.DefaultTimeout, "per-call timeout")
	flags.String("transport", config.TransportHTTP, "transport: http or ws")
	flags.StringToStringP("header", "H", nil, "extra request header as key=value (repeatable)")
	flags.String("id", config.IDFixed, "request id strategy: fixed, counter or uuid")
	flags.Bool("strict-id", false, "fail when the response id does not match the request id")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")
	flags.String("log-file", "", "write logs to a rotated file instead of stderr")
	flags.Int("rate", 0, "maximum calls per interval (0 disables rate limiting)")
	flags.Int("burst", 0, "rate limiter burst size")
	flags.BoolVar(&a.trace, "trace", false, "log an OpenTelemetry span for every call")

	for key, name := range map[string]string{
		"server.url":       "url",
		"server.timeout":   "timeout",
		"server.transport": "transport",
		"server.headers":   "header",
		"client.id":        "id",
		"client.strict_id": "strict-id",
		"log.level":        "log-level",
		"log.format":       "log-format",
		"log.file":         "log-file",
		"rate_limit.rate":  "rate",
		"rate_limit.burst": "burst",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(
		newCallCmd(a),
		newInitializeCmd(a),
		newCapabilitiesCmd(a),
		newResourcesCmd(a),
		newPingCmd(a),
		newSendCmd(a),
		newExecCmd(a),
		newChatCmd(a),
		newToolCmd(a),
		newCalcCmd(a),
	)

	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, closer, err := logs.Setup(logs.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Output: a.errOut,
	})
	if err != nil {
		return err
	}
	a.logger, a.logClose = logger, closer

	if a.trace {
		a.tp = sdktrace.NewTracerProvider(sdktrace.WithSyncer(&spanLogger{log: logger}))
	}

	logger.Debug("config loaded",
		"url", cfg.Server.URL,
		"transport", cfg.Server.Transport,
		"timeout", cfg.Server.Timeout,
		"id", cfg.Client.ID,
	)
	return nil
}

// shutdown flushes the tracer provider and closes the log file. It is safe
// to call more than once.
func (a *app) shutdown(ctx context.Context) error {
	if a.stopped {
		return nil
	}
	a.stopped = true

	var errs []error
	if a.tp != nil {
		if err := a.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
		}
	}
	if a.logClose != nil {
		if err := a.logClose.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log: %w", err))
		}
	}
	return errors.Join(errs...)
}

// newClient builds a client from the resolved configuration.
func (a *app) newClient() (*client.Client, error) {
	cfg := a.cfg

	opts := []client.Option{
		client.WithIDGenerator(idGenerator(cfg.Client.ID)),
		client.WithMiddleware(a.middleware()...),
	}
	if cfg.Server.Timeout > 0 {
		opts = append(opts, client.WithTimeout(cfg.Server.Timeout))
	}
	if cfg.Client.StrictID {
		opts = append(opts, client.WithStrictID())
	}

	if cfg.Server.Transport == config.TransportWebSocket {
		var wsOpts []client.WebSocketOption
		for k, v := range cfg.Server.Headers {
			wsOpts = append(wsOpts, client.WithHandshakeHeader(k, v))
		}
		t, err := client.NewWebSocketTransport(cfg.Server.URL, wsOpts...)
		if err != nil {
			return nil, err
		}
		return client.New(t, opts...), nil
	}

	return client.NewHTTP(client.HTTPConfig{
		URL:     cfg.Server.URL,
		Headers: cfg.Server.Headers,
	}, opts...)
}

func (a *app) middleware() []middleware.Middleware {
	logger := middleware.NewSlogLogger(a.logger)
	chain := middleware.Use(middleware.DefaultStack(logger)...)

	if a.tp != nil {
		otelOpts := []middleware.OTelOption{middleware.WithTracerProvider(a.tp)}
		if u, err := url.Parse(a.cfg.Server.URL); err == nil {
			otelOpts = append(otelOpts, middleware.WithOTelServerAddress(u.Host))
		}
		chain.Append(middleware.OTel(otelOpts...))
	}

	if rl := a.cfg.RateLimit; rl.Rate > 0 {
		burst := rl.Burst
		if burst <= 0 {
			burst = rl.Rate
		}
		chain.Append(middleware.RateLimit(rl.Rate, burst,
			middleware.WithRateLimitInterval(rl.Interval),
			middleware.WithRateLimitLogger(logger),
		))
	}

	return chain.Middlewares()
}

func idGenerator(name string) client.IDGenerator {
	switch name {
	case config.IDCounter:
		return client.NewCounterID()
	case config.IDUUID:
		return client.UUIDID()
	}
	return client.FixedID(1)
}
