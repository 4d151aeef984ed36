// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/agentedge/gateway/internal/gateway"
	"github.com/agentedge/gateway/internal/gwconfig"
	"github.com/agentedge/gateway/internal/gwlog"
	"github.com/agentedge/gateway/internal/version"
)

type (
	// cmd corresponds to the top-level `gateway` command.
	cmd struct {
		// Version is the sub-command to show the version.
		Version struct{} `cmd:"" help:"Show version."`
		// Serve is the sub-command parsed by the `cmdServe` struct.
		Serve cmdServe `cmd:"" help:"Load a config file and serve traffic."`
	}
	// cmdServe corresponds to `gateway serve` command.
	cmdServe struct {
		Debug  bool   `help:"Enable debug logging emitted to stderr."`
		Config string `arg:"" name:"config" help:"Path to the gateway's YAML config file." type:"path"`
	}
)

type (
	subCmdFn[T any] func(context.Context, T, io.Writer, io.Writer) error
	serveFn         subCmdFn[cmdServe]
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	doMain(ctx, os.Stdout, os.Stderr, os.Args[1:], os.Exit, serve)
}

// doMain is the main entry point for the CLI. It parses the command line arguments and executes the appropriate command.
//
//   - stdout is the writer to use for standard output. Mainly for testing.
//   - stderr is the writer to use for standard error. Mainly for testing.
//   - `args` are the command line arguments without the program name.
//   - exitFn is the function to call to exit the program during the parsing of the command line arguments. Mainly for testing.
//   - sf is the function to call to load the config and serve traffic. Mainly for testing.
func doMain(ctx context.Context, stdout, stderr io.Writer, args []string, exitFn func(int),
	sf serveFn,
) {
	var c cmd
	parser, err := kong.New(&c,
		kong.Name("gateway"),
		kong.Description("AI-aware L7 gateway CLI"),
		kong.Writers(stdout, stderr),
		kong.Exit(exitFn),
	)
	if err != nil {
		log.Fatalf("Error creating parser: %v", err)
	}
	parsed, err := parser.Parse(args)
	parser.FatalIfErrorf(err)
	switch parsed.Command() {
	case "version":
		_, _ = stdout.Write([]byte(fmt.Sprintf("gateway CLI: %s\n", version.Version)))
	case "serve <config>":
		err = sf(ctx, c.Serve, stdout, stderr)
		if err != nil {
			log.Fatalf("Error serving: %v", err)
		}
	default:
		panic("unreachable")
	}
}

// serve loads c.Config, builds a gateway.Runtime from it, and blocks
// serving traffic on cfg.ListenAddr until ctx is canceled.
func serve(ctx context.Context, c cmdServe, _, _ io.Writer) error {
	logger := gwlog.New(c.Debug)
	defer func() { _ = logger.Sync() }()

	cfg, err := gwconfig.Load(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	rt, err := gateway.BuildRuntime(ctx, logger, cfg)
	if err != nil {
		return fmt.Errorf("building runtime: %w", err)
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: gateway.NewHandler(rt, logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		return err
	}
}
