// Copyright 2025 The Agentspace Neo4j Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd contains the command-line interface of the assistant core.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/NOGIT007/Agentspace-neo4j/internal/log"
	"github.com/NOGIT007/Agentspace-neo4j/internal/server"
	"github.com/NOGIT007/Agentspace-neo4j/internal/telemetry"
	"github.com/NOGIT007/Agentspace-neo4j/internal/util"

	// register the source and tool kinds
	_ "github.com/NOGIT007/Agentspace-neo4j/internal/sources/neo4j"
	_ "github.com/NOGIT007/Agentspace-neo4j/internal/tools/neo4j/neo4jaggregation"
	_ "github.com/NOGIT007/Agentspace-neo4j/internal/tools/neo4j/neo4jcentrality"
	_ "github.com/NOGIT007/Agentspace-neo4j/internal/tools/neo4j/neo4jchart"
	_ "github.com/NOGIT007/Agentspace-neo4j/internal/tools/neo4j/neo4jcommunities"
	_ "github.com/NOGIT007/Agentspace-neo4j/internal/tools/neo4j/neo4jcypher"
	_ "github.com/NOGIT007/Agentspace-neo4j/internal/tools/neo4j/neo4jpaths"
	_ "github.com/NOGIT007/Agentspace-neo4j/internal/tools/neo4j/neo4jschema"
	_ "github.com/NOGIT007/Agentspace-neo4j/internal/tools/neo4j/neo4jsimilarity"
)

var versionString = "0.1.0"

// Command represents an invocation of the CLI.
type Command struct {
	*cobra.Command

	cfg       server.ServerConfig
	toolsFile string
	logger    log.Logger

	outStream, errStream io.Writer
}

// NewCommand returns a Command object representing an invocation of the CLI.
func NewCommand() *Command {
	c := &Command{
		Command: &cobra.Command{
			Use:           "agentspace-neo4j",
			Version:       versionString,
			Short:         "Read-only natural-language assistant core for Neo4j",
			Long:          "agentspace-neo4j serves graph query, analytics, and schema tools over HTTP with a safety gate that keeps every operation read-only.",
			SilenceErrors: true,
		},
		outStream: os.Stdout,
		errStream: os.Stderr,
	}
	c.SetOut(c.outStream)
	c.SetErr(c.errStream)

	flags := c.Flags()
	flags.StringVarP(&c.cfg.Address, "address", "a", "127.0.0.1", "Address of the interface the server will listen on.")
	flags.IntVarP(&c.cfg.Port, "port", "p", 5000, "Port the server will listen on.")
	flags.StringVar(&c.toolsFile, "tools-file", "tools.yaml", "File path specifying the tool configuration.")
	flags.Var(&c.cfg.LogLevel, "log-level", "Specify the minimum level logged. Allowed: 'DEBUG', 'INFO', 'WARN', 'ERROR'.")
	flags.Var(&c.cfg.LoggingFormat, "logging-format", "Specify logging format to use. Allowed: 'standard' or 'JSON'.")
	flags.StringVar(&c.cfg.TelemetryOTLP, "telemetry-otlp", "", "Enable exporting directly to an OTLP Collector at the specified endpoint.")
	flags.StringVar(&c.cfg.TelemetryServiceName, "telemetry-service-name", "agentspace-neo4j", "Sets the value of the service.name resource attribute.")

	c.RunE = func(*cobra.Command, []string) error {
		return run(c)
	}
	return c
}

func run(cmd *Command) error {
	cmd.cfg.Version = versionString

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// watch for sigterm / sigint signal
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		var s os.Signal
		select {
		case <-ctx.Done():
			return
		case s = <-signalChan:
		}
		if cmd.logger != nil {
			cmd.logger.InfoContext(ctx, "received signal %q, shutting down gracefully", s)
		}
		cancel()
	}()

	// set up logging
	var logger log.Logger
	var err error
	switch strings.ToLower(cmd.cfg.LoggingFormat.String()) {
	case "json":
		logger, err = log.NewStructuredLogger(cmd.outStream, cmd.errStream, cmd.cfg.LogLevel.String())
	default:
		logger, err = log.NewStdLogger(cmd.outStream, cmd.errStream, cmd.cfg.LogLevel.String())
	}
	if err != nil {
		return fmt.Errorf("unable to initialize logger: %w", err)
	}
	cmd.logger = logger
	ctx = util.WithLogger(ctx, logger)
	ctx = util.WithUserAgent(ctx, versionString)

	// set up telemetry
	otelShutdown, err := telemetry.SetupOTel(ctx, versionString, cmd.cfg.TelemetryOTLP, cmd.cfg.TelemetryServiceName)
	if err != nil {
		return fmt.Errorf("unable to setup telemetry: %w", err)
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			logger.ErrorContext(ctx, "error shutting down telemetry: %s", err)
		}
	}()

	// read the tool configuration file
	buf, err := os.ReadFile(cmd.toolsFile)
	if err != nil {
		return fmt.Errorf("unable to read tool file at %q: %w", cmd.toolsFile, err)
	}
	cmd.cfg.SourceConfigs, cmd.cfg.ToolConfigs, cmd.cfg.ToolsetConfigs, err = server.UnmarshalResourceConfig(ctx, buf)
	if err != nil {
		return fmt.Errorf("unable to parse tool file at %q: %w", cmd.toolsFile, err)
	}

	// run the server
	s, err := server.NewServer(ctx, cmd.cfg)
	if err != nil {
		return fmt.Errorf("unable to initialize server: %w", err)
	}
	if err := s.Listen(ctx); err != nil {
		return fmt.Errorf("unable to start listener: %w", err)
	}

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- s.Serve(ctx)
	}()

	select {
	case err := <-srvErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error during shutdown: %w", err)
		}
	}
	return nil
}
