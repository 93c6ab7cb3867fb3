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

// Package server provides the HTTP surface for the Agentspace Neo4j
// assistant core: tool manifests, tool invocation, and the pre-flight
// intent gate.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"

	"github.com/NOGIT007/Agentspace-neo4j/internal/intent"
	"github.com/NOGIT007/Agentspace-neo4j/internal/log"
	"github.com/NOGIT007/Agentspace-neo4j/internal/sources"
	"github.com/NOGIT007/Agentspace-neo4j/internal/tools"
	"github.com/NOGIT007/Agentspace-neo4j/internal/util"
)

// Server contains info for running an instance of the assistant core.
// Should be instantiated with NewServer().
type Server struct {
	version         string
	srv             *http.Server
	listener        net.Listener
	root            chi.Router
	logger          log.Logger
	instrumentation *Instrumentation
	intent          *intent.Classifier

	sources  map[string]sources.Source
	tools    map[string]tools.Tool
	toolsets map[string]tools.Toolset

	conf ServerConfig
}

// NewServer returns a Server object based on provided Config.
func NewServer(ctx context.Context, cfg ServerConfig) (*Server, error) {
	instrumentation, err := CreateTelemetryInstrumentation(cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("unable to create telemetry instrumentation: %w", err)
	}

	ctx, span := instrumentation.Tracer.Start(ctx, "agentspace-neo4j/server/init")
	defer span.End()

	l, err := util.LoggerFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to read logger from ctx: %w", err)
	}

	// initialize and validate the sources from configs
	sourcesMap := make(map[string]sources.Source)
	for name, sc := range cfg.SourceConfigs {
		s, err := func() (sources.Source, error) {
			ctx, span := instrumentation.Tracer.Start(
				ctx,
				"agentspace-neo4j/server/source/init",
			)
			defer span.End()
			s, err := sc.Initialize(ctx, instrumentation.Tracer)
			if err != nil {
				return nil, fmt.Errorf("unable to initialize source %q: %w", name, err)
			}
			return s, nil
		}()
		if err != nil {
			return nil, err
		}
		sourcesMap[name] = s
	}
	l.InfoContext(ctx, "initialized %d sources", len(sourcesMap))

	// initialize and validate the tools from configs
	toolsMap := make(map[string]tools.Tool)
	for name, tc := range cfg.ToolConfigs {
		t, err := tc.Initialize(sourcesMap)
		if err != nil {
			return nil, fmt.Errorf("unable to initialize tool %q: %w", name, err)
		}
		toolsMap[name] = t
	}
	l.InfoContext(ctx, "initialized %d tools", len(toolsMap))

	// create a default toolset that contains all tools
	if _, ok := cfg.ToolsetConfigs[""]; !ok {
		allToolNames := make([]string, 0, len(toolsMap))
		for name := range toolsMap {
			allToolNames = append(allToolNames, name)
		}
		sort.Strings(allToolNames)
		if cfg.ToolsetConfigs == nil {
			cfg.ToolsetConfigs = make(ToolsetConfigs)
		}
		cfg.ToolsetConfigs[""] = tools.ToolsetConfig{Name: "", ToolNames: allToolNames}
	}

	// initialize and validate the toolsets from configs
	toolsetsMap := make(map[string]tools.Toolset)
	for name, tc := range cfg.ToolsetConfigs {
		t, err := tc.Initialize(cfg.Version, toolsMap)
		if err != nil {
			return nil, fmt.Errorf("unable to initialize toolset %q: %w", name, err)
		}
		toolsetsMap[name] = t
	}
	l.InfoContext(ctx, "initialized %d toolsets", len(toolsetsMap))

	sLogLevel, err := log.SeverityToLevel(cfg.LogLevel.String())
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	requestLogger := httplog.NewLogger("agentspace-neo4j", httplog.Options{
		JSON:           cfg.LoggingFormat.String() == "json",
		LogLevel:       sLogLevel,
		Concise:        true,
		RequestHeaders: false,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(requestLogger))
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Agentspace Neo4j assistant core is running"))
	})

	s := &Server{
		version:         cfg.Version,
		root:            r,
		logger:          l,
		instrumentation: instrumentation,
		intent:          intent.NewClassifier(),
		sources:         sourcesMap,
		tools:           toolsMap,
		toolsets:        toolsetsMap,
		conf:            cfg,
	}
	r.Mount("/api", apiRouter(s))

	baseCtx := util.WithLogger(context.Background(), l)
	s.srv = &http.Server{
		Handler: r,
		BaseContext: func(net.Listener) context.Context {
			return baseCtx
		},
	}
	return s, nil
}

// Listen starts a listener for the given Server instance.
func (s *Server) Listen(ctx context.Context) error {
	if s.listener != nil {
		return fmt.Errorf("server is already listening: %s", s.listener.Addr().String())
	}
	addr := net.JoinHostPort(s.conf.Address, strconv.Itoa(s.conf.Port))
	lc := net.ListenConfig{KeepAlive: 30 * time.Second}
	var err error
	if s.listener, err = lc.Listen(ctx, "tcp", addr); err != nil {
		return fmt.Errorf("failed to open listener for %q: %w", addr, err)
	}
	s.logger.InfoContext(ctx, "server listening on %s", s.listener.Addr().String())
	return nil
}

// Serve starts an HTTP server for the given Server instance.
func (s *Server) Serve(ctx context.Context) error {
	return s.srv.Serve(s.listener)
}

// Shutdown gracefully shuts down the server without interrupting any
// active connections.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
