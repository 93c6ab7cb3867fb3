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

package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/NOGIT007/Agentspace-neo4j/internal/util"
)

// apiRouter creates a router that represents the routes under /api
func apiRouter(s *Server) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.StripSlashes)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/toolset", func(w http.ResponseWriter, r *http.Request) { toolsetHandler(s, w, r) })
	r.Get("/toolset/{toolsetName}", func(w http.ResponseWriter, r *http.Request) { toolsetHandler(s, w, r) })

	r.Route("/tool/{toolName}", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/invoke", func(w http.ResponseWriter, r *http.Request) { toolInvokeHandler(s, w, r) })
	})

	r.Route("/preflight", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/", func(w http.ResponseWriter, r *http.Request) { preflightHandler(s, w, r) })
	})

	return r
}

// toolsetHandler handles the request for information about a Toolset.
func toolsetHandler(s *Server, w http.ResponseWriter, r *http.Request) {
	ctx, span := s.instrumentation.Tracer.Start(r.Context(), "agentspace-neo4j/server/toolset/get")
	r = r.WithContext(ctx)

	toolsetName := chi.URLParam(r, "toolsetName")
	s.logger.DebugContext(ctx, "toolset name: %s", toolsetName)
	span.SetAttributes(attribute.String("toolset_name", toolsetName))
	var err error
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		status := "success"
		if err != nil {
			status = "error"
		}
		s.instrumentation.ToolsetGet.Add(
			r.Context(),
			1,
			metric.WithAttributes(attribute.String("agentspace.toolset.name", toolsetName)),
			metric.WithAttributes(attribute.String("agentspace.operation.status", status)),
		)
	}()

	toolset, ok := s.toolsets[toolsetName]
	if !ok {
		err = fmt.Errorf("toolset %q does not exist", toolsetName)
		s.logger.DebugContext(ctx, err.Error())
		_ = render.Render(w, r, newErrResponse(err, http.StatusNotFound))
		return
	}
	render.JSON(w, r, toolset.Manifest)
}

// toolInvokeHandler handles the API request to invoke a specific Tool.
func toolInvokeHandler(s *Server, w http.ResponseWriter, r *http.Request) {
	ctx, span := s.instrumentation.Tracer.Start(r.Context(), "agentspace-neo4j/server/tool/invoke")
	r = r.WithContext(ctx)

	toolName := chi.URLParam(r, "toolName")
	operationID := uuid.New().String()
	s.logger.DebugContext(ctx, "invocation %s for tool %q", operationID, toolName)
	span.SetAttributes(
		attribute.String("tool_name", toolName),
		attribute.String("operation_id", operationID),
	)
	var err error
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		status := "success"
		if err != nil {
			status = "error"
		}
		s.instrumentation.ToolInvoke.Add(
			r.Context(),
			1,
			metric.WithAttributes(attribute.String("agentspace.tool.name", toolName)),
			metric.WithAttributes(attribute.String("agentspace.operation.status", status)),
		)
	}()

	tool, ok := s.tools[toolName]
	if !ok {
		err = fmt.Errorf("tool %q does not exist", toolName)
		s.logger.DebugContext(ctx, err.Error())
		_ = render.Render(w, r, newErrResponse(err, http.StatusNotFound))
		return
	}

	var data map[string]any
	if err = util.DecodeJSON(r.Body, &data); err != nil {
		err = fmt.Errorf("request body was invalid JSON: %w", err)
		s.logger.DebugContext(ctx, err.Error())
		_ = render.Render(w, r, newErrResponse(err, http.StatusBadRequest))
		return
	}

	if data == nil {
		data = make(map[string]any)
	}
	// json.Number values survive as typed ints and floats
	if _, err = util.ConvertNumbers(data); err != nil {
		err = fmt.Errorf("unable to convert request parameters: %w", err)
		s.logger.DebugContext(ctx, err.Error())
		_ = render.Render(w, r, newErrResponse(err, http.StatusBadRequest))
		return
	}

	params, err := tool.ParseParams(data)
	if err != nil {
		err = fmt.Errorf("provided parameters were invalid: %w", err)
		s.logger.DebugContext(ctx, err.Error())
		_ = render.Render(w, r, newErrResponse(err, http.StatusBadRequest))
		return
	}
	s.logger.DebugContext(ctx, "invocation %s params: %v", operationID, params)

	result, err := tool.Invoke(ctx, params)
	if err != nil {
		err = fmt.Errorf("error while invoking tool: %w", err)
		s.logger.ErrorContext(ctx, err.Error())
		_ = render.Render(w, r, newErrResponse(err, http.StatusInternalServerError))
		return
	}

	render.JSON(w, r, map[string]any{"operation_id": operationID, "result": result})
}
