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
	"strings"

	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/NOGIT007/Agentspace-neo4j/internal/intent"
	"github.com/NOGIT007/Agentspace-neo4j/internal/util"
)

type preflightRequest struct {
	Message string `json:"message"`
}

type preflightResponse struct {
	Intercepted bool   `json:"intercepted"`
	Reply       string `json:"reply,omitempty"`
}

// preflightHandler screens a user message for destructive intent before
// it reaches any language model. Intercepted messages get a fixed
// security reply; everything else passes through untouched.
func preflightHandler(s *Server, w http.ResponseWriter, r *http.Request) {
	ctx, span := s.instrumentation.Tracer.Start(r.Context(), "agentspace-neo4j/server/preflight/check")
	r = r.WithContext(ctx)

	var intercepted bool
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
		s.instrumentation.PreflightCheck.Add(
			r.Context(),
			1,
			metric.WithAttributes(attribute.Bool("agentspace.preflight.intercepted", intercepted)),
			metric.WithAttributes(attribute.String("agentspace.operation.status", status)),
		)
	}()

	var req preflightRequest
	if err = util.DecodeJSON(r.Body, &req); err != nil {
		err = fmt.Errorf("request body was invalid JSON: %w", err)
		s.logger.DebugContext(ctx, err.Error())
		_ = render.Render(w, r, newErrResponse(err, http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		err = fmt.Errorf("missing 'message' field")
		s.logger.DebugContext(ctx, err.Error())
		_ = render.Render(w, r, newErrResponse(err, http.StatusBadRequest))
		return
	}

	verdict := s.intent.Classify(req.Message)
	if !verdict.Destructive {
		render.JSON(w, r, preflightResponse{Intercepted: false})
		return
	}

	intercepted = true
	span.SetAttributes(attribute.Bool("intercepted", true))
	s.logger.InfoContext(ctx, "preflight intercepted destructive message")
	render.JSON(w, r, preflightResponse{
		Intercepted: true,
		Reply:       intent.SecurityMessage(verdict.Suggestion),
	})
}
