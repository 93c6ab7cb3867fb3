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

// Package testutils holds shared helpers for package tests.
package testutils

import (
	"context"
	"os"
	"strings"

	"github.com/NOGIT007/Agentspace-neo4j/internal/log"
	"github.com/NOGIT007/Agentspace-neo4j/internal/util"
)

// FormatYaml normalizes a yaml literal embedded in Go source so it can be
// fed to the config decoder: leading tabs are stripped.
func FormatYaml(in string) []byte {
	in = strings.ReplaceAll(in, "\t", "")
	return []byte(in)
}

// ContextWithNewLogger returns a context carrying a fresh standard logger.
func ContextWithNewLogger() (context.Context, error) {
	ctx := context.Background()
	logger, err := log.NewStdLogger(os.Stdout, os.Stderr, log.Info)
	if err != nil {
		return nil, err
	}
	return util.WithLogger(ctx, logger), nil
}
