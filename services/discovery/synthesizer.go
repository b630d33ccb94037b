// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/Spyglass/services/catalog"
	"github.com/AleutianAI/Spyglass/services/llm"
)

const (
	// maxSchemaTables bounds how many candidate schemas go into the prompt.
	maxSchemaTables = 5
	// maxSchemaColumns bounds columns per table in the schema excerpt.
	maxSchemaColumns = 10
)

const synthesizerSystemPrompt = `You are an expert in SQL and data analysis.
Generate an optimal, efficient SQL query that fulfills the user's request using
only the tables and columns provided.

Rules:
1. Use appropriate JOINs where needed
2. Include comments in the SQL explaining the logic
3. Use clear column names in the SELECT
4. Optimize for performance
5. The query must be executable

Answer ONLY with the SQL code, no additional explanations.`

// Synthesizer asks the LLM for a SQL statement over the candidate schemas.
//
// Thread Safety: Synthesizer is safe for concurrent use.
type Synthesizer struct {
	completer llm.Completer
	logger    *slog.Logger
}

// NewSynthesizer creates a Synthesizer backed by the given completer.
func NewSynthesizer(completer llm.Completer) *Synthesizer {
	return &Synthesizer{
		completer: completer,
		logger:    slog.Default(),
	}
}

// Synthesize produces a SQL proposal from the request and candidate schemas.
//
// Description:
//
//	Builds a schema excerpt for at most the first five candidates with at
//	most ten columns each, asks the model for an executable statement, and
//	strips a surrounding fenced code block if present. No SQL validation is
//	performed here; the output is a proposal for a human reviewer.
//
// Inputs:
//   - ctx: Context for cancellation and timeout.
//   - requestText: The user's natural-language request.
//   - tables: Normalized candidates. Must be non-empty (the pipeline only
//     calls Synthesize when classification found no exact match).
//
// Outputs:
//   - string: The SQL text, fences removed.
//   - error: Non-nil on model transport failure.
func (s *Synthesizer) Synthesize(ctx context.Context, requestText string, tables []catalog.TableInfo) (string, error) {
	ctx, span := tracer.Start(ctx, "discovery.Synthesize")
	defer span.End()

	var schema strings.Builder
	for i, t := range tables {
		if i == maxSchemaTables {
			break
		}
		fmt.Fprintf(&schema, "\nTable: %s.%s\n", t.Database, t.Name)
		fmt.Fprintf(&schema, "Description: %s\n", t.Description)
		schema.WriteString("Columns:\n")
		for j, col := range t.Columns {
			if j == maxSchemaColumns {
				break
			}
			desc := col.Description
			if desc == "" {
				desc = "N/A"
			}
			fmt.Fprintf(&schema, "  - %s (%s): %s\n", col.Name, col.DataType, desc)
		}
		schema.WriteString("\n")
	}

	userPrompt := fmt.Sprintf(`User request: %s

Available table schemas:
%s
Generate the SQL query:`, requestText, schema.String())

	start := time.Now()
	response, err := s.completer.Complete(ctx, synthesizerSystemPrompt, userPrompt)
	llmCallLatency.WithLabelValues("synthesize").Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		llmCallTotal.WithLabelValues("synthesize", "error").Inc()
		return "", fmt.Errorf("discovery: synthesis call: %w", err)
	}
	llmCallTotal.WithLabelValues("synthesize", "ok").Inc()

	query := StripSQLFences(response)
	s.logger.Debug("Generated SQL proposal", slog.Int("length", len(query)))
	return query, nil
}

// StripSQLFences removes a surrounding markdown code fence from a model reply.
//
// Description:
//
//	Models frequently wrap SQL in a fenced block even when told not to.
//	When the trimmed reply opens with a fence line (``` or ```sql) and
//	closes with a fence line, both marker lines are removed and the interior
//	is returned verbatim. Anything else passes through unchanged apart from
//	outer whitespace trimming.
func StripSQLFences(response string) string {
	trimmed := strings.TrimSpace(response)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}

	last := len(lines) - 1
	if strings.TrimSpace(lines[last]) != "```" {
		return trimmed
	}

	return strings.Join(lines[1:last], "\n")
}
