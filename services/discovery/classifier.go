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

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/Spyglass/services/catalog"
	"github.com/AleutianAI/Spyglass/services/llm"
)

// noMatchSentinel is the literal the model must answer when no candidate
// exactly satisfies the request.
const noMatchSentinel = "NONE"

const classifierSystemPrompt = `You are an expert data analyst.
Determine whether any of the provided tables matches EXACTLY what the user requests.
Answer ONLY with the table name if there is an exact match, or 'NONE' if no table matches exactly.`

// Classifier asks the LLM whether any candidate exactly satisfies a request.
//
// This is a best-effort heuristic layered on a free-text generative API:
// false negatives and coincidental-substring false positives are accepted
// failure modes, not defects.
//
// Thread Safety: Classifier is safe for concurrent use.
type Classifier struct {
	completer llm.Completer
	logger    *slog.Logger
}

// NewClassifier creates a Classifier backed by the given completer.
func NewClassifier(completer llm.Completer) *Classifier {
	return &Classifier{
		completer: completer,
		logger:    slog.Default(),
	}
}

// Classify returns the candidate that exactly matches the request, if any.
//
// Description:
//
//	Returns nil immediately for an empty candidate list, without calling the
//	model. Otherwise sends a single-turn prompt listing each candidate as
//	"name (database): description" and parses the reply: the literal NONE
//	(case-insensitive, trimmed) means no match; otherwise the first
//	candidate whose name appears case-insensitively in the reply wins. A
//	reply naming no known candidate degrades to "no match" rather than an
//	error.
//
// Inputs:
//   - ctx: Context for cancellation and timeout.
//   - requestText: The user's natural-language request.
//   - tables: Normalized candidates from the catalog search.
//
// Outputs:
//   - *catalog.TableInfo: The matching candidate, or nil.
//   - error: Non-nil only on model transport failure.
func (c *Classifier) Classify(ctx context.Context, requestText string, tables []catalog.TableInfo) (*catalog.TableInfo, error) {
	if len(tables) == 0 {
		return nil, nil
	}

	ctx, span := tracer.Start(ctx, "discovery.Classify")
	defer span.End()
	span.SetAttributes(attribute.Int("discovery.candidates", len(tables)))

	var sb strings.Builder
	for _, t := range tables {
		fmt.Fprintf(&sb, "- %s (%s): %s\n", t.Name, t.Database, t.Description)
	}

	userPrompt := fmt.Sprintf(`User request: %s

Available tables:
%s
Does any table match the request EXACTLY? Answer only with the table name or 'NONE'.`, requestText, sb.String())

	start := time.Now()
	response, err := c.completer.Complete(ctx, classifierSystemPrompt, userPrompt)
	llmCallLatency.WithLabelValues("classify").Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		llmCallTotal.WithLabelValues("classify", "error").Inc()
		return nil, fmt.Errorf("discovery: classification call: %w", err)
	}

	answer := strings.TrimSpace(response)
	if strings.EqualFold(answer, noMatchSentinel) {
		llmCallTotal.WithLabelValues("classify", "no_match").Inc()
		return nil, nil
	}

	answerLower := strings.ToLower(answer)
	for i := range tables {
		if strings.Contains(answerLower, strings.ToLower(tables[i].Name)) {
			llmCallTotal.WithLabelValues("classify", "match").Inc()
			span.SetAttributes(attribute.String("discovery.exact_match", tables[i].Name))
			return &tables[i], nil
		}
	}

	// The model named something we never offered. Treat as no match.
	llmCallTotal.WithLabelValues("classify", "ambiguous").Inc()
	c.logger.Warn("Classifier response named no known candidate",
		slog.String("response_preview", truncate(answer, 120)),
	)
	return nil, nil
}

// truncate shortens s to at most n runes for log previews.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
