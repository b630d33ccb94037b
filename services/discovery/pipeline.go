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

	"github.com/AleutianAI/Spyglass/services/catalog"
	"github.com/AleutianAI/Spyglass/services/llm"
)

// Searcher is the catalog capability the pipeline depends on.
//
// catalog.Client satisfies it; tests substitute a canned implementation.
type Searcher interface {
	Search(ctx context.Context, keywords []string, databaseFilter string) []catalog.RawRecord
}

// Outcome is the result of one discovery run.
//
// Invariants:
//   - ExactMatch is non-nil only when Found is true.
//   - RelatedTables is empty when Found is true.
//   - GeneratedQuery is non-empty only when Found is false and
//     RelatedTables is non-empty.
type Outcome struct {
	Found          bool                `json:"found"`
	ExactMatch     *catalog.TableInfo  `json:"exact_match,omitempty"`
	RelatedTables  []catalog.TableInfo `json:"related_tables,omitempty"`
	GeneratedQuery string              `json:"generated_query,omitempty"`
	Message        string              `json:"message"`
}

// Pipeline composes extraction, search, normalization, classification, and
// synthesis into the single Discover operation.
//
// Description:
//
//	The pipeline is the only place where the discovery stages meet. No step
//	raises past Discover: external failures are absorbed by the catalog
//	client, classification ambiguity degrades to "no exact match", and any
//	remaining internal failure (including a panic) is converted into a
//	found=false outcome with a "search error" message.
//
// Thread Safety: Pipeline is safe for concurrent use; per-request state
// lives entirely on the stack.
type Pipeline struct {
	searcher    Searcher
	classifier  *Classifier
	synthesizer *Synthesizer
	logger      *slog.Logger
}

// NewPipeline wires a discovery pipeline from its collaborators.
//
// Inputs:
//   - searcher: Catalog search client. Must not be nil.
//   - completer: LLM capability shared by classifier and synthesizer.
//
// Outputs:
//   - *Pipeline: The composed pipeline.
func NewPipeline(searcher Searcher, completer llm.Completer) *Pipeline {
	return &Pipeline{
		searcher:    searcher,
		classifier:  NewClassifier(completer),
		synthesizer: NewSynthesizer(completer),
		logger:      slog.Default(),
	}
}

// Discover locates an exact dataset for the request or proposes related ones.
//
// Description:
//
//	1. Extract keywords and an optional database filter.
//	2. Search the catalog (two-tier, filter-degrading).
//	3. Normalize raw records into canonical descriptors.
//	4. Ask the classifier for an exact match.
//	5. On a match: return it. Otherwise: synthesize a SQL proposal over the
//	   related candidates.
//
// Inputs:
//   - ctx: Context for cancellation and timeout of the external calls.
//   - requestText: The user's natural-language request.
//
// Outputs:
//   - Outcome: Always a well-formed outcome; never an error.
//
// Thread Safety: Safe for concurrent use.
func (p *Pipeline) Discover(ctx context.Context, requestText string) (outcome Outcome) {
	ctx, span := tracer.Start(ctx, "discovery.Discover")
	defer span.End()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Discovery panicked", slog.Any("panic", r))
			outcome = searchErrorOutcome(fmt.Errorf("internal failure: %v", r))
		}
		discoveryLatency.Observe(time.Since(start).Seconds())
		span.SetAttributes(attribute.Bool("discovery.found", outcome.Found))
	}()

	p.logger.Info("Discovering datasets", slog.String("request", truncate(requestText, 200)))

	keywords, databaseFilter := Extract(requestText)
	p.logger.Info("Extracted search terms",
		slog.String("keywords", strings.Join(keywords, ", ")),
		slog.String("database_filter", databaseFilter),
	)

	records := p.searcher.Search(ctx, keywords, databaseFilter)
	if len(records) == 0 {
		discoveryTotal.WithLabelValues("none").Inc()
		return Outcome{
			Found:   false,
			Message: "no related datasets found in the catalog",
		}
	}

	tables := catalog.Normalize(records)

	match, err := p.classifier.Classify(ctx, requestText, tables)
	if err != nil {
		discoveryTotal.WithLabelValues("error").Inc()
		return searchErrorOutcome(err)
	}

	if match != nil {
		p.logger.Info("Exact match found", slog.String("table", match.Name))
		discoveryTotal.WithLabelValues("exact").Inc()
		return Outcome{
			Found:      true,
			ExactMatch: match,
			Message:    fmt.Sprintf("exact match: %s", match.Name),
		}
	}

	p.logger.Info("No exact match, synthesizing SQL proposal",
		slog.Int("candidates", len(tables)))

	query, err := p.synthesizer.Synthesize(ctx, requestText, tables)
	if err != nil {
		discoveryTotal.WithLabelValues("error").Inc()
		return searchErrorOutcome(err)
	}

	discoveryTotal.WithLabelValues("proposal").Inc()
	return Outcome{
		Found:          false,
		RelatedTables:  tables,
		GeneratedQuery: query,
		Message:        "no exact match; proposal generated from related datasets",
	}
}

// searchErrorOutcome wraps an internal failure into the degraded outcome the
// caller sees instead of an error.
func searchErrorOutcome(err error) Outcome {
	return Outcome{
		Found:   false,
		Message: fmt.Sprintf("search error: %s", err),
	}
}
