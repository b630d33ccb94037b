// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package orchestrator drives a dataset request from discovery through
// confirmation to ticket submission.
//
// One request is one pass through a small state machine. Discovery
// failures degrade inside the pipeline; the only error this package
// surfaces to callers is a failed ticket submission, reported inside the
// returned outcome rather than as a Go error.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/Spyglass/services/catalog"
	"github.com/AleutianAI/Spyglass/services/discovery"
)

var orchTracer = otel.Tracer("aleutian.spyglass.orchestrator")

// ====== States ======

// State labels one step of a request's lifecycle. States only move
// forward; a terminal state is entered exactly once.
type State string

const (
	StateReceived      State = "RECEIVED"
	StateDiscovering   State = "DISCOVERING"
	StateExactFound    State = "EXACT_FOUND"
	StateProposalFound State = "PROPOSAL_FOUND"
	StateNoResult      State = "NO_RESULT"
	StateConfirming    State = "CONFIRMING"
	StateAccepted      State = "ACCEPTED"
	StateTicketed      State = "TICKETED"
	StateRejected      State = "REJECTED"
	StateDone          State = "DONE"
)

// ====== Outcome ======

// RequestOutcome is the terminal result of one orchestrated request.
//
// Created with all flags false, populated as the machine advances, and
// returned exactly once. Callers must treat it as immutable.
type RequestOutcome struct {
	Success       bool           `json:"success"`
	DatasetFound  bool           `json:"dataset_found"`
	TicketCreated bool           `json:"ticket_created"`
	Details       map[string]any `json:"details,omitempty"`
	ErrorMessage  string         `json:"error_message,omitempty"`
}

// ====== Collaborator Interfaces ======

// Discoverer runs the discovery pipeline for one request.
type Discoverer interface {
	Discover(ctx context.Context, requestText string) discovery.Outcome
}

// TicketFiler submits a work item and returns its key.
type TicketFiler interface {
	CreateTicket(ctx context.Context, userRequest string, relatedTables []catalog.TableInfo, proposedQuery string) (string, error)
}

// ====== Orchestrator ======

// Orchestrator coordinates discovery, confirmation, and ticket filing.
//
// Thread Safety: safe for concurrent use; each Handle call carries its
// own state on the stack.
type Orchestrator struct {
	discoverer Discoverer
	filer      TicketFiler
	logger     *slog.Logger
}

// New creates an Orchestrator over the given collaborators.
func New(discoverer Discoverer, filer TicketFiler) *Orchestrator {
	return &Orchestrator{
		discoverer: discoverer,
		filer:      filer,
		logger:     slog.Default().With(slog.String("component", "orchestrator")),
	}
}

// Handle processes one request end to end.
//
// Description:
//
//	Runs discovery, asks the confirmer whether to act on the result, and
//	files a ticket when a proposal was confirmed. Never panics and never
//	returns a Go error: every failure mode, including ticket rejection,
//	is folded into the returned RequestOutcome.
//
// Inputs:
//   - ctx: Context for the external calls made along the way.
//   - requestText: The natural-language request.
//   - confirmer: Decision source for the confirmation step. Pass
//     AutoConfirmer{} for fully-programmatic flows.
//
// Outputs:
//   - RequestOutcome: Terminal result, populated exactly once.
func (o *Orchestrator) Handle(ctx context.Context, requestText string, confirmer Confirmer) (outcome RequestOutcome) {
	ctx, span := orchTracer.Start(ctx, "orchestrator.handle")
	defer span.End()
	start := time.Now()

	state := StateReceived
	outcome.Details = map[string]any{}

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Request handling panicked",
				slog.String("state", string(state)),
				slog.Any("panic", r),
			)
			outcome = RequestOutcome{
				Details:      map[string]any{"state": string(StateDone)},
				ErrorMessage: fmt.Sprintf("internal error: %v", r),
			}
			requestsTotal.WithLabelValues("panic").Inc()
		}
		span.SetAttributes(
			attribute.Bool("spyglass.success", outcome.Success),
			attribute.Bool("spyglass.ticket_created", outcome.TicketCreated),
		)
		requestLatency.Observe(time.Since(start).Seconds())
	}()

	o.logger.Info("Request received", slog.Int("length", len(requestText)))

	state = o.transition(span, state, StateDiscovering)
	result := o.discoverer.Discover(ctx, requestText)
	outcome.Details["message"] = result.Message

	switch {
	case result.Found:
		state = o.transition(span, state, StateExactFound)
		outcome.DatasetFound = true
		outcome.Details["dataset"] = result.ExactMatch.Name
		outcome.Details["database"] = result.ExactMatch.Database

		state = o.transition(span, state, StateConfirming)
		if confirmer.Confirm(fmt.Sprintf("Dataset %q encontrado. ¿Es el que buscas?", result.ExactMatch.Name)) {
			state = o.transition(span, state, StateAccepted)
			outcome.Success = true
			requestsTotal.WithLabelValues("accepted").Inc()
		} else {
			state = o.transition(span, state, StateRejected)
			requestsTotal.WithLabelValues("rejected").Inc()
		}

	case len(result.RelatedTables) > 0:
		state = o.transition(span, state, StateProposalFound)
		outcome.Details["candidates"] = len(result.RelatedTables)
		outcome.Details["proposed_query"] = result.GeneratedQuery

		state = o.transition(span, state, StateConfirming)
		if confirmer.Confirm("No hay coincidencia exacta. ¿Crear un ticket con la propuesta?") {
			key, err := o.filer.CreateTicket(ctx, requestText, result.RelatedTables, result.GeneratedQuery)
			if err != nil {
				o.logger.Error("Ticket submission failed", slog.String("error", err.Error()))
				outcome.ErrorMessage = err.Error()
				requestsTotal.WithLabelValues("ticket_failed").Inc()
				break
			}
			state = o.transition(span, state, StateTicketed)
			outcome.Success = true
			outcome.TicketCreated = true
			outcome.Details["ticket_key"] = key
			requestsTotal.WithLabelValues("ticketed").Inc()
		} else {
			state = o.transition(span, state, StateRejected)
			requestsTotal.WithLabelValues("rejected").Inc()
		}

	default:
		state = o.transition(span, state, StateNoResult)
		requestsTotal.WithLabelValues("no_result").Inc()
	}

	state = o.transition(span, state, StateDone)
	outcome.Details["state"] = string(state)

	o.logger.Info("Request finished",
		slog.Bool("success", outcome.Success),
		slog.Bool("dataset_found", outcome.DatasetFound),
		slog.Bool("ticket_created", outcome.TicketCreated),
	)
	return outcome
}

// transition records one state change and returns the new state.
func (o *Orchestrator) transition(span trace.Span, from, to State) State {
	o.logger.Debug("State transition",
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)
	span.AddEvent("transition", trace.WithAttributes(
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
	))
	return to
}
