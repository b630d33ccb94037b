// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/Spyglass/services/catalog"
	"github.com/AleutianAI/Spyglass/services/discovery"
)

// ====== Test Doubles ======

type stubDiscoverer struct {
	outcome discovery.Outcome
	calls   int
}

func (s *stubDiscoverer) Discover(_ context.Context, _ string) discovery.Outcome {
	s.calls++
	return s.outcome
}

type stubFiler struct {
	key   string
	err   error
	calls int

	gotRequest string
	gotTables  []catalog.TableInfo
	gotQuery   string
}

func (s *stubFiler) CreateTicket(_ context.Context, userRequest string, tables []catalog.TableInfo, query string) (string, error) {
	s.calls++
	s.gotRequest = userRequest
	s.gotTables = tables
	s.gotQuery = query
	if s.err != nil {
		return "", s.err
	}
	return s.key, nil
}

type denyConfirmer struct{}

func (denyConfirmer) Confirm(string) bool { return false }

// ====== Tests ======

func TestHandle_ExactMatchAccepted(t *testing.T) {
	disc := &stubDiscoverer{outcome: discovery.Outcome{
		Found:      true,
		ExactMatch: &catalog.TableInfo{Name: "clientes", Database: "ventas"},
		Message:    "exact match: clientes",
	}}
	filer := &stubFiler{key: "DATA-1"}

	outcome := New(disc, filer).Handle(context.Background(), "clientes", AutoConfirmer{})

	assert.True(t, outcome.Success)
	assert.True(t, outcome.DatasetFound)
	assert.False(t, outcome.TicketCreated)
	assert.Equal(t, "clientes", outcome.Details["dataset"])
	assert.Equal(t, 0, filer.calls, "exact match must not file a ticket")
}

func TestHandle_ExactMatchRejected(t *testing.T) {
	disc := &stubDiscoverer{outcome: discovery.Outcome{
		Found:      true,
		ExactMatch: &catalog.TableInfo{Name: "clientes"},
	}}

	outcome := New(disc, &stubFiler{}).Handle(context.Background(), "clientes", denyConfirmer{})

	assert.False(t, outcome.Success)
	assert.True(t, outcome.DatasetFound)
	assert.False(t, outcome.TicketCreated)
	assert.Empty(t, outcome.ErrorMessage)
}

func TestHandle_ProposalTicketed(t *testing.T) {
	tables := []catalog.TableInfo{{Name: "fact_ventas"}, {Name: "dim_region"}}
	disc := &stubDiscoverer{outcome: discovery.Outcome{
		RelatedTables:  tables,
		GeneratedQuery: "SELECT r.nombre FROM dim_region r",
		Message:        "no exact match; proposal generated from related datasets",
	}}
	filer := &stubFiler{key: "DATA-77"}

	outcome := New(disc, filer).Handle(context.Background(), "ventas por region", AutoConfirmer{})

	require.True(t, outcome.Success)
	assert.False(t, outcome.DatasetFound)
	assert.True(t, outcome.TicketCreated)
	assert.Equal(t, "DATA-77", outcome.Details["ticket_key"])
	assert.Equal(t, 1, filer.calls)
	assert.Equal(t, "ventas por region", filer.gotRequest)
	assert.Equal(t, tables, filer.gotTables)
	assert.Equal(t, "SELECT r.nombre FROM dim_region r", filer.gotQuery)
}

func TestHandle_ProposalRejected(t *testing.T) {
	disc := &stubDiscoverer{outcome: discovery.Outcome{
		RelatedTables:  []catalog.TableInfo{{Name: "fact_ventas"}},
		GeneratedQuery: "SELECT 1",
	}}
	filer := &stubFiler{key: "DATA-1"}

	outcome := New(disc, filer).Handle(context.Background(), "ventas", denyConfirmer{})

	assert.False(t, outcome.Success)
	assert.False(t, outcome.TicketCreated)
	assert.Equal(t, 0, filer.calls, "rejected proposal must not file a ticket")
}

func TestHandle_NoResult(t *testing.T) {
	disc := &stubDiscoverer{outcome: discovery.Outcome{
		Message: "no related datasets found in the catalog",
	}}
	filer := &stubFiler{key: "DATA-1"}

	outcome := New(disc, filer).Handle(context.Background(), "xyzzy", AutoConfirmer{})

	assert.False(t, outcome.Success)
	assert.False(t, outcome.DatasetFound)
	assert.False(t, outcome.TicketCreated)
	assert.Equal(t, 0, filer.calls, "no result must never attempt ticket submission")
	assert.Contains(t, outcome.Details["message"], "no related")
}

func TestHandle_TicketSubmissionFailure(t *testing.T) {
	disc := &stubDiscoverer{outcome: discovery.Outcome{
		RelatedTables:  []catalog.TableInfo{{Name: "fact_ventas"}},
		GeneratedQuery: "SELECT 1",
	}}
	filer := &stubFiler{err: errors.New("tracker: issue rejected with status 400")}

	outcome := New(disc, filer).Handle(context.Background(), "ventas", AutoConfirmer{})

	assert.False(t, outcome.Success)
	assert.False(t, outcome.TicketCreated)
	assert.Equal(t, "tracker: issue rejected with status 400", outcome.ErrorMessage)
}

func TestHandle_AutomaticModeDeterministic(t *testing.T) {
	disc := &stubDiscoverer{outcome: discovery.Outcome{
		Found:      true,
		ExactMatch: &catalog.TableInfo{Name: "clientes"},
	}}
	orch := New(disc, &stubFiler{})

	first := orch.Handle(context.Background(), "clientes", AutoConfirmer{})
	second := orch.Handle(context.Background(), "clientes", AutoConfirmer{})

	assert.Equal(t, first, second, "automatic mode must be deterministic for a fixed outcome")
}

func TestHandle_PanicRecovered(t *testing.T) {
	disc := &stubDiscoverer{outcome: discovery.Outcome{
		Found: true,
		// ExactMatch nil while Found is true violates the pipeline's
		// invariant; the orchestrator must still not propagate the panic.
	}}

	var outcome RequestOutcome
	require.NotPanics(t, func() {
		outcome = New(disc, &stubFiler{}).Handle(context.Background(), "clientes", AutoConfirmer{})
	})
	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.ErrorMessage, "internal error")
}

func TestIsAffirmative(t *testing.T) {
	for _, answer := range []string{"sí", "si", "s", "yes", "y", "  SÍ  ", "Yes", "Y"} {
		assert.True(t, IsAffirmative(answer), "expected %q to be affirmative", answer)
	}
	for _, answer := range []string{"", "no", "n", "nope", "yess", "si claro"} {
		assert.False(t, IsAffirmative(answer), "expected %q to be negative", answer)
	}
}
