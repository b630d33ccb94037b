// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package spyglass

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/Spyglass/services/catalog"
	"github.com/AleutianAI/Spyglass/services/discovery"
	"github.com/AleutianAI/Spyglass/services/orchestrator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockService implements Service for testing.
type MockService struct {
	discoverFunc    func(ctx context.Context, text string) (discovery.Outcome, error)
	orchestrateFunc func(ctx context.Context, text string) (orchestrator.RequestOutcome, error)
	fileTicketFunc  func(ctx context.Context, text string, tables []catalog.TableInfo, query string) (string, string, error)
	listFunc        func(ctx context.Context) ([]catalog.DatabaseEntry, error)
	healthFunc      func(ctx context.Context) HealthReport
}

func (m *MockService) Discover(ctx context.Context, text string) (discovery.Outcome, error) {
	if m.discoverFunc != nil {
		return m.discoverFunc(ctx, text)
	}
	return discovery.Outcome{Message: "no related datasets found in the catalog"}, nil
}

func (m *MockService) Orchestrate(ctx context.Context, text string) (orchestrator.RequestOutcome, error) {
	if m.orchestrateFunc != nil {
		return m.orchestrateFunc(ctx, text)
	}
	return orchestrator.RequestOutcome{}, nil
}

func (m *MockService) FileTicket(ctx context.Context, text string, tables []catalog.TableInfo, query string) (string, string, error) {
	if m.fileTicketFunc != nil {
		return m.fileTicketFunc(ctx, text, tables, query)
	}
	return "DATA-1", "https://jira.example.com/browse/DATA-1", nil
}

func (m *MockService) ListDatabases(ctx context.Context) ([]catalog.DatabaseEntry, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *MockService) Health(ctx context.Context) HealthReport {
	if m.healthFunc != nil {
		return m.healthFunc(ctx)
	}
	return HealthReport{Healthy: true, Checks: map[string]string{"catalog": "ok", "tracker": "ok"}}
}

func newTestRouter(service Service) *gin.Engine {
	router := gin.New()
	v1 := router.Group("/v1")
	RegisterRoutes(v1, NewHandlers(service))
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleSearch_Discovery(t *testing.T) {
	service := &MockService{
		discoverFunc: func(_ context.Context, text string) (discovery.Outcome, error) {
			if text != "clientes" {
				t.Errorf("unexpected request text %q", text)
			}
			return discovery.Outcome{
				Found:      true,
				ExactMatch: &catalog.TableInfo{Name: "clientes", Database: "ventas"},
				Message:    "exact match: clientes",
			}, nil
		},
	}
	router := newTestRouter(service)

	w := postJSON(t, router, "/v1/spyglass/search", SearchRequest{Request: "clientes"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var outcome discovery.Outcome
	if err := json.Unmarshal(w.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !outcome.Found || outcome.ExactMatch == nil || outcome.ExactMatch.Name != "clientes" {
		t.Errorf("unexpected outcome %+v", outcome)
	}
}

func TestHandleSearch_AutoTicket(t *testing.T) {
	orchestrated := false
	service := &MockService{
		orchestrateFunc: func(_ context.Context, _ string) (orchestrator.RequestOutcome, error) {
			orchestrated = true
			return orchestrator.RequestOutcome{
				Success:       true,
				TicketCreated: true,
				Details:       map[string]any{"ticket_key": "DATA-9"},
			}, nil
		},
	}
	router := newTestRouter(service)

	w := postJSON(t, router, "/v1/spyglass/search", SearchRequest{Request: "ventas", AutoTicket: true})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !orchestrated {
		t.Error("expected auto_ticket to route through the orchestrator")
	}
	var outcome orchestrator.RequestOutcome
	if err := json.Unmarshal(w.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !outcome.TicketCreated || outcome.Details["ticket_key"] != "DATA-9" {
		t.Errorf("unexpected outcome %+v", outcome)
	}
}

func TestHandleSearch_MissingRequest(t *testing.T) {
	router := newTestRouter(&MockService{})

	w := postJSON(t, router, "/v1/spyglass/search", map[string]any{})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Code != "MISSING_PARAMETER" {
		t.Errorf("unexpected error code %q", resp.Code)
	}
}

func TestHandleSearch_NotConfigured(t *testing.T) {
	service := &MockService{
		discoverFunc: func(_ context.Context, _ string) (discovery.Outcome, error) {
			return discovery.Outcome{}, errors.New("catalog: missing OPENMETADATA_URL")
		},
	}
	router := newTestRouter(service)

	w := postJSON(t, router, "/v1/spyglass/search", SearchRequest{Request: "clientes"})

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestHandleTicket_Success(t *testing.T) {
	var gotTables []catalog.TableInfo
	service := &MockService{
		fileTicketFunc: func(_ context.Context, text string, tables []catalog.TableInfo, query string) (string, string, error) {
			gotTables = tables
			return "DATA-42", "https://jira.example.com/browse/DATA-42", nil
		},
	}
	router := newTestRouter(service)

	w := postJSON(t, router, "/v1/spyglass/ticket", TicketRequest{
		Request: "ventas por region",
		Tables:  []catalog.TableInfo{{Name: "fact_ventas"}},
		Query:   "SELECT 1",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp TicketResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Key != "DATA-42" {
		t.Errorf("unexpected key %q", resp.Key)
	}
	if len(gotTables) != 1 || gotTables[0].Name != "fact_ventas" {
		t.Errorf("candidates not passed through: %+v", gotTables)
	}
}

func TestHandleTicket_SubmissionFailure(t *testing.T) {
	service := &MockService{
		fileTicketFunc: func(_ context.Context, _ string, _ []catalog.TableInfo, _ string) (string, string, error) {
			return "", "", errors.New("tracker: issue rejected with status 400")
		},
	}
	router := newTestRouter(service)

	w := postJSON(t, router, "/v1/spyglass/ticket", TicketRequest{Request: "ventas"})

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Code != "TICKET_SUBMISSION_FAILED" {
		t.Errorf("unexpected error code %q", resp.Code)
	}
}

func TestHandleDatabases(t *testing.T) {
	service := &MockService{
		listFunc: func(_ context.Context) ([]catalog.DatabaseEntry, error) {
			return []catalog.DatabaseEntry{
				{Name: "ventas"},
				{Name: "rrhh"},
			}, nil
		},
	}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/v1/spyglass/databases", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp DatabasesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 2 || len(resp.Databases) != 2 {
		t.Errorf("unexpected listing %+v", resp)
	}
}

func TestHandleHealth_Degraded(t *testing.T) {
	service := &MockService{
		healthFunc: func(_ context.Context) HealthReport {
			return HealthReport{
				Healthy: false,
				Checks:  map[string]string{"catalog": "ok", "tracker": "tracker: identity probe returned status 401"},
			}
		},
	}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/v1/spyglass/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	router := newTestRouter(&MockService{})

	payload, _ := json.Marshal(SearchRequest{Request: "clientes"})
	req := httptest.NewRequest(http.MethodPost, "/v1/spyglass/search", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "req-abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "req-abc" {
		t.Errorf("expected request ID echoed, got %q", got)
	}
}

func TestRequestIDMinted(t *testing.T) {
	router := newTestRouter(&MockService{})

	w := postJSON(t, router, "/v1/spyglass/search", SearchRequest{Request: "clientes"})

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request ID to be minted")
	}
}
