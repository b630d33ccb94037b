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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/Spyglass/services/catalog"
)

// ====== Request/Response Types ======

// SearchRequest is the body of POST /v1/spyglass/search.
type SearchRequest struct {
	// Request is the natural-language dataset request.
	Request string `json:"request" binding:"required"`
	// AutoTicket runs the full orchestrated flow with automatic
	// confirmation, filing a ticket when only a proposal was found.
	AutoTicket bool `json:"auto_ticket"`
}

// TicketRequest is the body of POST /v1/spyglass/ticket.
type TicketRequest struct {
	Request string              `json:"request" binding:"required"`
	Tables  []catalog.TableInfo `json:"tables"`
	Query   string              `json:"query"`
}

// TicketResponse carries the filed issue's key and browse URL.
type TicketResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// DatabasesResponse lists the catalog's containers.
type DatabasesResponse struct {
	Databases []catalog.DatabaseEntry `json:"databases"`
	Count     int                     `json:"count"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ====== Handlers ======

// Handlers exposes the boundary operations over Gin.
type Handlers struct {
	service Service
}

// NewHandlers creates Handlers over the given service.
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// HandleSearch handles POST /v1/spyglass/search.
//
// Description:
//
//	Runs discovery for the request. With auto_ticket set, runs the
//	orchestrated flow instead: automatic confirmation, and a ticket is
//	filed when only a proposal was found.
//
// Response:
//
//	200 OK: discovery.Outcome, or orchestrator.RequestOutcome with auto_ticket
//	400 Bad Request: Missing request text
//	503 Service Unavailable: A required client is misconfigured
func (h *Handlers) HandleSearch(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleSearch")

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "request field is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}

	if req.AutoTicket {
		outcome, err := h.service.Orchestrate(c.Request.Context(), req.Request)
		if err != nil {
			logger.Error("Orchestration unavailable", slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Error: err.Error(),
				Code:  "NOT_CONFIGURED",
			})
			return
		}
		c.JSON(http.StatusOK, outcome)
		return
	}

	outcome, err := h.service.Discover(c.Request.Context(), req.Request)
	if err != nil {
		logger.Error("Discovery unavailable", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: err.Error(),
			Code:  "NOT_CONFIGURED",
		})
		return
	}
	logger.Info("Discovery completed", slog.Bool("found", outcome.Found))
	c.JSON(http.StatusOK, outcome)
}

// HandleTicket handles POST /v1/spyglass/ticket.
//
// Description:
//
//	Files a ticket for a pre-built proposal. Callers that already ran
//	discovery pass its candidates and query through unchanged.
//
// Response:
//
//	201 Created: TicketResponse
//	400 Bad Request: Missing request text
//	502 Bad Gateway: Tracker rejected the issue or was unreachable
func (h *Handlers) HandleTicket(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleTicket")

	var req TicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "request field is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}

	key, url, err := h.service.FileTicket(c.Request.Context(), req.Request, req.Tables, req.Query)
	if err != nil {
		logger.Error("Ticket submission failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: err.Error(),
			Code:  "TICKET_SUBMISSION_FAILED",
		})
		return
	}
	logger.Info("Ticket filed", slog.String("key", key))
	c.JSON(http.StatusCreated, TicketResponse{Key: key, URL: url})
}

// HandleDatabases handles GET /v1/spyglass/databases.
//
// Response:
//
//	200 OK: DatabasesResponse
//	502 Bad Gateway: Catalog unreachable or misconfigured
func (h *Handlers) HandleDatabases(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleDatabases")

	databases, err := h.service.ListDatabases(c.Request.Context())
	if err != nil {
		logger.Error("Database listing failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: err.Error(),
			Code:  "CATALOG_UNAVAILABLE",
		})
		return
	}
	c.JSON(http.StatusOK, DatabasesResponse{Databases: databases, Count: len(databases)})
}

// HandleHealth handles GET /v1/spyglass/health.
//
// Response:
//
//	200 OK: HealthReport with all probes passing
//	503 Service Unavailable: HealthReport with at least one failing probe
func (h *Handlers) HandleHealth(c *gin.Context) {
	report := h.service.Health(c.Request.Context())
	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

// getOrCreateRequestID returns the inbound X-Request-ID or mints one.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
