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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all Spyglass routes with the router.
//
// Description:
//
//	Registers all /v1/spyglass/* endpoints with the given Gin router
//	group. The router group should already have any required middleware
//	applied.
//
// Endpoints:
//
//	POST /v1/spyglass/search - Discover datasets for a request
//	POST /v1/spyglass/ticket - File a ticket for a proposal
//	GET  /v1/spyglass/databases - List catalog containers
//	GET  /v1/spyglass/health - Dependency health probes
//
// Example:
//
//	container := spyglass.NewContainer()
//	handlers := spyglass.NewHandlers(spyglass.NewService(container))
//
//	v1 := router.Group("/v1")
//	spyglass.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	sg := rg.Group("/spyglass")
	{
		sg.POST("/search", handlers.HandleSearch)
		sg.POST("/ticket", handlers.HandleTicket)
		sg.GET("/databases", handlers.HandleDatabases)
		sg.GET("/health", handlers.HandleHealth)
	}
}
