// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tracker files data-product work items with the issue tracker.
//
// It has two halves: a pure description builder that renders Jira wiki
// markup, and a thin REST client that submits the pre-built issue and
// returns its key.
package tracker

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/Spyglass/services/catalog"
)

const (
	// maxDescriptionTables bounds how many candidates are rendered.
	maxDescriptionTables = 5
	// maxDescriptionColumns bounds the column names listed per candidate.
	maxDescriptionColumns = 5
)

// BuildDescription renders the ticket body in Jira wiki markup.
//
// Description:
//
//	Deterministic, pure template rendering: a heading with the original
//	request, one subsection per candidate (at most five) listing database,
//	description, and up to five column names, a fenced code block with the
//	proposed query verbatim, and a fixed next-steps checklist. Empty
//	candidate lists and an empty query are both valid inputs.
//
// The body is written in Spanish; that is the language of the data teams
// this service files tickets for.
//
// Inputs:
//   - userRequest: The original natural-language request.
//   - relatedTables: Candidates to reference, may be empty.
//   - proposedQuery: SQL proposal to embed verbatim, may be empty.
//
// Outputs:
//   - string: The rendered body. Never fails.
func BuildDescription(userRequest string, relatedTables []catalog.TableInfo, proposedQuery string) string {
	var sb strings.Builder

	sb.WriteString("h2. Solicitud del Usuario\n\n")
	sb.WriteString(userRequest)
	sb.WriteString("\n\nh2. Tablas Relacionadas Encontradas\n\n")

	for i, tbl := range relatedTables {
		if i == maxDescriptionTables {
			break
		}
		columnNames := make([]string, 0, maxDescriptionColumns)
		for j, col := range tbl.Columns {
			if j == maxDescriptionColumns {
				break
			}
			columnNames = append(columnNames, col.Name)
		}

		fmt.Fprintf(&sb, "h3. %s\n", tbl.Name)
		fmt.Fprintf(&sb, "* *Base de datos:* %s\n", tbl.Database)
		fmt.Fprintf(&sb, "* *Descripción:* %s\n", tbl.Description)
		fmt.Fprintf(&sb, "* *Columnas principales:* %s\n\n", strings.Join(columnNames, ", "))
	}

	sb.WriteString("h2. Query SQL Propuesta\n\n")
	sb.WriteString("{code:sql}\n")
	sb.WriteString(proposedQuery)
	sb.WriteString("\n{code}\n\n")

	sb.WriteString("h2. Próximos Pasos\n\n")
	sb.WriteString("# Revisar la query propuesta\n")
	sb.WriteString("# Validar con el equipo de datos\n")
	sb.WriteString("# Crear la tabla/vista en el catálogo\n")
	sb.WriteString("# Notificar al usuario solicitante\n\n")
	sb.WriteString("----\n")
	sb.WriteString("_Ticket generado automáticamente por Spyglass_\n")

	return sb.String()
}
