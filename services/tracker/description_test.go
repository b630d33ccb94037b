// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tracker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/AleutianAI/Spyglass/services/catalog"
)

func TestBuildDescription_Structure(t *testing.T) {
	tables := []catalog.TableInfo{
		{
			Name:        "dim_clientes",
			Database:    "ventas",
			Description: "Dimensión de clientes",
			Columns: []catalog.ColumnInfo{
				{Name: "id_cliente", DataType: "BIGINT"},
				{Name: "nombre", DataType: "VARCHAR"},
			},
		},
	}
	query := "SELECT id_cliente, nombre FROM ventas.dim_clientes"

	body := BuildDescription("quiero una tabla de clientes", tables, query)

	for _, want := range []string{
		"h2. Solicitud del Usuario",
		"quiero una tabla de clientes",
		"h2. Tablas Relacionadas Encontradas",
		"h3. dim_clientes",
		"* *Base de datos:* ventas",
		"* *Descripción:* Dimensión de clientes",
		"* *Columnas principales:* id_cliente, nombre",
		"h2. Query SQL Propuesta",
		"{code:sql}\nSELECT id_cliente, nombre FROM ventas.dim_clientes\n{code}",
		"h2. Próximos Pasos",
		"# Revisar la query propuesta",
		"_Ticket generado automáticamente por Spyglass_",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("description missing %q", want)
		}
	}
}

func TestBuildDescription_EmptyInputs(t *testing.T) {
	body := BuildDescription("", nil, "")

	if !strings.Contains(body, "h2. Tablas Relacionadas Encontradas") {
		t.Error("expected section heading even with no tables")
	}
	if !strings.Contains(body, "{code:sql}\n\n{code}") {
		t.Error("expected empty code block for empty query")
	}
	if strings.Contains(body, "h3.") {
		t.Error("expected no candidate subsections")
	}
}

func TestBuildDescription_CapsTablesAndColumns(t *testing.T) {
	tables := make([]catalog.TableInfo, 7)
	for i := range tables {
		cols := make([]catalog.ColumnInfo, 8)
		for j := range cols {
			cols[j] = catalog.ColumnInfo{Name: fmt.Sprintf("col_%d_%d", i, j)}
		}
		tables[i] = catalog.TableInfo{Name: fmt.Sprintf("table_%d", i), Columns: cols}
	}

	body := BuildDescription("request", tables, "SELECT 1")

	if !strings.Contains(body, "h3. table_4") {
		t.Error("expected fifth candidate to be rendered")
	}
	if strings.Contains(body, "h3. table_5") {
		t.Error("expected sixth candidate to be dropped")
	}
	if !strings.Contains(body, "col_0_4") {
		t.Error("expected fifth column to be listed")
	}
	if strings.Contains(body, "col_0_5") {
		t.Error("expected sixth column to be dropped")
	}
}

func TestBuildDescription_Deterministic(t *testing.T) {
	tables := []catalog.TableInfo{{Name: "t", Database: "db"}}
	a := BuildDescription("req", tables, "SELECT 1")
	b := BuildDescription("req", tables, "SELECT 1")
	if a != b {
		t.Error("expected identical output for identical inputs")
	}
}
