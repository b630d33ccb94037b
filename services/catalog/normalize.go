// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

// defaultDescription is used when a catalog record carries no description.
const defaultDescription = "Sin descripción"

// Normalize maps raw catalog records into canonical TableInfo descriptors.
//
// Description:
//
//	Pure mapping with no failure modes: absent nested fields (missing
//	database object, missing columns array) default to empty strings and
//	empty slices. Order of the input is preserved.
//
// Inputs:
//   - records: Raw search hits or wrapped listing records.
//
// Outputs:
//   - []TableInfo: One descriptor per record, in input order.
func Normalize(records []RawRecord) []TableInfo {
	tables := make([]TableInfo, 0, len(records))
	for _, rec := range records {
		src := rec.Source

		columns := make([]ColumnInfo, 0, len(src.Columns))
		for _, col := range src.Columns {
			columns = append(columns, ColumnInfo{
				Name:        col.Name,
				DataType:    col.DataType,
				Description: col.Description,
			})
		}

		description := src.Description
		if description == "" {
			description = defaultDescription
		}

		tables = append(tables, TableInfo{
			Name:               src.Name,
			Database:           src.Database.Name,
			Description:        description,
			FullyQualifiedName: src.FullyQualifiedName,
			Columns:            columns,
		})
	}
	return tables
}
