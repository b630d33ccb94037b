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

import "strings"

// Confirmer supplies the yes/no decision between discovery and action.
//
// The boundary owns the I/O: a CLI session passes a line-reading
// implementation, a programmatic caller passes AutoConfirmer.
type Confirmer interface {
	// Confirm presents a prompt and reports whether the answer was affirmative.
	Confirm(prompt string) bool
}

// AutoConfirmer answers every prompt affirmatively.
//
// Fully-programmatic callers (the HTTP boundary, batch jobs) use it so
// requests never block waiting for operator input.
type AutoConfirmer struct{}

// Confirm always returns true.
func (AutoConfirmer) Confirm(string) bool { return true }

// affirmatives are the accepted yes answers, matched case-insensitively.
var affirmatives = map[string]bool{
	"sí":  true,
	"si":  true,
	"s":   true,
	"yes": true,
	"y":   true,
}

// IsAffirmative reports whether a raw answer counts as yes.
//
// Description:
//
//	Trims whitespace and lowercases before matching against the accepted
//	literals. Anything else, including an empty answer, is a no.
func IsAffirmative(answer string) bool {
	return affirmatives[strings.ToLower(strings.TrimSpace(answer))]
}
