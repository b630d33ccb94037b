// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm provides language-model completion clients for Spyglass.
//
// The discovery pipeline needs exactly two narrowly-scoped prompts (exact-match
// classification and SQL synthesis), so the surface here is deliberately small:
// a single-turn Completer capability plus an OpenAI-backed implementation
// using raw net/http.
package llm

import (
	"context"
)

// Message is a single turn in a chat conversation.
//
// Role is one of "system", "user", or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer is the minimal LLM capability used by the discovery pipeline.
//
// Description:
//
//	The classifier and synthesizer each send one system instruction and one
//	user message and read back free text. Keeping the interface this narrow
//	lets tests swap in a deterministic stub without any HTTP machinery.
//
// Thread Safety: Implementations must be safe for concurrent use.
type Completer interface {
	// Complete sends a single-turn prompt and returns the model's text reply.
	//
	// Inputs:
	//   - ctx: Context for cancellation and timeout.
	//   - systemPrompt: The system instruction.
	//   - userPrompt: The user message.
	//
	// Outputs:
	//   - string: The assistant's response text.
	//   - error: Non-nil on transport or API failure.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
