// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend is the HTTP client for the journal platform endpoints the
// composer reads from.
//
// # Endpoints
//
//	GET /conversations/{conversationId}  participant directory
//	GET /bots/{agentId}                  agent command schema
//
// # Behaviour
//
//   - Bearer token authentication when a token is configured
//   - X-Request-ID on every request
//   - Client-side rate limiting
//   - Retries with exponential backoff on 5xx and 429
//   - Response bodies are capped at MaxResponseSize
//   - Requests are logged with method, path, status, duration and request
//     id; headers and bodies are never logged
//
// Client implements schema.Fetcher.
package backend
