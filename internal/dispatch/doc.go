// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package dispatch performs the demo's backend HTTP calls and maps their
// outcome onto request lifecycles.
//
// Every operation issues exactly one request with no retry and no timeout of
// its own. The dispatcher distinguishes "the request did not complete"
// (Network), "the payload could not be produced or parsed" (Decode) and
// "the request completed". It never looks at status codes: a 404 is a
// completed request, and callers decide what it means with CheckStatus.
package dispatch
