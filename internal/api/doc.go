// Package api implements the HTTP API and WebSocket server for tileboard.
//
// This package provides:
//   - REST endpoints for data point values, their history and the page list
//   - A WebSocket hub that is the Core's view sink: every patch, page,
//     reload and connectivity event is streamed to connected browsers
//   - Bearer token auth with ticket-based WebSocket auth
//   - Middleware stack (request ID, logging, recovery, CORS)
//
// # Event flow
//
// Browsers never compute widget state. The Core renders into its server-side
// document and the hub forwards the resulting patches. Tile clicks travel the
// other way as WebSocket "send" messages or PUT /states/{id} and go through
// the command dispatcher; the resulting value comes back as a patch.
//
// # Security
//
// With security.jwt.secret unset the API is open and every caller acts as
// admin. Otherwise protected routes need an Authorization: Bearer token
// minted with `tileboard token`, and /ws needs a ticket from
// POST /auth/ws-ticket.
package api
