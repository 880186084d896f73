// Package panel serves the browser dashboard client.
//
// The client is a small static page embedded into the binary with go:embed.
// It opens the WebSocket, renders the page event it receives and applies
// patch events to it; tile clicks become send messages or page opens. All
// rendering decisions are made server side.
//
// Handler falls back to index.html for unknown paths so a wall panel can be
// pointed at any URL below the root.
package panel
