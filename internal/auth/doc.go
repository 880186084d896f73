// Package auth issues and checks the bearer tokens dashboard clients use.
//
// Tokens are HS256 JWTs minted offline with `tileboard token`. There are no
// user accounts: a token names a client (usually a wall panel) and a role.
//
//   - viewer: read states and pages
//   - panel:  viewer plus writing values and navigating
//   - admin:  panel plus reloading the page configuration
//
// Browsers cannot set headers on a WebSocket upgrade, so a client first
// exchanges its token for a short-lived single-use ticket and passes that in
// the query string.
package auth
