// Package gbp integrates with the Google Business Profile API.
//
// Client covers the OAuth token endpoint (code exchange and refresh-token
// redemption) and the v4 review surface: accounts, locations, paginated
// reviews, and reply publication. Every call runs under an internal timeout
// composed with the caller's context, and non-2xx responses surface as typed
// errors carrying the upstream status.
package gbp
