// Package server exposes the HTTP surface: session-authenticated JSON API
// routes for connecting the provider, listing accounts and locations,
// syncing reviews, and publishing replies, plus health and metrics
// endpoints. It maps structured errors to responses via the errors
// middleware and owns nothing beyond transport concerns.
package server
