// Package app is the application layer. It orchestrates the provider connect flow,
// account/location listing, review sync, and the reply publish workflow.
package app
