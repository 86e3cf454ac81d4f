// Package server implements the HTTP surface of the onboarding wizard
//
// This package provides REST endpoints for driving wizard steps, the routing
// boundary that seeds the redirect target, the final handoff redirect, and a
// WebSocket stream of wizard state
package server
