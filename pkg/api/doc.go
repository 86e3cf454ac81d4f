// Package api defines the shared data types of the onboarding wizard
//
// This package contains step descriptors, call specifications, call records,
// wizard state snapshots, and the HTTP and WebSocket messages exchanged with
// clients of the service
package api
