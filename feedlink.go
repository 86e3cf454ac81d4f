// Package feedlink drives a bank feed onboarding wizard against an
// external accounting aggregator API
package feedlink

// Name is the service name reported in structured logs
const Name = "feedlink"

// Version is overridden at link time
var Version = "dev"
