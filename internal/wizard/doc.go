// Package wizard implements the step orchestrator of the onboarding flow
//
// A Wizard owns a fixed Manifest of steps, the currently open step, the
// completion flag of every step and the mapping of captured values. Each
// step's external call is rendered lazily against the captures produced by
// earlier steps, performed through a client.Client and recorded as the
// step's latest CallRecord
package wizard
