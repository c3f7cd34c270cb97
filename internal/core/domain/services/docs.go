// Package services provides domain services that do not belong to a single
// aggregate.
//
// The package includes:
//   - NumberAssigner: gives a newly saved work order its id and human-facing number
package services
