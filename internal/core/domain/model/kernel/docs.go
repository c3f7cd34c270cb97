// Package kernel provides the identifier value object shared by every aggregate
// in the work order domain.
//
// UUID wraps github.com/google/uuid. Its zero value is meaningful: an aggregate
// whose id is zero has not been persisted yet, and a detached reference carries
// nothing but a non-zero id.
package kernel
