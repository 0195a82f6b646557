// Package updatepolicy records a new lending policy snapshot.
//
// Every LendingPolicyUpdated event carries the complete policy, so readers never see a
// partially updated policy.
package updatepolicy
