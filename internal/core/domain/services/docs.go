// Package services contains stateless domain services for the fulfillment
// core. Domain services host logic that operates across an aggregate's parts
// without itself holding state.
//
// The package provides ProgressDeriver, which turns the multiset of a single
// order's task statuses into the order's lifecycle status and picking
// completion percentage. Derivation is pure and side-effect free; callers
// apply its result to the aggregate and persist the outcome.
package services
