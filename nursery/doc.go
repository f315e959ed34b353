// Package nursery provides lexically scoped task groups with a join barrier
// and one of three failure policies, plus the timeout and parallel entry
// points built on the same substrate. No child task outlives the call that
// opened its nursery.
package nursery
