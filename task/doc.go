// Package task defines the task-side data model of the runtime: the
// write-once cancellation token, terminal task outcomes, and the rules
// for moving values across task boundaries.
package task
