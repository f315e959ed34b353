// Package async provides the scheduler environment the runtime's suspending
// operations require. A Context owns task identity, the detached-task
// registry, and the observer; tasks run one goroutine each, with Pending
// covering the interval before a task passes admission (concurrency limiter
// plus cancel-before-dispatch check).
package async
