// Package httpclient is the async HTTP client the device scanning core
// submits eSCL requests through.
//
// Submit never blocks the caller: the round trip runs on its own
// goroutine and the result is delivered through a caller-supplied
// Executor, which the device scanning core sets to its event-loop
// Call so every HTTP completion lands on the same goroutine that runs
// state-machine transitions (see internal/eloop).
package httpclient
