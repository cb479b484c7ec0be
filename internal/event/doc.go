// Package event provides the observer boundary for the coordination layer.
// The facade publishes typed events (team created, member spawned, task
// claimed, ...) onto a synchronous bus; observers such as UIs subscribe
// without the stores knowing they exist.
package event
