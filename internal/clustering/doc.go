// Package clustering implements the per-node ECS clustering state
// machine: role transitions, the randomized election standoff, the
// information/neighbor tables, and the periodic hello/scan/resign
// timers that keep them fresh.
//
// The state machine never touches a socket or a timer directly — it is
// driven through the Scheduler and Transport ports so it can run
// against a deterministic fake in tests and against a real adapter in
// production. See internal/eventsched and internal/transport for
// implementations.
package clustering
