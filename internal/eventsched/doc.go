// Package eventsched provides the two clustering.Scheduler
// implementations used by this module: a VirtualScheduler over a
// deterministic, heap-ordered virtual-time Engine for simulation and
// tests, and a RealScheduler backed by time.AfterFunc for live
// deployments.
package eventsched
