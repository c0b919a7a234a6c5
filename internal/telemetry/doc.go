// Package telemetry wraps the otel tracer used around clustering
// dispatch and periodic scan, so a deployment can see where a run
// spends its time without the clustering package depending on a
// tracing backend directly.
package telemetry
