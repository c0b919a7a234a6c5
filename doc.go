// Package ecscluster implements the ECS (Efficient Clustering Scheme)
// distributed clustering algorithm for mobile ad-hoc wireless networks.
//
// Each node runs an independent state machine (internal/clustering) that
// assigns it a role in a self-organizing cluster overlay. Neighbor
// discovery, the wire codec, the event-scheduler contract and the
// statistics subsystem live under internal/; this package holds the
// types shared across the whole module's public surface.
package ecscluster
