// Package sim drives a full multi-node ECS run on top of
// internal/eventsched and internal/transport: it places nodes in a
// rectangular area, moves them with a random-walk mobility model
// (§6's travellerVelocity/travellerWalkDist/travellerWalkTime/
// travellerWalkMode), derives wifiRadius-based adjacency every tick,
// synthesizes routing-table text in the node's configured format so
// each clustering.Node's NeighborTable sees the same shape of input a
// live AODV/DSDV daemon would produce, and collects the result in
// internal/stats.
package sim
