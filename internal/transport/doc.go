// Package transport provides the two clustering.Transport
// implementations used by this module: Memory, an in-process H-hop
// flood used by simulations and tests, and UDP, a real broadcast/
// unicast socket transport for live deployments (§6).
package transport
