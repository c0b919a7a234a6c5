// Package simparams loads and validates the §6 configuration surface
// for a simulation run: node count, timing parameters, the simulation
// area and mobility model, and the routing protocol selection.
package simparams
