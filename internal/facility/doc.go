// Package facility holds the campus domain data the gateway serves
// directly: areas, the machines installed in them, and per-user tasks.
package facility
