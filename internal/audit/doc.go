// Package audit records security-relevant events: logins, logouts,
// account changes, and denied requests. Events land in the database and,
// when a broker is configured, are mirrored to MQTT for external
// monitoring. Recording is best-effort and never fails the request that
// triggered it.
package audit
