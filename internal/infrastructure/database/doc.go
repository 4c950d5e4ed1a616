// Package database manages the SQLite credential store connection.
//
// It wraps database/sql with CampusGate-specific lifecycle management:
// WAL mode, restricted file permissions, embedded schema migrations, and
// health checks. All session/revocation state lives in the session store,
// not here; this database is the durable system-of-record for users, roles,
// tasks, machines, and the audit trail.
package database
