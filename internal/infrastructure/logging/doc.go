// Package logging provides structured logging for CampusGate, built on
// log/slog with service-wide default attributes and config-driven level,
// format, and output selection.
package logging
