// Package config loads and validates CampusGate configuration.
//
// Configuration comes from a YAML file with environment variable overrides
// (CAMPUSGATE_* prefix) for secrets and deployment-specific values. The
// loaded Config is constructed once at startup and passed explicitly into
// each component; there is no global configuration state.
package config
