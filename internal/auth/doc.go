// Package auth provides CampusGate's identity primitives: the signed token
// codec, password hashing, user and role persistence, role sets, and the
// account policy rules.
//
// The codec is pure: minting and verifying tokens has no side effects and
// consults no storage. Whether a structurally valid token is still *live*
// is the session package's concern.
package auth
