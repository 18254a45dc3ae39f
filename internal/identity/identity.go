// Package identity carries the authenticated caller through service calls.
// Handlers build a Caller from the verified token claims; services never read
// identity from ambient state.
package identity

type Caller struct {
	UserID  int64
	IsAdmin bool
}
