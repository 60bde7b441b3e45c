package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and collaborator clients
// return these (optionally wrapped) so services can translate them into domain
// errors without string matching.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in the store
// - ErrCorrupt: persisted blob failed to decode
// - ErrRateLimited: collaborator rejected the call for quota reasons
// - ErrUnavailable: collaborator or backend temporarily unreachable
// - ErrMalformedResponse: collaborator returned a shape we cannot use
// - ErrBusy: a wizard already has a collaborator request in flight
//
// For validation errors (bad input, blocked transitions), use
// pkg/domain-errors directly.
var (
	ErrNotFound          = errors.New("not found")
	ErrCorrupt           = errors.New("corrupt snapshot")
	ErrRateLimited       = errors.New("rate limited")
	ErrUnavailable       = errors.New("unavailable")
	ErrMalformedResponse = errors.New("malformed response")
	ErrBusy              = errors.New("request already in flight")
)
