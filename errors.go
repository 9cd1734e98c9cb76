package permflow

import "errors"

var (
	// ErrEngineNotReady is an exported constant or variable used by the permission engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrSessionNotFound is an exported constant or variable used by the permission engine.
	ErrSessionNotFound = errors.New("edit session not found or expired")
	// ErrTargetNotFound is an exported constant or variable used by the permission engine.
	ErrTargetNotFound = errors.New("target not found")
	// ErrForbidden is an exported constant or variable used by the permission engine.
	ErrForbidden = errors.New("forbidden")
	// ErrRateLimited is an exported constant or variable used by the permission engine.
	ErrRateLimited = errors.New("rate limited")
	// ErrConflict is an exported constant or variable used by the permission engine.
	ErrConflict = errors.New("target mutated or deleted concurrently")
	// ErrUndoExpired is an exported constant or variable used by the permission engine.
	ErrUndoExpired = errors.New("undo token expired or already consumed")
	// ErrActorMissing is an exported constant or variable used by the permission engine.
	ErrActorMissing = errors.New("acting agent not attached to context")
	// ErrInvalidMode is an exported constant or variable used by the permission engine.
	ErrInvalidMode = errors.New("invalid mode for this operation")
	// ErrInvalidContext is an exported constant or variable used by the permission engine.
	ErrInvalidContext = errors.New("operation not valid for this catalog context")
	// ErrInvalidSelection is an exported constant or variable used by the permission engine.
	ErrInvalidSelection = errors.New("invalid permission selection")
	// ErrStoreUnavailable is an exported constant or variable used by the permission engine.
	ErrStoreUnavailable = errors.New("backing store unavailable")
	// ErrApplyFailed is an exported constant or variable used by the permission engine.
	ErrApplyFailed = errors.New("apply failed")
)
