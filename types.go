package permflow

import (
	"context"

	"github.com/MrEthical07/permflow/catalog"
)

// Mode defines a public type used by permflow APIs.
//
// Mode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Mode uint8

const (
	// ModeAdd is an exported constant or variable used by the permission engine.
	ModeAdd Mode = iota + 1
	// ModeRemove is an exported constant or variable used by the permission engine.
	ModeRemove
	// ModeReset is an exported constant or variable used by the permission engine.
	ModeReset
	// ModeShow is an exported constant or variable used by the permission engine.
	ModeShow
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m Mode) String() string {
	switch m {
	case ModeAdd:
		return "add"
	case ModeRemove:
		return "remove"
	case ModeReset:
		return "reset"
	case ModeShow:
		return "show"
	default:
		return "unknown"
	}
}

func (m Mode) valid() bool {
	return m >= ModeAdd && m <= ModeShow
}

// FlowState defines a public type used by permflow APIs.
//
// FlowState instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type FlowState string

const (
	// StateIdle is an exported constant or variable used by the permission engine.
	StateIdle FlowState = "idle"
	// StateTargetSelection is an exported constant or variable used by the permission engine.
	StateTargetSelection FlowState = "target_selection"
	// StatePermissionSelection is an exported constant or variable used by the permission engine.
	StatePermissionSelection FlowState = "permission_selection"
	// StatePreviewDiff is an exported constant or variable used by the permission engine.
	StatePreviewDiff FlowState = "preview_diff"
	// StateApplied is an exported constant or variable used by the permission engine.
	StateApplied FlowState = "applied"
	// StateCancelled is an exported constant or variable used by the permission engine.
	StateCancelled FlowState = "cancelled"
	// StateFailed is an exported constant or variable used by the permission engine.
	StateFailed FlowState = "failed"
)

// Capability names understood by the authorization guard. A platform
// adapter maps its own permission model onto these when implementing
// [Gateway.AgentStanding] and [Gateway.ScopeCapabilities].
const (
	// CapAdministrator is an exported constant or variable used by the permission engine.
	CapAdministrator = "administrator"
	// CapManageSubjects is an exported constant or variable used by the permission engine.
	CapManageSubjects = "manage_subjects"
	// CapManageScopes is an exported constant or variable used by the permission engine.
	CapManageScopes = "manage_scopes"
)

// Standing defines a public type used by permflow APIs.
//
// Standing instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Standing struct {
	Capabilities  map[string]bool
	HierarchyRank int
}

// Has reports whether the standing includes the named capability.
func (s Standing) Has(capability string) bool {
	return s.Capabilities[capability]
}

// OverwriteState is one existing scope overwrite as read from the gateway.
type OverwriteState struct {
	TargetID string
	Allow    catalog.Mask128
	Deny     catalog.Mask128
}

// Gateway defines a public type used by permflow APIs.
//
// Gateway instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// Gateway is the engine's only window onto the external entity system.
// Implementations classify their failures with the package sentinels:
// wrap ErrTargetNotFound when a subject, scope, or overwrite target has
// vanished, ErrForbidden when the platform rejects the write, and
// ErrRateLimited for transient throttling. Reads of current state must
// reflect the latest value, never a cache from flow start.
type Gateway interface {
	// CurrentMask returns the subject's current permission bitmask.
	CurrentMask(ctx context.Context, subjectID string) (catalog.Mask128, error)
	// SetMask replaces the subject's permission bitmask.
	SetMask(ctx context.Context, subjectID string, mask catalog.Mask128) error
	// SubjectRank returns the subject's hierarchy rank.
	SubjectRank(ctx context.Context, subjectID string) (int, error)
	// Overwrite returns the allow/deny pair for the target within the
	// scope. A missing overwrite is zero/zero, not an error.
	Overwrite(ctx context.Context, scopeID, targetID string) (allow, deny catalog.Mask128, err error)
	// Overwrites lists every overwrite currently attached to the scope.
	Overwrites(ctx context.Context, scopeID string) ([]OverwriteState, error)
	// SetOverwrite replaces the allow/deny pair for the target within the
	// scope.
	SetOverwrite(ctx context.Context, scopeID, targetID string, allow, deny catalog.Mask128) error
	// AgentStanding returns the acting agent's guild-wide capabilities and
	// hierarchy rank.
	AgentStanding(ctx context.Context, agentID string) (Standing, error)
	// ScopeCapabilities returns the acting agent's capabilities within one
	// specific scope.
	ScopeCapabilities(ctx context.Context, agentID, scopeID string) (map[string]bool, error)
}

// TargetSelection defines a public type used by permflow APIs.
//
// TargetSelection instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TargetSelection struct {
	Context  catalog.Context
	Mode     Mode
	TargetID string
	ScopeID  string
}

// Diff defines a public type used by permflow APIs.
//
// Diff instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// For the subject context only Before/After are populated; for the scope
// context the four overwrite quadrants are populated instead. Labels are in
// vocabulary order and never include zero-flag placeholder entries.
type Diff struct {
	Mode        Mode
	Context     catalog.Context
	TargetID    string
	ScopeID     string
	AllSelected bool

	Before []string
	After  []string

	BeforeAllow []string
	BeforeDeny  []string
	AfterAllow  []string
	AfterDeny   []string
}

// OverwriteView is the rendered state of one existing overwrite, used by
// the read-only scope listing.
type OverwriteView struct {
	TargetID string
	Allow    []string
	Deny     []string
}

// Result defines a public type used by permflow APIs.
//
// Result instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// Result is the render-agnostic outcome of one workflow event: the state
// the flow is now in plus whatever data the next prompt needs. How it is
// displayed is entirely a presentation-layer concern.
type Result struct {
	State     FlowState
	SessionID string
	UndoID    string
	Mode      Mode
	Context   catalog.Context

	// Pages carries the paginated vocabulary during permission selection.
	Pages [][]catalog.Bit
	// Selected summarizes the session's current selection as labels.
	Selected    []string
	AllSelected bool

	Diff       *Diff
	Overwrites []OverwriteView

	// Reason carries the specific user-facing failure reason, verbatim.
	Reason string
}
