package permflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/permflow/catalog"
	"github.com/MrEthical07/permflow/internal/ident"
	"github.com/MrEthical07/permflow/internal/stores"
)

// StartFlow describes the startflow operation and its observable behavior.
//
// StartFlow may return an error when input validation, dependency calls, or security checks fail.
// StartFlow does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// StartFlow opens a new edit dialogue: the operator has picked a catalog
// context and an action mode, and must now choose a target. No session is
// created yet; the flow becomes stateful at [Engine.ChooseTarget].
func (e *Engine) StartFlow(ctx context.Context, c catalog.Context, mode Mode) (*Result, error) {
	if e == nil || e.gateway == nil {
		return nil, ErrEngineNotReady
	}
	if !mode.valid() {
		return nil, ErrInvalidMode
	}

	e.metricInc(MetricFlowStarted)

	return &Result{
		State:   StateTargetSelection,
		Mode:    mode,
		Context: c,
		Pages:   catalog.Partition(c, e.pageSize()),
	}, nil
}

// ChooseTarget describes the choosetarget operation and its observable behavior.
//
// ChooseTarget may return an error when input validation, dependency calls, or security checks fail.
// ChooseTarget does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Mode Show renders the target's current state and terminates without
// creating a session. Mode Reset creates a session and skips straight to
// the preview, since its pending mask is always empty. Add and Remove
// create a session and enter permission selection.
func (e *Engine) ChooseTarget(ctx context.Context, sel TargetSelection) (*Result, error) {
	if e == nil || e.gateway == nil {
		return nil, ErrEngineNotReady
	}
	if !sel.Mode.valid() {
		return nil, ErrInvalidMode
	}
	if sel.Context == catalog.ContextScope && sel.ScopeID == "" {
		return nil, fmt.Errorf("%w: scope context requires a scope id", ErrInvalidContext)
	}
	// Show may omit the overwrite target to list every overwrite on the
	// scope; the editing modes must name the overwrite they operate on.
	if sel.Context == catalog.ContextScope && sel.Mode != ModeShow && sel.TargetID == "" {
		return nil, fmt.Errorf("%w: scope %s requires an overwrite target id", ErrInvalidContext, sel.Mode)
	}
	if sel.Context == catalog.ContextSubject && sel.TargetID == "" {
		return nil, fmt.Errorf("%w: subject context requires a target id", ErrInvalidContext)
	}

	agentID := actorFromContext(ctx)
	if agentID == "" {
		return nil, ErrActorMissing
	}

	if sel.Mode == ModeShow {
		return e.renderShow(ctx, sel)
	}

	sess := &stores.EditSession{
		ID:       ident.NewSessionID(),
		Context:  sel.Context,
		Mode:     uint8(sel.Mode),
		AgentID:  agentID,
		TargetID: sel.TargetID,
		ScopeID:  sel.ScopeID,
		Pages:    make(map[int]stores.PageSelection),
	}
	if err := e.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	e.metricInc(MetricSessionCreated)

	if sel.Mode == ModeReset {
		return e.RequestPreview(ctx, sess.ID)
	}

	return &Result{
		State:     StatePermissionSelection,
		SessionID: sess.ID,
		Mode:      sel.Mode,
		Context:   sel.Context,
		Pages:     catalog.Partition(sel.Context, e.pageSize()),
	}, nil
}

func (e *Engine) renderShow(ctx context.Context, sel TargetSelection) (*Result, error) {
	result := &Result{
		State:   StateIdle,
		Mode:    ModeShow,
		Context: sel.Context,
	}

	switch sel.Context {
	case catalog.ContextSubject:
		mask, err := e.gateway.CurrentMask(ctx, sel.TargetID)
		if err != nil {
			if errors.Is(err, ErrTargetNotFound) {
				return nil, fmt.Errorf("%w: subject %s", ErrTargetNotFound, sel.TargetID)
			}
			return nil, err
		}
		result.Diff = &Diff{
			Mode:     ModeShow,
			Context:  sel.Context,
			TargetID: sel.TargetID,
			Before:   catalog.LabelsFor(mask, sel.Context),
		}
		return result, nil

	case catalog.ContextScope:
		if sel.TargetID == "" {
			// No overwrite target picked: list every overwrite on the scope.
			states, err := e.gateway.Overwrites(ctx, sel.ScopeID)
			if err != nil {
				if errors.Is(err, ErrTargetNotFound) {
					return nil, fmt.Errorf("%w: scope %s", ErrTargetNotFound, sel.ScopeID)
				}
				return nil, err
			}
			views := make([]OverwriteView, 0, len(states))
			for _, st := range states {
				views = append(views, OverwriteView{
					TargetID: st.TargetID,
					Allow:    catalog.LabelsFor(st.Allow, sel.Context),
					Deny:     catalog.LabelsFor(st.Deny, sel.Context),
				})
			}
			result.Overwrites = views
			return result, nil
		}

		allow, deny, err := e.gateway.Overwrite(ctx, sel.ScopeID, sel.TargetID)
		if err != nil {
			if errors.Is(err, ErrTargetNotFound) {
				return nil, fmt.Errorf("%w: scope %s", ErrTargetNotFound, sel.ScopeID)
			}
			return nil, err
		}
		result.Diff = &Diff{
			Mode:        ModeShow,
			Context:     sel.Context,
			TargetID:    sel.TargetID,
			ScopeID:     sel.ScopeID,
			BeforeAllow: catalog.LabelsFor(allow, sel.Context),
			BeforeDeny:  catalog.LabelsFor(deny, sel.Context),
		}
		return result, nil

	default:
		return nil, ErrInvalidContext
	}
}

func (e *Engine) getSession(ctx context.Context, id string) (*stores.EditSession, error) {
	sess, err := e.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, stores.ErrSessionNotFound) {
			e.metricInc(MetricSessionExpired)
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return sess, nil
}
