package permflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/permflow/catalog"
	"github.com/MrEthical07/permflow/internal/stores"
)

// applyPlan is the fully computed outcome of a session: the fresh "before"
// state read from the gateway and the "after" state the mode produces.
// It is recomputed at preview time and again at confirm time, never cached,
// because the underlying entity may change between events.
type applyPlan struct {
	before catalog.Mask128
	after  catalog.Mask128

	beforeAllow catalog.Mask128
	beforeDeny  catalog.Mask128
	afterAllow  catalog.Mask128
	afterDeny   catalog.Mask128
}

// RequestPreview describes the requestpreview operation and its observable behavior.
//
// RequestPreview may return an error when input validation, dependency calls, or security checks fail.
// RequestPreview does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// RequestPreview computes the before/after diff for the session against the
// target's latest state. A target that vanished since selection fails the
// flow cleanly and deletes the session.
func (e *Engine) RequestPreview(ctx context.Context, sessionID string) (*Result, error) {
	if e == nil || e.gateway == nil {
		return nil, ErrEngineNotReady
	}

	sess, err := e.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	plan, err := e.buildPlan(ctx, sess)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return e.failSession(ctx, sess, err)
		}
		return nil, err
	}

	e.metricInc(MetricPreviewRendered)

	return &Result{
		State:       StatePreviewDiff,
		SessionID:   sess.ID,
		Mode:        Mode(sess.Mode),
		Context:     sess.Context,
		Selected:    selectedLabels(sess),
		AllSelected: sess.AllSelected,
		Diff:        diffFromPlan(sess, plan),
	}, nil
}

// buildPlan reads the target's current state from the gateway and applies
// the session's mode and pending selection to it.
func (e *Engine) buildPlan(ctx context.Context, sess *stores.EditSession) (*applyPlan, error) {
	mode := Mode(sess.Mode)

	switch sess.Context {
	case catalog.ContextSubject:
		before, err := e.gateway.CurrentMask(ctx, sess.TargetID)
		if err != nil {
			return nil, classifyGatewayErr(err, "subject "+sess.TargetID)
		}

		plan := &applyPlan{before: before}
		pending := pendingSubjectMask(sess)
		switch mode {
		case ModeAdd:
			plan.after = before.Or(pending)
		case ModeRemove:
			plan.after = before.AndNot(pending)
		case ModeReset:
			plan.after = catalog.Mask128{}
		default:
			return nil, ErrInvalidMode
		}
		return plan, nil

	case catalog.ContextScope:
		beforeAllow, beforeDeny, err := e.gateway.Overwrite(ctx, sess.ScopeID, sess.TargetID)
		if err != nil {
			return nil, classifyGatewayErr(err, "scope "+sess.ScopeID)
		}

		plan := &applyPlan{beforeAllow: beforeAllow, beforeDeny: beforeDeny}
		switch mode {
		case ModeAdd:
			allowMask, denyMask, clearMask := pendingOverwriteMasks(sess)
			plan.afterAllow = beforeAllow.Or(allowMask).AndNot(denyMask).AndNot(clearMask)
			plan.afterDeny = beforeDeny.Or(denyMask).AndNot(allowMask).AndNot(clearMask)
		case ModeRemove:
			clearMask := pendingSubjectMask(sess)
			plan.afterAllow = beforeAllow.AndNot(clearMask)
			plan.afterDeny = beforeDeny.AndNot(clearMask)
		case ModeReset:
			// Overwrite removed entirely: both masks empty means inherit.
		default:
			return nil, ErrInvalidMode
		}
		return plan, nil

	default:
		return nil, ErrInvalidContext
	}
}

// pendingSubjectMask is the union of every selected key's flag, across all
// pages in any order. With the all-selected sentinel it is the context's
// full flag set. Zero-flag placeholder keys contribute nothing.
func pendingSubjectMask(sess *stores.EditSession) catalog.Mask128 {
	if sess.AllSelected {
		return catalog.AllFlags(sess.Context)
	}
	var m catalog.Mask128
	for _, sel := range sess.Pages {
		for _, k := range sel.Keys {
			m = m.Or(catalog.FlagFor(k, sess.Context))
		}
	}
	return m
}

func pendingOverwriteMasks(sess *stores.EditSession) (allow, deny, inherit catalog.Mask128) {
	if sess.AllSelected {
		return catalog.AllFlags(sess.Context), catalog.Mask128{}, catalog.Mask128{}
	}
	for _, sel := range sess.Pages {
		for _, k := range sel.Allow {
			allow = allow.Or(catalog.FlagFor(k, sess.Context))
		}
		for _, k := range sel.Deny {
			deny = deny.Or(catalog.FlagFor(k, sess.Context))
		}
		for _, k := range sel.Clear {
			inherit = inherit.Or(catalog.FlagFor(k, sess.Context))
		}
	}
	return allow, deny, inherit
}

func diffFromPlan(sess *stores.EditSession, plan *applyPlan) *Diff {
	d := &Diff{
		Mode:        Mode(sess.Mode),
		Context:     sess.Context,
		TargetID:    sess.TargetID,
		ScopeID:     sess.ScopeID,
		AllSelected: sess.AllSelected,
	}
	if sess.Context == catalog.ContextSubject {
		d.Before = catalog.LabelsFor(plan.before, sess.Context)
		d.After = catalog.LabelsFor(plan.after, sess.Context)
	} else {
		d.BeforeAllow = catalog.LabelsFor(plan.beforeAllow, sess.Context)
		d.BeforeDeny = catalog.LabelsFor(plan.beforeDeny, sess.Context)
		d.AfterAllow = catalog.LabelsFor(plan.afterAllow, sess.Context)
		d.AfterDeny = catalog.LabelsFor(plan.afterDeny, sess.Context)
	}
	return d
}

// classifyGatewayErr folds gateway failures into the package sentinels. A
// vanished target during an in-flight session is a conflict, not a plain
// not-found, because the flow already validated the target once.
func classifyGatewayErr(err error, what string) error {
	switch {
	case errors.Is(err, ErrTargetNotFound):
		return fmt.Errorf("%w: %s no longer exists", ErrConflict, what)
	case errors.Is(err, ErrForbidden):
		return err
	case errors.Is(err, ErrRateLimited):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrApplyFailed, err)
	}
}

// failSession aborts the flow: the session is deleted and the specific
// reason is surfaced verbatim.
func (e *Engine) failSession(ctx context.Context, sess *stores.EditSession, cause error) (*Result, error) {
	_ = e.sessions.Delete(ctx, sess.ID)
	e.metricInc(MetricApplyFailed)
	e.emitAudit(ctx, auditEventApplyFailed, false, sess, cause, nil)

	return &Result{
		State:     StateFailed,
		SessionID: sess.ID,
		Mode:      Mode(sess.Mode),
		Context:   sess.Context,
		Reason:    cause.Error(),
	}, cause
}
