package permflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/permflow/catalog"
	"github.com/MrEthical07/permflow/internal/ident"
	"github.com/MrEthical07/permflow/internal/stores"
)

// Confirm describes the confirm operation and its observable behavior.
//
// Confirm may return an error when input validation, dependency calls, or security checks fail.
// Confirm does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Confirm runs the authorization guard, recomputes the plan against the
// target's latest state, writes it through the gateway, stores the undo
// snapshot, and deletes the session. A rate-limited write is retried once;
// if it still fails, the session is preserved in the preview state so the
// operator can retry confirm without re-selecting permissions. No undo
// entry is ever created for a failed write.
func (e *Engine) Confirm(ctx context.Context, sessionID string) (*Result, error) {
	if e == nil || e.gateway == nil {
		return nil, ErrEngineNotReady
	}

	sess, err := e.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := e.canActOn(ctx, sess); err != nil {
		_ = e.sessions.Delete(ctx, sess.ID)
		e.metricInc(MetricApplyDenied)
		e.emitAudit(ctx, auditEventApplyDenied, false, sess, err, nil)
		return &Result{
			State:     StateFailed,
			SessionID: sess.ID,
			Mode:      Mode(sess.Mode),
			Context:   sess.Context,
			Reason:    err.Error(),
		}, err
	}

	plan, err := e.buildPlan(ctx, sess)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return e.failSession(ctx, sess, err)
		}
		return nil, err
	}

	start := time.Now()
	if err := e.applyPlanWrite(ctx, sess, plan); err != nil {
		return e.handleWriteFailure(ctx, sess, plan, err)
	}
	e.metricObserve(MetricApplyLatency, time.Since(start))

	undoID := e.storeUndo(ctx, sess, plan)

	_ = e.sessions.Delete(ctx, sess.ID)
	e.metricInc(MetricApplySuccess)
	e.emitAudit(ctx, auditEventApplied, true, sess, nil, func() map[string]string {
		return map[string]string{
			"mode":    Mode(sess.Mode).String(),
			"context": sess.Context.String(),
			"undo_id": undoID,
		}
	})

	return &Result{
		State:     StateApplied,
		SessionID: sess.ID,
		UndoID:    undoID,
		Mode:      Mode(sess.Mode),
		Context:   sess.Context,
		Diff:      diffFromPlan(sess, plan),
	}, nil
}

// Cancel describes the cancel operation and its observable behavior.
//
// Cancel may return an error when input validation, dependency calls, or security checks fail.
// Cancel does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Cancel deletes the session immediately with no mutation performed.
// Cancelling an already-gone session is not an error; deletion is
// idempotent and a cancelled flow can only be restarted from target
// selection.
func (e *Engine) Cancel(ctx context.Context, sessionID string) (*Result, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	if err := e.sessions.Delete(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	e.metricInc(MetricSessionCancelled)
	e.emitAudit(ctx, auditEventSessionCancelled, true, &stores.EditSession{ID: sessionID}, nil, nil)

	return &Result{
		State:     StateCancelled,
		SessionID: sessionID,
	}, nil
}

func (e *Engine) applyPlanWrite(ctx context.Context, sess *stores.EditSession, plan *applyPlan) error {
	write := func() error {
		if sess.Context == catalog.ContextSubject {
			return e.gateway.SetMask(ctx, sess.TargetID, plan.after)
		}
		return e.gateway.SetOverwrite(ctx, sess.ScopeID, sess.TargetID, plan.afterAllow, plan.afterDeny)
	}

	err := write()
	if err != nil && errors.Is(err, ErrRateLimited) {
		// One retry only, to avoid duplicate application.
		e.metricInc(MetricApplyRetried)
		err = write()
	}
	return err
}

func (e *Engine) handleWriteFailure(ctx context.Context, sess *stores.EditSession, plan *applyPlan, err error) (*Result, error) {
	switch {
	case errors.Is(err, ErrTargetNotFound):
		return e.failSession(ctx, sess, fmt.Errorf("%w: target vanished during apply", ErrConflict))

	case errors.Is(err, ErrForbidden):
		_ = e.sessions.Delete(ctx, sess.ID)
		e.metricInc(MetricApplyDenied)
		e.emitAudit(ctx, auditEventApplyDenied, false, sess, err, nil)
		return &Result{
			State:     StateFailed,
			SessionID: sess.ID,
			Mode:      Mode(sess.Mode),
			Context:   sess.Context,
			Reason:    err.Error(),
		}, err

	default:
		// Transient or unexpected: the session stays in the preview state
		// so confirm can be retried without re-selection.
		e.metricInc(MetricApplyFailed)
		e.emitAudit(ctx, auditEventApplyFailed, false, sess, err, nil)

		reason := ErrRateLimited.Error()
		var retErr error = ErrRateLimited
		if !errors.Is(err, ErrRateLimited) {
			// Internal errors are surfaced generically, never verbatim.
			reason = "apply failed, please retry"
			retErr = fmt.Errorf("%w: %v", ErrApplyFailed, err)
		}
		return &Result{
			State:     StatePreviewDiff,
			SessionID: sess.ID,
			Mode:      Mode(sess.Mode),
			Context:   sess.Context,
			Diff:      diffFromPlan(sess, plan),
			Reason:    reason,
		}, retErr
	}
}

// storeUndo captures the pre-mutation state. Undo is best-effort: a failed
// save is logged and the apply still succeeds, just without an undo offer.
func (e *Engine) storeUndo(ctx context.Context, sess *stores.EditSession, plan *applyPlan) string {
	rec := &stores.UndoRecord{}
	if sess.Context == catalog.ContextSubject {
		rec.Kind = stores.UndoSubject
		rec.SubjectID = sess.TargetID
		rec.Before = plan.before
	} else {
		rec.Kind = stores.UndoOverwrite
		rec.ScopeID = sess.ScopeID
		rec.ScopeTargetID = sess.TargetID
		rec.BeforeAllow = plan.beforeAllow
		rec.BeforeDeny = plan.beforeDeny
	}

	undoID, err := ident.NewUndoID()
	if err != nil {
		return ""
	}
	if err := e.undo.Save(ctx, undoID, rec, e.config.Undo.TTL); err != nil {
		e.emitAudit(ctx, auditEventUndoFailed, false, sess, err, nil)
		return ""
	}
	e.metricInc(MetricUndoStored)
	return undoID
}
