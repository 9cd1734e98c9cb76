package permflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/permflow/internal/stores"
)

// Undo describes the undo operation and its observable behavior.
//
// Undo may return an error when input validation, dependency calls, or security checks fail.
// Undo does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Undo atomically consumes the token and writes the captured pre-apply
// state back through the gateway. The consume happens first and is never
// rolled back: a second invocation with the same token reports
// ErrUndoExpired even when the reversal write failed, so concurrent undo
// attempts reverse at most once.
func (e *Engine) Undo(ctx context.Context, undoID string) (*Result, error) {
	if e == nil || e.gateway == nil {
		return nil, ErrEngineNotReady
	}

	rec, err := e.undo.Consume(ctx, undoID)
	if err != nil {
		if errors.Is(err, stores.ErrUndoNotFound) {
			e.metricInc(MetricUndoExpired)
			e.emitAudit(ctx, auditEventUndoExpired, false, nil, ErrUndoExpired, func() map[string]string {
				return map[string]string{"undo_id": undoID}
			})
			return nil, ErrUndoExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := e.reverse(ctx, rec); err != nil {
		e.metricInc(MetricUndoFailed)
		e.emitAudit(ctx, auditEventUndoFailed, false, nil, err, func() map[string]string {
			return map[string]string{"undo_id": undoID}
		})
		return &Result{
			State:  StateFailed,
			UndoID: undoID,
			Reason: err.Error(),
		}, err
	}

	e.metricInc(MetricUndoApplied)
	e.emitAudit(ctx, auditEventUndoApplied, true, nil, nil, func() map[string]string {
		return map[string]string{"undo_id": undoID}
	})

	return &Result{
		State:  StateIdle,
		UndoID: undoID,
	}, nil
}

func (e *Engine) reverse(ctx context.Context, rec *stores.UndoRecord) error {
	switch rec.Kind {
	case stores.UndoSubject:
		return e.gateway.SetMask(ctx, rec.SubjectID, rec.Before)
	case stores.UndoOverwrite:
		return e.gateway.SetOverwrite(ctx, rec.ScopeID, rec.ScopeTargetID, rec.BeforeAllow, rec.BeforeDeny)
	default:
		return fmt.Errorf("%w: unknown undo record kind %d", ErrApplyFailed, rec.Kind)
	}
}
