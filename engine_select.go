package permflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/permflow/catalog"
	"github.com/MrEthical07/permflow/internal/stores"
)

// SelectPermissions describes the selectpermissions operation and its observable behavior.
//
// SelectPermissions may return an error when input validation, dependency calls, or security checks fail.
// SelectPermissions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// SelectPermissions replaces one page's selection. Pages may be touched in
// any order, any number of times; selections from different pages are
// unioned at preview time. Used by subject-context Add/Remove flows and by
// scope-context Remove flows, where the selected bits are cleared from both
// overwrite masks.
func (e *Engine) SelectPermissions(ctx context.Context, sessionID string, page int, keys []string) (*Result, error) {
	if e == nil || e.gateway == nil {
		return nil, ErrEngineNotReady
	}

	sess, err := e.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	mode := Mode(sess.Mode)
	if mode != ModeAdd && mode != ModeRemove {
		return nil, fmt.Errorf("%w: %s does not select permissions", ErrInvalidMode, mode)
	}
	if sess.Context == catalog.ContextScope && mode == ModeAdd {
		return nil, fmt.Errorf("%w: scope add uses allow/deny/clear selection", ErrInvalidContext)
	}
	if err := e.validatePage(sess.Context, page, keys); err != nil {
		return nil, err
	}

	sel := stores.PageSelection{Keys: dedupe(keys)}
	if err := e.setPage(ctx, sessionID, page, sel); err != nil {
		return nil, err
	}
	return e.selectionResult(ctx, sessionID)
}

// SelectOverwrite describes the selectoverwrite operation and its observable behavior.
//
// SelectOverwrite may return an error when input validation, dependency calls, or security checks fail.
// SelectOverwrite does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// SelectOverwrite records the three-way overwrite choice for one page of a
// scope-context Add flow: allow (set in allow, cleared from deny), deny
// (set in deny, cleared from allow), clear (cleared from both — inherit).
// A key may appear in at most one of the three lists.
func (e *Engine) SelectOverwrite(ctx context.Context, sessionID string, page int, allow, deny, clear []string) (*Result, error) {
	if e == nil || e.gateway == nil {
		return nil, ErrEngineNotReady
	}

	sess, err := e.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Context != catalog.ContextScope {
		return nil, fmt.Errorf("%w: overwrite selection requires the scope context", ErrInvalidContext)
	}
	if Mode(sess.Mode) != ModeAdd {
		return nil, fmt.Errorf("%w: %s does not select overwrite actions", ErrInvalidMode, Mode(sess.Mode))
	}

	combined := make([]string, 0, len(allow)+len(deny)+len(clear))
	seen := make(map[string]struct{}, cap(combined))
	for _, list := range [][]string{allow, deny, clear} {
		for _, k := range list {
			if _, dup := seen[k]; dup {
				return nil, fmt.Errorf("%w: %q appears in more than one action list", ErrInvalidSelection, k)
			}
			seen[k] = struct{}{}
			combined = append(combined, k)
		}
	}
	if err := e.validatePage(sess.Context, page, combined); err != nil {
		return nil, err
	}

	sel := stores.PageSelection{
		Allow: dedupe(allow),
		Deny:  dedupe(deny),
		Clear: dedupe(clear),
	}
	if err := e.setPage(ctx, sessionID, page, sel); err != nil {
		return nil, err
	}
	return e.selectionResult(ctx, sessionID)
}

// SelectAll describes the selectall operation and its observable behavior.
//
// SelectAll may return an error when input validation, dependency calls, or security checks fail.
// SelectAll does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// SelectAll marks the whole session as all-selected. While the sentinel is
// set, individual page selections are ignored for mask computation.
func (e *Engine) SelectAll(ctx context.Context, sessionID string) (*Result, error) {
	return e.markAll(ctx, sessionID, true)
}

// ClearAll describes the clearall operation and its observable behavior.
//
// ClearAll may return an error when input validation, dependency calls, or security checks fail.
// ClearAll does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// ClearAll clears the all-selected sentinel; page selections made earlier
// become effective again.
func (e *Engine) ClearAll(ctx context.Context, sessionID string) (*Result, error) {
	return e.markAll(ctx, sessionID, false)
}

func (e *Engine) markAll(ctx context.Context, sessionID string, all bool) (*Result, error) {
	if e == nil || e.gateway == nil {
		return nil, ErrEngineNotReady
	}

	sess, err := e.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	mode := Mode(sess.Mode)
	if mode != ModeAdd && mode != ModeRemove {
		return nil, fmt.Errorf("%w: %s does not select permissions", ErrInvalidMode, mode)
	}

	if err := e.sessions.MarkAll(ctx, sessionID, all); err != nil {
		return nil, e.mapStoreErr(err)
	}
	e.metricInc(MetricSelectionUpdated)
	return e.selectionResult(ctx, sessionID)
}

func (e *Engine) setPage(ctx context.Context, sessionID string, page int, sel stores.PageSelection) error {
	if err := e.sessions.SetPage(ctx, sessionID, page, sel); err != nil {
		return e.mapStoreErr(err)
	}
	e.metricInc(MetricSelectionUpdated)
	return nil
}

func (e *Engine) mapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, stores.ErrSessionNotFound) {
		return ErrSessionNotFound
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func (e *Engine) validatePage(c catalog.Context, page int, keys []string) error {
	pages := catalog.Partition(c, e.pageSize())
	if page < 0 || page >= len(pages) {
		return fmt.Errorf("%w: page %d out of range", ErrInvalidSelection, page)
	}
	if len(keys) > len(pages[page]) {
		return fmt.Errorf("%w: more keys than the page holds", ErrInvalidSelection)
	}
	return nil
}

func (e *Engine) selectionResult(ctx context.Context, sessionID string) (*Result, error) {
	sess, err := e.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &Result{
		State:       StatePermissionSelection,
		SessionID:   sess.ID,
		Mode:        Mode(sess.Mode),
		Context:     sess.Context,
		Pages:       catalog.Partition(sess.Context, e.pageSize()),
		Selected:    selectedLabels(sess),
		AllSelected: sess.AllSelected,
	}, nil
}

// selectedLabels summarizes the session's touched keys as vocabulary-order
// labels. With the all-selected sentinel set, the summary is empty and
// Result.AllSelected carries the fact instead.
func selectedLabels(sess *stores.EditSession) []string {
	if sess.AllSelected {
		return nil
	}

	chosen := make(map[string]struct{})
	for _, sel := range sess.Pages {
		for _, list := range [][]string{sel.Keys, sel.Allow, sel.Deny, sel.Clear} {
			for _, k := range list {
				chosen[k] = struct{}{}
			}
		}
	}

	var labels []string
	for _, b := range catalog.ForContext(sess.Context) {
		if _, ok := chosen[b.Key]; ok {
			labels = append(labels, b.Label)
		}
	}
	return labels
}

func dedupe(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
