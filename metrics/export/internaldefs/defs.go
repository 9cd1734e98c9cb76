package internaldefs

import (
	"github.com/MrEthical07/permflow"
)

// CounterDef defines a public type used by permflow APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   permflow.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by permflow APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   permflow.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the permission engine.
var CounterDefs = []CounterDef{
	{ID: permflow.MetricFlowStarted, Name: "permflow_flow_started_total", Help: "Edit flows started."},
	{ID: permflow.MetricSessionCreated, Name: "permflow_session_created_total", Help: "Created edit sessions."},
	{ID: permflow.MetricSelectionUpdated, Name: "permflow_selection_updated_total", Help: "Page selection updates."},
	{ID: permflow.MetricPreviewRendered, Name: "permflow_preview_rendered_total", Help: "Rendered diff previews."},
	{ID: permflow.MetricApplySuccess, Name: "permflow_apply_success_total", Help: "Successful permission applies."},
	{ID: permflow.MetricApplyDenied, Name: "permflow_apply_denied_total", Help: "Applies denied by the authorization guard."},
	{ID: permflow.MetricApplyFailed, Name: "permflow_apply_failed_total", Help: "Applies that failed at the write path."},
	{ID: permflow.MetricApplyRetried, Name: "permflow_apply_retried_total", Help: "Rate-limited apply writes retried once."},
	{ID: permflow.MetricSessionCancelled, Name: "permflow_session_cancelled_total", Help: "Cancelled edit sessions."},
	{ID: permflow.MetricSessionExpired, Name: "permflow_session_expired_total", Help: "Operations that hit an expired or missing session."},
	{ID: permflow.MetricUndoStored, Name: "permflow_undo_stored_total", Help: "Stored undo records."},
	{ID: permflow.MetricUndoApplied, Name: "permflow_undo_applied_total", Help: "Successful undo reversals."},
	{ID: permflow.MetricUndoExpired, Name: "permflow_undo_expired_total", Help: "Undo attempts with an expired or unknown token."},
	{ID: permflow.MetricUndoFailed, Name: "permflow_undo_failed_total", Help: "Undo reversals that failed at the write path."},
}

// HistogramDefs is an exported constant or variable used by the permission engine.
var HistogramDefs = []HistogramDef{
	{ID: permflow.MetricApplyLatency, Name: "permflow_apply_latency_seconds", Help: "Apply latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the permission engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
