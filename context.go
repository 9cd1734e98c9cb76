package permflow

import "context"

type actorContextKey struct{}

// WithActor attaches the acting agent's id to ctx. The Engine records it on
// the edit session at target selection and uses it for the authorization
// guard and audit events. Flows started without an actor are rejected.
func WithActor(ctx context.Context, agentID string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, agentID)
}

func actorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	agentID, _ := ctx.Value(actorContextKey{}).(string)
	return agentID
}
