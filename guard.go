package permflow

import (
	"context"
	"fmt"

	"github.com/MrEthical07/permflow/catalog"
	"github.com/MrEthical07/permflow/internal/stores"
)

// canActOn is the authorization guard run immediately before apply. Checks
// run in order and the first failure aborts with a specific, user-facing
// reason wrapped in ErrForbidden; no partial mutation is ever attempted.
//
// Subject mutation additionally requires the agent's hierarchy rank to be
// strictly greater than the target's: the platform never lets an agent
// modify a subject at or above its own rank.
func (e *Engine) canActOn(ctx context.Context, sess *stores.EditSession) error {
	standing, err := e.gateway.AgentStanding(ctx, sess.AgentID)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve agent standing: %v", ErrForbidden, err)
	}

	switch sess.Context {
	case catalog.ContextSubject:
		if !standing.Has(CapAdministrator) && !standing.Has(CapManageSubjects) {
			return fmt.Errorf("%w: agent missing the manage-subjects capability", ErrForbidden)
		}

		targetRank, err := e.gateway.SubjectRank(ctx, sess.TargetID)
		if err != nil {
			return fmt.Errorf("%w: cannot resolve target rank: %v", ErrForbidden, err)
		}
		if standing.HierarchyRank <= targetRank {
			return fmt.Errorf(
				"%w: agent rank (%d) is not higher than target rank (%d)",
				ErrForbidden, standing.HierarchyRank, targetRank,
			)
		}
		return nil

	case catalog.ContextScope:
		if standing.Has(CapAdministrator) || standing.Has(CapManageScopes) {
			return nil
		}

		scopeCaps, err := e.gateway.ScopeCapabilities(ctx, sess.AgentID, sess.ScopeID)
		if err != nil {
			return fmt.Errorf("%w: cannot resolve scope capabilities: %v", ErrForbidden, err)
		}
		if !scopeCaps[CapAdministrator] && !scopeCaps[CapManageScopes] {
			return fmt.Errorf("%w: agent missing the manage-scopes capability on this scope", ErrForbidden)
		}
		return nil

	default:
		return ErrInvalidContext
	}
}
