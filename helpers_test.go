package permflow

import (
	"context"
	"sync"
	"testing"

	"github.com/MrEthical07/permflow/catalog"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func newTestEngine(t *testing.T, gw Gateway) *Engine {
	t.Helper()
	engine, err := New().WithGateway(gw).Build()
	if err != nil {
		t.Fatalf("engine build: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func newTestRedisEngine(t *testing.T, gw Gateway, cfg Config) (*miniredis.Miniredis, *Engine) {
	t.Helper()
	mr, rdb := newTestRedis(t)
	engine, err := New().WithConfig(cfg).WithRedis(rdb).WithGateway(gw).Build()
	if err != nil {
		t.Fatalf("engine build: %v", err)
	}
	t.Cleanup(engine.Close)
	return mr, engine
}

func actorCtx(agentID string) context.Context {
	return WithActor(context.Background(), agentID)
}

type overwritePair struct {
	allow catalog.Mask128
	deny  catalog.Mask128
}

// mockGateway is an in-memory entity system with injectable failures. Write
// failures are queued and popped one per call, so tests can script sequences
// like "rate limited once, then succeed".
type mockGateway struct {
	mu         sync.Mutex
	masks      map[string]catalog.Mask128
	ranks      map[string]int
	overwrites map[string]map[string]overwritePair
	standings  map[string]Standing
	scopeCaps  map[string]map[string]map[string]bool

	setMaskErrs      []error
	setOverwriteErrs []error
	setMaskCalls     int
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		masks: map[string]catalog.Mask128{
			"role-1": {},
		},
		ranks: map[string]int{
			"role-1": 1,
		},
		overwrites: map[string]map[string]overwritePair{
			"chan-1": {},
		},
		standings: map[string]Standing{
			"agent-1": {
				Capabilities:  map[string]bool{CapAdministrator: true},
				HierarchyRank: 100,
			},
		},
		scopeCaps: map[string]map[string]map[string]bool{},
	}
}

func (g *mockGateway) queueSetMaskErr(errs ...error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.setMaskErrs = append(g.setMaskErrs, errs...)
}

func (g *mockGateway) queueSetOverwriteErr(errs ...error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.setOverwriteErrs = append(g.setOverwriteErrs, errs...)
}

func (g *mockGateway) maskOf(subjectID string) catalog.Mask128 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.masks[subjectID]
}

func (g *mockGateway) setMaskDirect(subjectID string, mask catalog.Mask128) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.masks[subjectID] = mask
}

func (g *mockGateway) removeSubject(subjectID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.masks, subjectID)
}

func (g *mockGateway) overwriteOf(scopeID, targetID string) overwritePair {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.overwrites[scopeID][targetID]
}

func (g *mockGateway) setOverwriteDirect(scopeID, targetID string, allow, deny catalog.Mask128) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.overwrites[scopeID] == nil {
		g.overwrites[scopeID] = map[string]overwritePair{}
	}
	g.overwrites[scopeID][targetID] = overwritePair{allow: allow, deny: deny}
}

func (g *mockGateway) setStanding(agentID string, s Standing) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.standings[agentID] = s
}

func (g *mockGateway) CurrentMask(_ context.Context, subjectID string) (catalog.Mask128, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.masks[subjectID]
	if !ok {
		return catalog.Mask128{}, ErrTargetNotFound
	}
	return m, nil
}

func (g *mockGateway) SetMask(_ context.Context, subjectID string, mask catalog.Mask128) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.setMaskCalls++
	if len(g.setMaskErrs) > 0 {
		err := g.setMaskErrs[0]
		g.setMaskErrs = g.setMaskErrs[1:]
		if err != nil {
			return err
		}
	}
	if _, ok := g.masks[subjectID]; !ok {
		return ErrTargetNotFound
	}
	g.masks[subjectID] = mask
	return nil
}

func (g *mockGateway) SubjectRank(_ context.Context, subjectID string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.ranks[subjectID]
	if !ok {
		return 0, ErrTargetNotFound
	}
	return r, nil
}

func (g *mockGateway) Overwrite(_ context.Context, scopeID, targetID string) (catalog.Mask128, catalog.Mask128, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	scope, ok := g.overwrites[scopeID]
	if !ok {
		return catalog.Mask128{}, catalog.Mask128{}, ErrTargetNotFound
	}
	pair := scope[targetID]
	return pair.allow, pair.deny, nil
}

func (g *mockGateway) Overwrites(_ context.Context, scopeID string) ([]OverwriteState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	scope, ok := g.overwrites[scopeID]
	if !ok {
		return nil, ErrTargetNotFound
	}
	out := make([]OverwriteState, 0, len(scope))
	for targetID, pair := range scope {
		out = append(out, OverwriteState{TargetID: targetID, Allow: pair.allow, Deny: pair.deny})
	}
	return out, nil
}

func (g *mockGateway) SetOverwrite(_ context.Context, scopeID, targetID string, allow, deny catalog.Mask128) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.setOverwriteErrs) > 0 {
		err := g.setOverwriteErrs[0]
		g.setOverwriteErrs = g.setOverwriteErrs[1:]
		if err != nil {
			return err
		}
	}
	scope, ok := g.overwrites[scopeID]
	if !ok {
		return ErrTargetNotFound
	}
	scope[targetID] = overwritePair{allow: allow, deny: deny}
	return nil
}

func (g *mockGateway) AgentStanding(_ context.Context, agentID string) (Standing, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.standings[agentID]
	if !ok {
		return Standing{}, ErrTargetNotFound
	}
	return s, nil
}

func (g *mockGateway) ScopeCapabilities(_ context.Context, agentID, scopeID string) (map[string]bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scopeCaps[agentID][scopeID], nil
}

// startSubjectFlow walks a subject edit up to permission selection and
// returns the session id.
func startSubjectFlow(t *testing.T, ctx context.Context, engine *Engine, mode Mode, targetID string) string {
	t.Helper()
	res, err := engine.ChooseTarget(ctx, TargetSelection{
		Context:  catalog.ContextSubject,
		Mode:     mode,
		TargetID: targetID,
	})
	if err != nil {
		t.Fatalf("ChooseTarget failed: %v", err)
	}
	if res.SessionID == "" {
		t.Fatal("expected a session id")
	}
	return res.SessionID
}

func startScopeFlow(t *testing.T, ctx context.Context, engine *Engine, mode Mode, scopeID, targetID string) string {
	t.Helper()
	res, err := engine.ChooseTarget(ctx, TargetSelection{
		Context:  catalog.ContextScope,
		Mode:     mode,
		ScopeID:  scopeID,
		TargetID: targetID,
	})
	if err != nil {
		t.Fatalf("ChooseTarget failed: %v", err)
	}
	if res.SessionID == "" {
		t.Fatal("expected a session id")
	}
	return res.SessionID
}

func maskOfKeys(c catalog.Context, keys ...string) catalog.Mask128 {
	var m catalog.Mask128
	for _, k := range keys {
		m = m.Or(catalog.FlagFor(k, c))
	}
	return m
}
