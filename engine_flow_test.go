package permflow

import (
	"context"
	"errors"
	"testing"

	"github.com/MrEthical07/permflow/catalog"
)

func TestStartFlowPaginatesVocabulary(t *testing.T) {
	engine := newTestEngine(t, newMockGateway())

	res, err := engine.StartFlow(context.Background(), catalog.ContextSubject, ModeAdd)
	if err != nil {
		t.Fatalf("StartFlow failed: %v", err)
	}
	if res.State != StateTargetSelection {
		t.Fatalf("expected target_selection state, got %s", res.State)
	}
	if res.SessionID != "" {
		t.Fatal("target selection must not create a session yet")
	}

	total := len(catalog.ForContext(catalog.ContextSubject))
	wantPages := (total + catalog.DefaultPageSize - 1) / catalog.DefaultPageSize
	if len(res.Pages) != wantPages {
		t.Fatalf("expected %d pages, got %d", wantPages, len(res.Pages))
	}
	for i, page := range res.Pages {
		if len(page) > catalog.DefaultPageSize {
			t.Fatalf("page %d exceeds the page size cap: %d entries", i, len(page))
		}
	}

	// Pagination is deterministic.
	again, err := engine.StartFlow(context.Background(), catalog.ContextSubject, ModeAdd)
	if err != nil {
		t.Fatalf("StartFlow again failed: %v", err)
	}
	for i := range res.Pages {
		if len(again.Pages[i]) != len(res.Pages[i]) {
			t.Fatalf("page %d size changed between runs", i)
		}
		for j := range res.Pages[i] {
			if again.Pages[i][j].Key != res.Pages[i][j].Key {
				t.Fatalf("page %d entry %d changed between runs", i, j)
			}
		}
	}
}

func TestStartFlowRejectsUnknownMode(t *testing.T) {
	engine := newTestEngine(t, newMockGateway())

	if _, err := engine.StartFlow(context.Background(), catalog.ContextSubject, Mode(99)); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
}

func TestChooseTargetRequiresActor(t *testing.T) {
	engine := newTestEngine(t, newMockGateway())

	_, err := engine.ChooseTarget(context.Background(), TargetSelection{
		Context:  catalog.ContextSubject,
		Mode:     ModeAdd,
		TargetID: "role-1",
	})
	if !errors.Is(err, ErrActorMissing) {
		t.Fatalf("expected ErrActorMissing, got %v", err)
	}
}

func TestChooseTargetValidation(t *testing.T) {
	engine := newTestEngine(t, newMockGateway())
	ctx := actorCtx("agent-1")

	_, err := engine.ChooseTarget(ctx, TargetSelection{
		Context: catalog.ContextScope,
		Mode:    ModeAdd,
	})
	if !errors.Is(err, ErrInvalidContext) {
		t.Fatalf("expected ErrInvalidContext for missing scope id, got %v", err)
	}

	_, err = engine.ChooseTarget(ctx, TargetSelection{
		Context: catalog.ContextSubject,
		Mode:    ModeAdd,
	})
	if !errors.Is(err, ErrInvalidContext) {
		t.Fatalf("expected ErrInvalidContext for missing target id, got %v", err)
	}

	// Scope editing modes need an overwrite target; only Show may omit it.
	for _, mode := range []Mode{ModeAdd, ModeRemove, ModeReset} {
		res, err := engine.ChooseTarget(ctx, TargetSelection{
			Context: catalog.ContextScope,
			Mode:    mode,
			ScopeID: "chan-1",
		})
		if !errors.Is(err, ErrInvalidContext) {
			t.Fatalf("expected ErrInvalidContext for scope %s without target id, got %v", mode, err)
		}
		if res != nil {
			t.Fatalf("scope %s without target id must not open a session, got %+v", mode, res)
		}
	}
}

func TestShowSubjectRendersWithoutSession(t *testing.T) {
	gw := newMockGateway()
	gw.setMaskDirect("role-1", maskOfKeys(catalog.ContextSubject, "ViewChannels", "BanMembers"))
	engine := newTestEngine(t, gw)

	res, err := engine.ChooseTarget(actorCtx("agent-1"), TargetSelection{
		Context:  catalog.ContextSubject,
		Mode:     ModeShow,
		TargetID: "role-1",
	})
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if res.State != StateIdle {
		t.Fatalf("expected idle state after show, got %s", res.State)
	}
	if res.SessionID != "" {
		t.Fatal("show must not create a session")
	}
	if res.Diff == nil || len(res.Diff.Before) != 2 {
		t.Fatalf("expected two enabled labels, got %+v", res.Diff)
	}
}

func TestShowMissingSubject(t *testing.T) {
	engine := newTestEngine(t, newMockGateway())

	_, err := engine.ChooseTarget(actorCtx("agent-1"), TargetSelection{
		Context:  catalog.ContextSubject,
		Mode:     ModeShow,
		TargetID: "role-missing",
	})
	if !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound, got %v", err)
	}
}

func TestShowScopeListsAllOverwrites(t *testing.T) {
	gw := newMockGateway()
	gw.setOverwriteDirect("chan-1", "role-1",
		maskOfKeys(catalog.ContextScope, "ViewChannel"),
		maskOfKeys(catalog.ContextScope, "SendMessages"))
	gw.setOverwriteDirect("chan-1", "role-2",
		maskOfKeys(catalog.ContextScope, "AddReactions"),
		catalog.Mask128{})
	engine := newTestEngine(t, gw)

	res, err := engine.ChooseTarget(actorCtx("agent-1"), TargetSelection{
		Context: catalog.ContextScope,
		Mode:    ModeShow,
		ScopeID: "chan-1",
	})
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if len(res.Overwrites) != 2 {
		t.Fatalf("expected two overwrite views, got %d", len(res.Overwrites))
	}
}

func TestShowScopeSingleOverwrite(t *testing.T) {
	gw := newMockGateway()
	gw.setOverwriteDirect("chan-1", "role-1",
		maskOfKeys(catalog.ContextScope, "ViewChannel"),
		maskOfKeys(catalog.ContextScope, "SendMessages"))
	engine := newTestEngine(t, gw)

	res, err := engine.ChooseTarget(actorCtx("agent-1"), TargetSelection{
		Context:  catalog.ContextScope,
		Mode:     ModeShow,
		ScopeID:  "chan-1",
		TargetID: "role-1",
	})
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if res.Diff == nil {
		t.Fatal("expected a rendered overwrite diff")
	}
	if len(res.Diff.BeforeAllow) != 1 || res.Diff.BeforeAllow[0] != "View Channel" {
		t.Fatalf("unexpected allow labels: %v", res.Diff.BeforeAllow)
	}
	if len(res.Diff.BeforeDeny) != 1 || res.Diff.BeforeDeny[0] != "Send Messages" {
		t.Fatalf("unexpected deny labels: %v", res.Diff.BeforeDeny)
	}
}

func TestResetSkipsStraightToPreview(t *testing.T) {
	gw := newMockGateway()
	gw.setMaskDirect("role-1", maskOfKeys(catalog.ContextSubject, "ViewChannels", "Administrator"))
	engine := newTestEngine(t, gw)

	res, err := engine.ChooseTarget(actorCtx("agent-1"), TargetSelection{
		Context:  catalog.ContextSubject,
		Mode:     ModeReset,
		TargetID: "role-1",
	})
	if err != nil {
		t.Fatalf("reset target choice failed: %v", err)
	}
	if res.State != StatePreviewDiff {
		t.Fatalf("expected preview state, got %s", res.State)
	}
	if len(res.Diff.Before) != 2 {
		t.Fatalf("expected two labels before reset, got %v", res.Diff.Before)
	}
	if len(res.Diff.After) != 0 {
		t.Fatalf("reset preview must show an empty after mask, got %v", res.Diff.After)
	}
}

func TestExpiredSessionSurfacesNotFound(t *testing.T) {
	engine := newTestEngine(t, newMockGateway())

	if _, err := engine.RequestPreview(context.Background(), "no-such-session"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if got := engine.MetricsSnapshot().Counters[MetricSessionExpired]; got != 1 {
		t.Fatalf("expected one expired-session metric, got %d", got)
	}
}
