package stores

import (
	"context"
	"errors"

	"github.com/MrEthical07/permflow/catalog"
)

// ErrSessionNotFound is returned when the edit session does not exist or
// has expired.
var ErrSessionNotFound = errors.New("edit session not found")

// ErrSessionUnavailable wraps backend failures of the session store.
var ErrSessionUnavailable = errors.New("session store unavailable")

// PageSelection is one page's worth of selected permission keys. Subject
// context uses Keys; scope context uses the three-way Allow/Deny/Clear
// lists. Re-selecting a page replaces its prior PageSelection wholesale.
type PageSelection struct {
	Keys  []string
	Allow []string
	Deny  []string
	Clear []string
}

func (p PageSelection) empty() bool {
	return len(p.Keys) == 0 && len(p.Allow) == 0 && len(p.Deny) == 0 && len(p.Clear) == 0
}

// EditSession is the durable state of one in-progress permission edit.
// Selections from different pages are unioned at mask-computation time;
// AllSelected is a sentinel that overrides page selections until cleared.
type EditSession struct {
	ID          string
	Context     catalog.Context
	Mode        uint8
	AgentID     string
	TargetID    string
	ScopeID     string
	AllSelected bool
	Pages       map[int]PageSelection
	CreatedAt   int64
	ExpiresAt   int64
}

// Clone returns a deep copy, so callers can hold a session across store
// mutations without aliasing.
func (s *EditSession) Clone() *EditSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Pages = make(map[int]PageSelection, len(s.Pages))
	for idx, sel := range s.Pages {
		out.Pages[idx] = PageSelection{
			Keys:  append([]string(nil), sel.Keys...),
			Allow: append([]string(nil), sel.Allow...),
			Deny:  append([]string(nil), sel.Deny...),
			Clear: append([]string(nil), sel.Clear...),
		}
	}
	return &out
}

// SessionStore is the contract the workflow engine holds against session
// persistence. Every mutation refreshes the session's idle TTL.
type SessionStore interface {
	Create(ctx context.Context, s *EditSession) error
	Get(ctx context.Context, id string) (*EditSession, error)
	SetPage(ctx context.Context, id string, page int, sel PageSelection) error
	MarkAll(ctx context.Context, id string, all bool) error
	Delete(ctx context.Context, id string) error
	Close() error
}
