// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workflow bridges the manuscript state machine to the backend.
// It validates actions client-side before any network call, issues the
// transition, and reconciles ambiguous outcomes (timeouts, lost
// responses) by re-fetching and comparing states. The backend remains
// the authority; nothing here trusts an optimistic local patch.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/internal/api"
	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/internal/state"
	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/pkg/types"
)

var (
	// ErrInvalidTransition means the requested action is not legal for
	// the current (state, role, ownership) combination. It is raised
	// client-side; the request never reaches the backend.
	ErrInvalidTransition = errors.New("transition not permitted for current state and role")

	// ErrIndeterminate means a transition was sent but neither the
	// response nor a verification re-fetch could confirm the outcome.
	// The true state is unknown until the manuscript is re-read.
	ErrIndeterminate = errors.New("transition outcome unknown")

	// ErrNotEditor guards the editor-only referee operations.
	ErrNotEditor = errors.New("editor role required")
)

// DefaultTransitionTimeout bounds how long a transition request may
// wait before falling into the re-fetch reconciliation path.
const DefaultTransitionTimeout = 10 * time.Second

// Controller orchestrates manuscript operations against the backend.
type Controller struct {
	API *api.Client

	// Timeout bounds each transition request. Zero means
	// DefaultTransitionTimeout.
	Timeout time.Duration
}

// Result is the outcome of a confirmed transition.
type Result struct {
	// Manuscript is the freshly re-fetched record after the change.
	Manuscript *types.Manuscript

	// VerifiedByRefetch is true when the backend's response was lost
	// and success was established by re-fetching and comparing states.
	VerifiedByRefetch bool

	// NoOp is true when the manuscript was already in the target
	// state and no request was sent.
	NoOp bool

	// Warning carries a non-fatal message for the user.
	Warning string
}

func (c *Controller) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTransitionTimeout
}

// LoadManuscript fetches one manuscript. A missing ID surfaces as
// api.ErrNotFound; any failure is recoverable by retrying the load.
func (c *Controller) LoadManuscript(ctx context.Context, id string) (*types.Manuscript, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	m, err := c.API.Manuscript(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading manuscript %s: %w", id, err)
	}
	return m, nil
}

// RequestTransition moves a manuscript to target on behalf of the
// acting user.
//
// The action is validated against the state machine first: an illegal
// target returns ErrInvalidTransition without touching the network. A
// manuscript already in the target state is a graceful no-op. The
// request itself is bounded by the controller timeout; if the call
// fails without a definitive backend verdict, the manuscript is
// re-fetched and its state compared against the target - a match is
// success with a warning, anything else is ErrIndeterminate. Confirmed
// success always returns the re-fetched record, never a local patch.
func (c *Controller) RequestTransition(ctx context.Context, m *types.Manuscript, target types.State, roles []types.Role) (*Result, error) {
	if m.State == target {
		// Re-transition to the current state: nothing to do.
		return &Result{
			Manuscript: m,
			NoOp:       true,
			Warning:    fmt.Sprintf("manuscript already in state %s", target),
		}, nil
	}

	action := state.Find(m, c.API.UserEmail, roles, target)
	if action == nil {
		return nil, fmt.Errorf("%s -> %s: %w", m.State, target, ErrInvalidTransition)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout())
	var err error
	if target == types.StateWithdrawn {
		// Withdrawal goes through its dedicated endpoint.
		err = c.API.Withdraw(callCtx, m.ID)
	} else {
		err = c.API.ChangeState(callCtx, m.ID, target, m.Version)
	}
	cancel()

	if err == nil {
		fresh, fetchErr := c.LoadManuscript(ctx, m.ID)
		if fetchErr != nil {
			// The change is confirmed; only the refresh failed.
			return &Result{
				Manuscript: m,
				Warning:    fmt.Sprintf("state changed to %s but refresh failed: %v", target, fetchErr),
			}, nil
		}
		return &Result{Manuscript: fresh}, nil
	}

	// A definitive backend verdict (403/404/409/5xx body) is final.
	var se *api.StatusError
	if errors.As(err, &se) {
		return nil, fmt.Errorf("changing state to %s: %w", target, err)
	}

	// Timeout or transport failure: the request may or may not have
	// been applied. Verify by re-fetch-and-compare rather than
	// assuming failure.
	fresh, fetchErr := c.LoadManuscript(ctx, m.ID)
	if fetchErr != nil {
		return nil, fmt.Errorf("%w: request failed (%v) and verification fetch failed (%v)", ErrIndeterminate, err, fetchErr)
	}
	if fresh.State == target {
		return &Result{
			Manuscript:        fresh,
			VerifiedByRefetch: true,
			Warning:           "backend response was lost; change verified by re-fetch",
		}, nil
	}
	return nil, fmt.Errorf("%w: request failed (%v) and manuscript is still in state %s", ErrIndeterminate, err, fresh.State)
}

// UpdateContent saves new text and abstract for a manuscript in author
// revisions. The state does not change. The dedicated text endpoint is
// tried first; some backend deployments lack it, so a full-record
// update is the fallback.
func (c *Controller) UpdateContent(ctx context.Context, m *types.Manuscript, newText, newAbstract string, roles []types.Role) (*types.Manuscript, error) {
	if !state.CanEdit(m, c.API.UserEmail, roles) {
		return nil, fmt.Errorf("editing %s in state %s: %w", m.ID, m.State, ErrInvalidTransition)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout())
	err := c.API.UpdateText(callCtx, m.ID, newText, newAbstract)
	cancel()

	if err != nil {
		payload := manuscriptPayload(m)
		payload["text"] = newText
		payload["abstract"] = newAbstract

		callCtx, cancel := context.WithTimeout(ctx, c.timeout())
		fallbackErr := c.API.Update(callCtx, m.ID, payload)
		cancel()
		if fallbackErr != nil {
			return nil, fmt.Errorf("saving manuscript content: %w", fallbackErr)
		}
	}

	return c.LoadManuscript(ctx, m.ID)
}

// manuscriptPayload flattens a manuscript into the wire map used by the
// generic update endpoint.
func manuscriptPayload(m *types.Manuscript) map[string]any {
	payload := map[string]any{
		"id":           m.ID,
		"title":        m.Title,
		"abstract":     m.Abstract,
		"text":         m.Text,
		"author":       m.Author,
		"author_email": m.AuthorEmail,
		"state":        m.State,
	}
	if m.AuthorAffiliation != "" {
		payload["author_affiliation"] = m.AuthorAffiliation
	}
	if m.Version > 0 {
		payload["version"] = m.Version
	}
	if m.RefereeEmail != "" {
		payload["referee_email"] = m.RefereeEmail
	}
	if len(m.Referees) > 0 {
		payload["referees"] = m.Referees
	}
	return payload
}
