// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"context"
	"fmt"
	"sort"

	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/internal/state"
	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/pkg/types"
)

// AssignReferee attaches a referee to a manuscript. Editor-only; the
// manuscript is re-fetched on success so callers see the assignment
// the backend recorded, and a failure is inline-recoverable rather
// than fatal.
func (c *Controller) AssignReferee(ctx context.Context, m *types.Manuscript, refereeEmail string, roles []types.Role) (*types.Manuscript, error) {
	if err := requireEditor(m, roles); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout())
	err := c.API.AssignReferee(callCtx, m.ID, refereeEmail)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("assigning referee %s: %w", refereeEmail, err)
	}

	return c.LoadManuscript(ctx, m.ID)
}

// RemoveReferee detaches a referee from a manuscript. Editor-only and
// destructive; callers must confirm with the user before invoking.
func (c *Controller) RemoveReferee(ctx context.Context, m *types.Manuscript, refereeEmail string, roles []types.Role) (*types.Manuscript, error) {
	if err := requireEditor(m, roles); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout())
	err := c.API.RemoveReferee(callCtx, m.ID, refereeEmail)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("removing referee %s: %w", refereeEmail, err)
	}

	return c.LoadManuscript(ctx, m.ID)
}

func requireEditor(m *types.Manuscript, roles []types.Role) error {
	if !types.HasRole(roles, types.RoleEditor) {
		return fmt.Errorf("managing referees on %s: %w", m.ID, ErrNotEditor)
	}
	if state.Terminal(m.State) {
		return fmt.Errorf("managing referees on %s in terminal state %s: %w", m.ID, m.State, ErrInvalidTransition)
	}
	return nil
}

// RefereeCandidates returns the users eligible for referee assignment:
// everyone whose role set contains REFEREE, sorted by email. Any
// candidate may be assigned regardless of current load; there is no
// workload balancing.
func RefereeCandidates(users map[string]types.User) []types.User {
	var candidates []types.User
	for _, u := range users {
		if u.HasRole(types.RoleReferee) {
			candidates = append(candidates, u)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Email < candidates[j].Email
	})
	return candidates
}
