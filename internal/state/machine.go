// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package state is the manuscript lifecycle state machine: which states
// exist, which transitions are legal, and who may trigger each one. It
// is a pure table over (state, roles, ownership, referee assignment)
// with no I/O; the server remains authoritative and these checks are
// advisory for the client.
package state

import (
	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/pkg/types"
)

// Action is one operation the acting user may perform on a manuscript
// in its current state.
type Action struct {
	// Label is the human-readable action name.
	Label string

	// Target is the resulting state. Empty for content-only actions.
	Target types.State

	// Edit marks the author content edit in AUTHOR_REVISIONS, which
	// mutates text/abstract without changing state.
	Edit bool

	// RequiresConfirmation marks destructive actions (reject,
	// withdraw) that need explicit user confirmation before the
	// network call is made.
	RequiresConfirmation bool
}

// All lists every lifecycle state in pipeline order.
func All() []types.State {
	return []types.State{
		types.StateSubmitted,
		types.StateRefereeReview,
		types.StateAuthorRevisions,
		types.StateEditorReview,
		types.StateCopyEdit,
		types.StateAuthorReview,
		types.StateFormatting,
		types.StatePublished,
		types.StateRejected,
		types.StateWithdrawn,
	}
}

// Valid reports whether s is a known lifecycle state.
func Valid(s types.State) bool {
	for _, known := range All() {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func Terminal(s types.State) bool {
	switch s {
	case types.StatePublished, types.StateRejected, types.StateWithdrawn:
		return true
	}
	return false
}

// IsActingReferee reports whether email identifies a referee currently
// assigned to the manuscript. Matching is case-insensitive and ignores
// surrounding whitespace; an unassigned manuscript matches nobody.
func IsActingReferee(m *types.Manuscript, email string) bool {
	return m.HasReferee(email)
}

// AvailableActions returns the actions the acting user may perform on
// the manuscript in its current state. Role checks test membership in
// the role set; ownership is an author_email match; the referee
// accept/reject pair is additionally gated on being an assigned
// referee, independent of role tags.
func AvailableActions(m *types.Manuscript, email string, roles []types.Role) []Action {
	isEditor := types.HasRole(roles, types.RoleEditor)
	isAuthor := m.IsAuthor(email)

	var actions []Action

	withdraw := Action{
		Label:                "Withdraw",
		Target:               types.StateWithdrawn,
		RequiresConfirmation: true,
	}
	reject := Action{
		Label:                "Reject",
		Target:               types.StateRejected,
		RequiresConfirmation: true,
	}

	switch m.State {
	case types.StateSubmitted:
		if isEditor {
			actions = append(actions,
				Action{Label: "Move to Referee Review", Target: types.StateRefereeReview},
				reject,
			)
		}
		if isAuthor {
			actions = append(actions, withdraw)
		}

	case types.StateRefereeReview:
		if isEditor {
			actions = append(actions,
				Action{Label: "Move back to Submitted", Target: types.StateSubmitted},
				reject,
				Action{Label: "Request Author Revisions", Target: types.StateAuthorRevisions},
			)
		}
		if isAuthor {
			actions = append(actions, withdraw)
		}
		if IsActingReferee(m, email) {
			actions = append(actions,
				Action{Label: "Referee Accept", Target: types.StateEditorReview},
				Action{Label: "Referee Reject", Target: types.StateRejected, RequiresConfirmation: true},
			)
		}

	case types.StateAuthorRevisions:
		if isAuthor {
			actions = append(actions,
				Action{Label: "Edit Manuscript", Edit: true},
				Action{Label: "Submit Revisions", Target: types.StateEditorReview},
				withdraw,
			)
		}
		if isEditor {
			actions = append(actions, reject)
		}

	case types.StateEditorReview:
		if isEditor {
			actions = append(actions,
				Action{Label: "Accept", Target: types.StateCopyEdit},
				reject,
			)
		}
		if isAuthor {
			actions = append(actions, withdraw)
		}

	case types.StateCopyEdit:
		if isEditor {
			actions = append(actions,
				Action{Label: "Mark Complete", Target: types.StateAuthorReview},
			)
		}
		if isAuthor {
			actions = append(actions, withdraw)
		}

	case types.StateAuthorReview:
		if isAuthor {
			actions = append(actions,
				Action{Label: "Mark Complete", Target: types.StateFormatting},
				withdraw,
			)
		}

	case types.StateFormatting:
		if isEditor {
			actions = append(actions,
				Action{Label: "Mark Complete", Target: types.StatePublished},
			)
		}
		if isAuthor {
			actions = append(actions, withdraw)
		}

		// Terminal states: no actions for anyone.
	}

	return actions
}

// Find returns the available action whose target is target, or nil when
// no such action exists for (manuscript, user). Edit actions are never
// matched by target.
func Find(m *types.Manuscript, email string, roles []types.Role, target types.State) *Action {
	for _, a := range AvailableActions(m, email, roles) {
		if !a.Edit && a.Target == target {
			action := a
			return &action
		}
	}
	return nil
}

// CanEdit reports whether the acting user may edit the manuscript's
// text and abstract in place (author-only, AUTHOR_REVISIONS only).
func CanEdit(m *types.Manuscript, email string, roles []types.Role) bool {
	for _, a := range AvailableActions(m, email, roles) {
		if a.Edit {
			return true
		}
	}
	return false
}
