// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/pkg/types"
)

const (
	authorEmail  = "author@example.com"
	editorEmail  = "editor@example.com"
	refereeEmail = "referee@example.com"
	otherEmail   = "other@example.com"
)

func sampleManuscript(s types.State) *types.Manuscript {
	return &types.Manuscript{
		ID:          "ms-1",
		Title:       "Efficient Peer Review",
		AuthorEmail: authorEmail,
		State:       s,
	}
}

func targets(actions []Action) []types.State {
	var out []types.State
	for _, a := range actions {
		if !a.Edit {
			out = append(out, a.Target)
		}
	}
	return out
}

// TestTransitionTable checks every (state, actor) pair against the full
// transition table: listed transitions are offered, nothing else is.
func TestTransitionTable(t *testing.T) {
	type actor struct {
		name  string
		email string
		roles []types.Role
	}
	editor := actor{"editor", editorEmail, []types.Role{types.RoleEditor}}
	owner := actor{"owner", authorEmail, []types.Role{types.RoleAuthor}}
	referee := actor{"assigned referee", refereeEmail, []types.Role{types.RoleReferee}}
	stranger := actor{"stranger", otherEmail, []types.Role{types.RoleAuthor, types.RoleReferee}}

	tests := []struct {
		state types.State
		actor actor
		want  []types.State
	}{
		{types.StateSubmitted, editor, []types.State{types.StateRefereeReview, types.StateRejected}},
		{types.StateSubmitted, owner, []types.State{types.StateWithdrawn}},
		{types.StateSubmitted, referee, nil},
		{types.StateSubmitted, stranger, nil},

		{types.StateRefereeReview, editor, []types.State{types.StateSubmitted, types.StateRejected, types.StateAuthorRevisions}},
		{types.StateRefereeReview, owner, []types.State{types.StateWithdrawn}},
		{types.StateRefereeReview, referee, []types.State{types.StateEditorReview, types.StateRejected}},
		{types.StateRefereeReview, stranger, nil},

		{types.StateAuthorRevisions, editor, []types.State{types.StateRejected}},
		{types.StateAuthorRevisions, owner, []types.State{types.StateEditorReview, types.StateWithdrawn}},
		{types.StateAuthorRevisions, referee, nil},

		{types.StateEditorReview, editor, []types.State{types.StateCopyEdit, types.StateRejected}},
		{types.StateEditorReview, owner, []types.State{types.StateWithdrawn}},
		{types.StateEditorReview, referee, nil},

		{types.StateCopyEdit, editor, []types.State{types.StateAuthorReview}},
		{types.StateCopyEdit, owner, []types.State{types.StateWithdrawn}},

		{types.StateAuthorReview, editor, nil},
		{types.StateAuthorReview, owner, []types.State{types.StateFormatting, types.StateWithdrawn}},

		{types.StateFormatting, editor, []types.State{types.StatePublished}},
		{types.StateFormatting, owner, []types.State{types.StateWithdrawn}},
	}

	for _, tt := range tests {
		t.Run(string(tt.state)+"/"+tt.actor.name, func(t *testing.T) {
			m := sampleManuscript(tt.state)
			m.Referees = map[string]types.RefereeReport{refereeEmail: {}}

			got := targets(AvailableActions(m, tt.actor.email, tt.actor.roles))
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestTerminalStatesHaveNoActions(t *testing.T) {
	allRoles := []types.Role{types.RoleAuthor, types.RoleEditor, types.RoleReferee}

	for _, s := range []types.State{types.StatePublished, types.StateRejected, types.StateWithdrawn} {
		m := sampleManuscript(s)
		m.Referees = map[string]types.RefereeReport{authorEmail: {}}

		// Even an owner-editor-referee sees nothing.
		assert.Empty(t, AvailableActions(m, authorEmail, allRoles), "state %s", s)
		assert.True(t, Terminal(s))
	}
}

func TestEditActionOnlyForOwnerInAuthorRevisions(t *testing.T) {
	m := sampleManuscript(types.StateAuthorRevisions)

	assert.True(t, CanEdit(m, authorEmail, []types.Role{types.RoleAuthor}))
	// Ownership is the gate, not the AUTHOR role tag.
	assert.True(t, CanEdit(m, authorEmail, nil))
	assert.False(t, CanEdit(m, editorEmail, []types.Role{types.RoleEditor}))

	for _, s := range All() {
		if s == types.StateAuthorRevisions {
			continue
		}
		assert.False(t, CanEdit(sampleManuscript(s), authorEmail, nil), "state %s", s)
	}
}

func TestIsActingReferee(t *testing.T) {
	m := sampleManuscript(types.StateRefereeReview)

	// Unassigned manuscript matches nobody.
	assert.False(t, IsActingReferee(m, refereeEmail))

	m.Referees = map[string]types.RefereeReport{refereeEmail: {}}
	assert.True(t, IsActingReferee(m, refereeEmail))
	assert.False(t, IsActingReferee(m, otherEmail))

	// Case-insensitive and whitespace-trimmed.
	assert.True(t, IsActingReferee(m, "  Referee@Example.COM "))

	// Legacy single-email shape.
	legacy := sampleManuscript(types.StateRefereeReview)
	legacy.RefereeEmail = refereeEmail
	assert.True(t, IsActingReferee(legacy, refereeEmail))
	assert.False(t, IsActingReferee(legacy, otherEmail))
}

func TestRefereeActionsRequireAssignment(t *testing.T) {
	m := sampleManuscript(types.StateRefereeReview)
	m.Referees = map[string]types.RefereeReport{refereeEmail: {}}

	// The assigned referee sees accept/reject.
	got := targets(AvailableActions(m, refereeEmail, []types.Role{types.RoleReferee}))
	assert.ElementsMatch(t, []types.State{types.StateEditorReview, types.StateRejected}, got)

	// A user with the REFEREE role but no assignment sees nothing.
	assert.Empty(t, AvailableActions(m, otherEmail, []types.Role{types.RoleReferee}))
}

func TestFind(t *testing.T) {
	m := sampleManuscript(types.StateSubmitted)
	roles := []types.Role{types.RoleEditor}

	action := Find(m, editorEmail, roles, types.StateRefereeReview)
	require.NotNil(t, action)
	assert.Equal(t, types.StateRefereeReview, action.Target)
	assert.False(t, action.RequiresConfirmation)

	reject := Find(m, editorEmail, roles, types.StateRejected)
	require.NotNil(t, reject)
	assert.True(t, reject.RequiresConfirmation)

	// Editors cannot withdraw someone else's manuscript.
	assert.Nil(t, Find(m, editorEmail, roles, types.StateWithdrawn))
	// The owner can, and it asks for confirmation.
	withdraw := Find(m, authorEmail, nil, types.StateWithdrawn)
	require.NotNil(t, withdraw)
	assert.True(t, withdraw.RequiresConfirmation)
}

func TestMultiRoleUserSeesUnionOfActions(t *testing.T) {
	// Author-editors exist; both action sets apply.
	m := sampleManuscript(types.StateSubmitted)
	got := targets(AvailableActions(m, authorEmail, []types.Role{types.RoleAuthor, types.RoleEditor}))
	assert.ElementsMatch(t, []types.State{types.StateRefereeReview, types.StateRejected, types.StateWithdrawn}, got)
}

func TestValid(t *testing.T) {
	for _, s := range All() {
		assert.True(t, Valid(s))
	}
	assert.False(t, Valid(types.State("IN_LIMBO")))
	assert.False(t, Valid(types.State("")))
}
