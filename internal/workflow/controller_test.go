// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/internal/api"
	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/internal/httputil"
	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

const (
	authorEmail  = "author@example.com"
	editorEmail  = "editor@example.com"
	refereeEmail = "referee@example.com"
)

// fakeBackend simulates the journal backend for controller tests.
type fakeBackend struct {
	mu          sync.Mutex
	manuscripts map[string]types.Manuscript
	users       map[string]types.User

	// stateStatus, when non-zero, is returned for state-change PUTs
	// instead of applying the change.
	stateStatus int

	// stateDelay stalls the state-change response. When applyDespiteDelay
	// is set the change is applied before stalling, simulating a
	// backend that committed the write but whose response was lost.
	stateDelay        time.Duration
	applyDespiteDelay bool

	stateCalls    int
	withdrawCalls int

	ts *httptest.Server
}

func newFakeBackend(manuscripts ...types.Manuscript) *fakeBackend {
	fb := &fakeBackend{
		manuscripts: make(map[string]types.Manuscript),
		users: map[string]types.User{
			"u1": {Email: authorEmail, Name: "A. Uthor", RoleCodes: []types.Role{types.RoleAuthor}},
			"u2": {Email: editorEmail, Name: "E. Ditor", RoleCodes: []types.Role{types.RoleEditor}},
			"u3": {Email: refereeEmail, Name: "R. Eferee", RoleCodes: []types.Role{types.RoleReferee}},
		},
	}
	for _, m := range manuscripts {
		fb.manuscripts[m.ID] = m
	}
	fb.ts = httptest.NewServer(http.HandlerFunc(fb.handle))
	return fb
}

func (fb *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && path == "/manuscripts":
		fb.mu.Lock()
		defer fb.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"manuscripts": fb.manuscripts})

	case r.Method == http.MethodGet && path == "/user/read":
		fb.mu.Lock()
		defer fb.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"Users": fb.users})

	case r.Method == http.MethodPut && strings.HasPrefix(path, "/manuscript/state/"):
		fb.handleState(w, r, strings.TrimPrefix(path, "/manuscript/state/"))

	case r.Method == http.MethodPut && strings.HasPrefix(path, "/manuscript/withdraw/"):
		id := strings.TrimPrefix(path, "/manuscript/withdraw/")
		fb.mu.Lock()
		fb.withdrawCalls++
		m, ok := fb.manuscripts[id]
		if !ok {
			fb.mu.Unlock()
			http.Error(w, `{"error":"no such manuscript"}`, http.StatusNotFound)
			return
		}
		m.State = types.StateWithdrawn
		m.Version++
		fb.manuscripts[id] = m
		fb.mu.Unlock()

	case r.Method == http.MethodPut && strings.HasPrefix(path, "/manuscript/referee/"):
		id := strings.TrimPrefix(path, "/manuscript/referee/")
		var body struct {
			RefereeEmail string `json:"referee_email"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		fb.mu.Lock()
		m := fb.manuscripts[id]
		if m.Referees == nil {
			m.Referees = make(map[string]types.RefereeReport)
		}
		m.Referees[body.RefereeEmail] = types.RefereeReport{}
		m.Version++
		fb.manuscripts[id] = m
		fb.mu.Unlock()

	case r.Method == http.MethodDelete && strings.HasPrefix(path, "/manuscript/referee/"):
		id := strings.TrimPrefix(path, "/manuscript/referee/")
		email := r.URL.Query().Get("referee_email")
		fb.mu.Lock()
		m := fb.manuscripts[id]
		delete(m.Referees, email)
		m.Version++
		fb.manuscripts[id] = m
		fb.mu.Unlock()

	default:
		http.NotFound(w, r)
	}
}

func (fb *fakeBackend) handleState(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		State types.State `json:"state"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	fb.mu.Lock()
	fb.stateCalls++
	status := fb.stateStatus
	delay := fb.stateDelay
	apply := status == 0 && (delay == 0 || fb.applyDespiteDelay)
	if apply {
		m := fb.manuscripts[id]
		m.State = body.State
		m.Version++
		fb.manuscripts[id] = m
	}
	fb.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if status != 0 {
		http.Error(w, `{"error":"denied"}`, status)
	}
}

func (fb *fakeBackend) controller(userEmail string) *Controller {
	return &Controller{
		API: &api.Client{
			BaseURL:   fb.ts.URL,
			HTTP:      fb.ts.Client(),
			UserEmail: userEmail,
		},
		Timeout: 2 * time.Second,
	}
}

func (fb *fakeBackend) manuscript(id string) types.Manuscript {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.manuscripts[id]
}

func submitted() types.Manuscript {
	return types.Manuscript{
		ID:          "ms-1",
		Title:       "On Peer Review",
		Author:      "A. Uthor",
		AuthorEmail: authorEmail,
		State:       types.StateSubmitted,
		Version:     1,
	}
}

// --- tests ---

func TestRequestTransition_EditorSendsToReview(t *testing.T) {
	fb := newFakeBackend(submitted())
	defer fb.ts.Close()

	ctrl := fb.controller(editorEmail)
	m, err := ctrl.LoadManuscript(context.Background(), "ms-1")
	require.NoError(t, err)

	result, err := ctrl.RequestTransition(context.Background(), m, types.StateRefereeReview, []types.Role{types.RoleEditor})
	require.NoError(t, err)
	assert.False(t, result.NoOp)
	assert.False(t, result.VerifiedByRefetch)
	assert.Equal(t, types.StateRefereeReview, result.Manuscript.State)
	// The result is the re-fetched record, not a local patch.
	assert.Equal(t, 2, result.Manuscript.Version)
}

func TestRequestTransition_IllegalNeverReachesServer(t *testing.T) {
	fb := newFakeBackend(submitted())
	defer fb.ts.Close()

	// Authors cannot send their own manuscript to review.
	ctrl := fb.controller(authorEmail)
	m, err := ctrl.LoadManuscript(context.Background(), "ms-1")
	require.NoError(t, err)

	_, err = ctrl.RequestTransition(context.Background(), m, types.StateRefereeReview, []types.Role{types.RoleAuthor})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 0, fb.stateCalls)
	assert.Equal(t, types.StateSubmitted, fb.manuscript("ms-1").State)
}

func TestRequestTransition_AlreadyInTargetStateIsNoOp(t *testing.T) {
	fb := newFakeBackend(submitted())
	defer fb.ts.Close()

	ctrl := fb.controller(editorEmail)
	m, err := ctrl.LoadManuscript(context.Background(), "ms-1")
	require.NoError(t, err)

	result, err := ctrl.RequestTransition(context.Background(), m, types.StateSubmitted, []types.Role{types.RoleEditor})
	require.NoError(t, err)
	assert.True(t, result.NoOp)
	assert.NotEmpty(t, result.Warning)
	assert.Equal(t, 0, fb.stateCalls)
}

func TestRequestTransition_PermissionDenied(t *testing.T) {
	fb := newFakeBackend(submitted())
	defer fb.ts.Close()
	fb.stateStatus = http.StatusForbidden

	ctrl := fb.controller(editorEmail)
	m, err := ctrl.LoadManuscript(context.Background(), "ms-1")
	require.NoError(t, err)

	_, err = ctrl.RequestTransition(context.Background(), m, types.StateRefereeReview, []types.Role{types.RoleEditor})
	assert.ErrorIs(t, err, api.ErrPermissionDenied)
	// Local copy is untouched on a definitive backend refusal.
	assert.Equal(t, types.StateSubmitted, fb.manuscript("ms-1").State)
}

func TestRequestTransition_StaleVersion(t *testing.T) {
	fb := newFakeBackend(submitted())
	defer fb.ts.Close()
	fb.stateStatus = http.StatusConflict

	ctrl := fb.controller(editorEmail)
	m, err := ctrl.LoadManuscript(context.Background(), "ms-1")
	require.NoError(t, err)

	_, err = ctrl.RequestTransition(context.Background(), m, types.StateRefereeReview, []types.Role{types.RoleEditor})
	assert.ErrorIs(t, err, api.ErrStaleVersion)
}

func TestRequestTransition_TimeoutVerifiedByRefetch(t *testing.T) {
	fb := newFakeBackend(submitted())
	defer fb.ts.Close()

	// The backend applies the change but the response never arrives
	// within the transition timeout.
	fb.stateDelay = 400 * time.Millisecond
	fb.applyDespiteDelay = true

	ctrl := fb.controller(editorEmail)
	ctrl.Timeout = 100 * time.Millisecond

	m, err := ctrl.LoadManuscript(context.Background(), "ms-1")
	require.NoError(t, err)

	result, err := ctrl.RequestTransition(context.Background(), m, types.StateRefereeReview, []types.Role{types.RoleEditor})
	require.NoError(t, err)
	assert.True(t, result.VerifiedByRefetch)
	assert.NotEmpty(t, result.Warning)
	assert.Equal(t, types.StateRefereeReview, result.Manuscript.State)
}

func TestRequestTransition_TimeoutWithoutEffectIsIndeterminate(t *testing.T) {
	fb := newFakeBackend(submitted())
	defer fb.ts.Close()

	// The backend stalls and never applies the change.
	fb.stateDelay = 400 * time.Millisecond

	ctrl := fb.controller(editorEmail)
	ctrl.Timeout = 100 * time.Millisecond

	m, err := ctrl.LoadManuscript(context.Background(), "ms-1")
	require.NoError(t, err)

	_, err = ctrl.RequestTransition(context.Background(), m, types.StateRefereeReview, []types.Role{types.RoleEditor})
	assert.ErrorIs(t, err, ErrIndeterminate)
	assert.Equal(t, types.StateSubmitted, fb.manuscript("ms-1").State)
}

func TestRequestTransition_WithdrawUsesDedicatedEndpoint(t *testing.T) {
	fb := newFakeBackend(submitted())
	defer fb.ts.Close()

	ctrl := fb.controller(authorEmail)
	m, err := ctrl.LoadManuscript(context.Background(), "ms-1")
	require.NoError(t, err)

	result, err := ctrl.RequestTransition(context.Background(), m, types.StateWithdrawn, nil)
	require.NoError(t, err)
	assert.Equal(t, types.StateWithdrawn, result.Manuscript.State)
	assert.Equal(t, 1, fb.withdrawCalls)
	assert.Equal(t, 0, fb.stateCalls)

	// Once withdrawn, nothing further is possible for anyone.
	again, err := ctrl.LoadManuscript(context.Background(), "ms-1")
	require.NoError(t, err)
	_, err = ctrl.RequestTransition(context.Background(), again, types.StateSubmitted, []types.Role{types.RoleEditor})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRequestTransition_FullPipelineScenario(t *testing.T) {
	// AUTHOR_REVISIONS -> author submits revisions -> EDITOR_REVIEW ->
	// editor rejects -> REJECTED (terminal).
	m := submitted()
	m.State = types.StateAuthorRevisions
	fb := newFakeBackend(m)
	defer fb.ts.Close()

	author := fb.controller(authorEmail)
	loaded, err := author.LoadManuscript(context.Background(), "ms-1")
	require.NoError(t, err)

	result, err := author.RequestTransition(context.Background(), loaded, types.StateEditorReview, []types.Role{types.RoleAuthor})
	require.NoError(t, err)
	assert.Equal(t, types.StateEditorReview, result.Manuscript.State)

	editor := fb.controller(editorEmail)
	result, err = editor.RequestTransition(context.Background(), result.Manuscript, types.StateRejected, []types.Role{types.RoleEditor})
	require.NoError(t, err)
	assert.Equal(t, types.StateRejected, result.Manuscript.State)

	_, err = editor.RequestTransition(context.Background(), result.Manuscript, types.StateRefereeReview, []types.Role{types.RoleEditor})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestLoadManuscript_NotFound(t *testing.T) {
	fb := newFakeBackend()
	defer fb.ts.Close()

	_, err := fb.controller(editorEmail).LoadManuscript(context.Background(), "missing")
	assert.ErrorIs(t, err, api.ErrNotFound)
}
