// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package review implements referee review submission. The backend has
// historically accepted review payloads under several field-name shapes
// with no guaranteed persistence, so submission writes to the local
// durable cache first and treats the cache as the presentation source
// of truth for the referee's own review.
package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/internal/api"
	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/internal/state"
	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/pkg/types"
)

var (
	// ErrNotActingReferee means the acting user is not an assigned
	// referee of the manuscript.
	ErrNotActingReferee = errors.New("not an assigned referee of this manuscript")

	// ErrWrongState means the manuscript is not under referee review.
	ErrWrongState = errors.New("manuscript is not in referee review")

	// ErrEmptyReview means report or verdict is missing.
	ErrEmptyReview = errors.New("review requires a report and a verdict")

	// ErrBackendUnconfirmed means every backend write path failed and
	// the local cache holds the only copy of the review.
	ErrBackendUnconfirmed = errors.New("review saved locally but not confirmed by the backend")
)

// Cache is the durable local store the flow writes through. Cache
// failures never block the network path; they degrade to warnings.
type Cache interface {
	Put(ctx context.Context, manuscriptID, refereeEmail string, review types.Review) error
	Get(ctx context.Context, manuscriptID, refereeEmail string) (*types.Review, error)
	Delete(ctx context.Context, manuscriptID, refereeEmail string) error
}

// Flow is the review submission sub-flow.
type Flow struct {
	API   *api.Client
	Cache Cache
}

// Source identifies where a displayed review came from.
type Source string

const (
	SourceCache   Source = "local cache"
	SourceBackend Source = "backend"
)

// Submit records a referee review for the manuscript.
//
// The review is written to the local cache before any network call.
// The dedicated review endpoint is tried first; if it fails, a direct
// manuscript update carrying the report under every field name the
// backend has ever honored is the fallback, then a bare POST as last
// resort. When all three fail the cache entry is the only record and
// ErrBackendUnconfirmed is returned. Warnings go to w.
func (f *Flow) Submit(ctx context.Context, m *types.Manuscript, report string, verdict types.Verdict, w io.Writer) error {
	if m.State != types.StateRefereeReview {
		return fmt.Errorf("submitting review for %s in state %s: %w", m.ID, m.State, ErrWrongState)
	}
	email := f.API.UserEmail
	if !state.IsActingReferee(m, email) {
		return fmt.Errorf("submitting review for %s as %s: %w", m.ID, email, ErrNotActingReferee)
	}
	if report == "" || !verdict.Valid() {
		return ErrEmptyReview
	}

	rec := types.Review{
		Report:      report,
		Verdict:     verdict,
		SubmittedAt: time.Now(),
	}

	// Cache first: a lost backend write must not lose the referee's work.
	if err := f.Cache.Put(ctx, m.ID, email, rec); err != nil {
		fmt.Fprintf(w, "warning: could not cache review locally: %v\n", err)
	}

	if err := f.API.SubmitReview(ctx, m.ID, report, verdict); err == nil {
		return nil
	} else {
		fmt.Fprintf(w, "warning: review endpoint failed, trying direct manuscript update: %v\n", err)
	}

	if err := f.API.Update(ctx, m.ID, redundantReviewPayload(m, email, rec)); err == nil {
		return nil
	} else {
		fmt.Fprintf(w, "warning: direct manuscript update failed: %v\n", err)
	}

	lastResort := map[string]any{
		"id":      m.ID,
		"review":  report,
		"verdict": verdict,
	}
	if err := f.API.Post(ctx, lastResort); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnconfirmed, err)
	}
	return nil
}

// redundantReviewPayload builds a full-record update that spells the
// review out under every field name observed across backend schema
// revisions, to maximize the chance the current one persists something.
func redundantReviewPayload(m *types.Manuscript, email string, rec types.Review) map[string]any {
	referees := make(map[string]types.RefereeReport, len(m.Referees)+1)
	for k, v := range m.Referees {
		referees[k] = v
	}
	referees[email] = types.RefereeReport{Report: rec.Report, Verdict: rec.Verdict}

	return map[string]any{
		"id":             m.ID,
		"title":          m.Title,
		"abstract":       m.Abstract,
		"text":           m.Text,
		"author":         m.Author,
		"author_email":   m.AuthorEmail,
		"state":          m.State,
		"referee_review": rec.Report,
		"referee_verdict": rec.Verdict,
		"review":         rec.Report,
		"verdict":        rec.Verdict,
		"report":         rec.Report,
		"review_report":  rec.Report,
		"referees":       referees,
	}
}

// Display resolves the review shown for the acting referee on m. The
// local cache wins when an entry exists; backend-reported referee
// fields are the fallback. Returns nil when neither has a review.
// Cache read failures degrade to the backend value with a warning.
func (f *Flow) Display(ctx context.Context, m *types.Manuscript, w io.Writer) (*types.Review, Source) {
	email := f.API.UserEmail

	cached, err := f.Cache.Get(ctx, m.ID, email)
	if err != nil {
		fmt.Fprintf(w, "warning: could not read local review cache: %v\n", err)
	}
	if cached != nil {
		return cached, SourceCache
	}

	if report := m.RefereeReportFor(email); report != nil && (report.Report != "" || report.Verdict != "") {
		return &types.Review{Report: report.Report, Verdict: report.Verdict}, SourceBackend
	}
	return nil, ""
}

// Clear removes the acting referee's cached review for m, enabling a
// resubmission. Destructive; callers must confirm with the user first.
func (f *Flow) Clear(ctx context.Context, manuscriptID string) error {
	return f.Cache.Delete(ctx, manuscriptID, f.API.UserEmail)
}
