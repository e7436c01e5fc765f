// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"sort"
	"strings"
)

// State is one value from the manuscript lifecycle enum. A manuscript
// holds exactly one state at any time.
type State string

const (
	StateSubmitted       State = "SUBMITTED"
	StateRefereeReview   State = "REFEREE_REVIEW"
	StateAuthorRevisions State = "AUTHOR_REVISIONS"
	StateEditorReview    State = "EDITOR_REVIEW"
	StateCopyEdit        State = "COPY_EDIT"
	StateAuthorReview    State = "AUTHOR_REVIEW"
	StateFormatting      State = "FORMATTING"
	StatePublished       State = "PUBLISHED"
	StateRejected        State = "REJECTED"
	StateWithdrawn       State = "WITHDRAWN"
)

// RefereeReport is one referee's entry in a manuscript's referees map.
type RefereeReport struct {
	Report  string  `json:"report" yaml:"report"`
	Verdict Verdict `json:"verdict" yaml:"verdict"`
}

// Manuscript holds a submitted work tracked through the editorial
// pipeline. Field names follow the backend wire format.
//
// The backend has shipped two referee shapes over time: a single
// referee_email string and a referees map keyed by email. Both are kept
// here so either wire form decodes; callers should go through
// RefereeEmails and HasReferee rather than touching the raw fields.
type Manuscript struct {
	// ID is the opaque identifier assigned by the backend.
	ID string `json:"id" yaml:"id"`

	Title    string `json:"title" yaml:"title"`
	Abstract string `json:"abstract" yaml:"abstract"`
	Text     string `json:"text" yaml:"text"`

	// Author identity is immutable after creation.
	Author            string `json:"author" yaml:"author"`
	AuthorEmail       string `json:"author_email" yaml:"author_email"`
	AuthorAffiliation string `json:"author_affiliation,omitempty" yaml:"author_affiliation,omitempty"`

	State State `json:"state" yaml:"state"`

	// Version increases monotonically on every server-side mutation.
	Version int `json:"version,omitempty" yaml:"version,omitempty"`

	// RefereeEmail is the legacy single-referee shape.
	RefereeEmail string `json:"referee_email,omitempty" yaml:"referee_email,omitempty"`

	// Referees is the current map shape: referee email to report.
	Referees map[string]RefereeReport `json:"referees,omitempty" yaml:"referees,omitempty"`
}

// RefereeEmails returns the normalized referee set, merging both wire
// shapes, lowercased and sorted.
func (m *Manuscript) RefereeEmails() []string {
	seen := make(map[string]bool)
	for email := range m.Referees {
		if key := normalizeEmail(email); key != "" {
			seen[key] = true
		}
	}
	if key := normalizeEmail(m.RefereeEmail); key != "" {
		seen[key] = true
	}

	emails := make([]string, 0, len(seen))
	for email := range seen {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	return emails
}

// HasReferee reports whether email matches an assigned referee,
// case-insensitively and ignoring surrounding whitespace.
func (m *Manuscript) HasReferee(email string) bool {
	key := normalizeEmail(email)
	if key == "" {
		return false
	}
	for _, assigned := range m.RefereeEmails() {
		if assigned == key {
			return true
		}
	}
	return false
}

// RefereeReportFor returns the backend-reported report for email, or nil
// if the referees map has no entry under that email.
func (m *Manuscript) RefereeReportFor(email string) *RefereeReport {
	key := normalizeEmail(email)
	for assigned, report := range m.Referees {
		if normalizeEmail(assigned) == key {
			r := report
			return &r
		}
	}
	return nil
}

// IsAuthor reports whether email is the submitting author's email.
func (m *Manuscript) IsAuthor(email string) bool {
	key := normalizeEmail(email)
	return key != "" && key == normalizeEmail(m.AuthorEmail)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
