// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Verdict is a referee's categorical recommendation.
type Verdict string

const (
	VerdictAccept              Verdict = "ACCEPT"
	VerdictReject              Verdict = "REJECT"
	VerdictAcceptWithRevisions Verdict = "ACCEPT_WITH_REVISIONS"

	// Legacy verdicts from earlier backend schemas. They display as
	// "Accept with Revisions" but are preserved on the wire as-is.
	VerdictMinorRevisions Verdict = "MINOR_REVISIONS"
	VerdictMajorRevisions Verdict = "MAJOR_REVISIONS"
)

// Valid reports whether v is a known verdict, legacy forms included.
func (v Verdict) Valid() bool {
	switch v {
	case VerdictAccept, VerdictReject, VerdictAcceptWithRevisions,
		VerdictMinorRevisions, VerdictMajorRevisions:
		return true
	}
	return false
}

// DisplayLabel returns the human-readable verdict. The two legacy
// revision verdicts fold into the same display bucket.
func (v Verdict) DisplayLabel() string {
	switch v {
	case VerdictAccept:
		return "Accept"
	case VerdictReject:
		return "Reject"
	case VerdictAcceptWithRevisions, VerdictMinorRevisions, VerdictMajorRevisions:
		return "Accept with Revisions"
	}
	return string(v)
}

// Review is the record a referee submits for a manuscript. SubmittedAt
// is used only for display and ordering.
type Review struct {
	Report      string    `json:"report" yaml:"report"`
	Verdict     Verdict   `json:"verdict" yaml:"verdict"`
	SubmittedAt time.Time `json:"timestamp" yaml:"timestamp"`
}
