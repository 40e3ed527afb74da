package practice

import "github.com/ccnaprep/ccnaprep/internal/coord"

// verifySettledMsg carries a finished verification request.
type verifySettledMsg struct {
	owner      *PracticeScreen
	Settlement coord.Settlement
}

// verifyDueMsg fires when the selection of a SINGLE question has been
// stable for the verify delay.
type verifyDueMsg struct {
	owner      *PracticeScreen
	QuestionID string
	Seq        int
}

// autoAdvanceMsg moves on after an accepted SINGLE answer if the user has
// not navigated since (navigation generation Gen).
type autoAdvanceMsg struct {
	owner *PracticeScreen
	Gen   uint64
}
