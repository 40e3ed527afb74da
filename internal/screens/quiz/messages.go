package quiz

import "github.com/ccnaprep/ccnaprep/internal/imageload"

// imageLoadedMsg is sent when a question image finished loading.
type imageLoadedMsg struct {
	deck  *Deck
	Key   string
	Image imageload.Image
}

// imageFailedMsg is sent when a question image could not be loaded.
type imageFailedMsg struct {
	deck *Deck
	Key  string
	Err  error
}

// preloadDueMsg fires after the preload delay for the question following
// the one shown at navigation generation Gen.
type preloadDueMsg struct {
	deck  *Deck
	Gen   uint64
	Index int
}

// nudgeDoneMsg ends the shake of question QuestionID if Seq is current.
type nudgeDoneMsg struct {
	deck       *Deck
	QuestionID string
	Seq        int
}

// hintDoneMsg clears the validation hint if Seq is current.
type hintDoneMsg struct {
	deck *Deck
	Seq  int
}
