package verify

import (
	"context"
	"slices"

	"github.com/ccnaprep/ccnaprep/internal/bank"
)

// Payload is the answer submitted for one question.
type Payload struct {
	QuestionID string
	Kind       bank.Kind
	// Letters holds one letter for SINGLE and one or more for MULTI,
	// in option order.
	Letters []string
}

// NewPayload builds a payload, ordering letters as they appear in A..E.
func NewPayload(questionID string, kind bank.Kind, letters ...string) Payload {
	ordered := make([]string, 0, len(letters))
	for _, l := range bank.Letters {
		if slices.Contains(letters, l) {
			ordered = append(ordered, l)
		}
	}
	return Payload{QuestionID: questionID, Kind: kind, Letters: ordered}
}

// Equal reports whether two payloads carry the same answer.
func (p Payload) Equal(o Payload) bool {
	return p.QuestionID == o.QuestionID && p.Kind == o.Kind && slices.Equal(p.Letters, o.Letters)
}

// Result is the server's verdict.
type Result struct {
	Correct        bool     `json:"correct"`
	CorrectLetters []string `json:"correct_letters"`
	Explanation    string   `json:"explanation,omitempty"`
}

// Verifier checks an answer against the verification endpoint.
type Verifier interface {
	Verify(ctx context.Context, p Payload) (Result, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, p Payload) (Result, error)

func (f VerifierFunc) Verify(ctx context.Context, p Payload) (Result, error) {
	return f(ctx, p)
}
