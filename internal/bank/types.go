package bank

import "strings"

// Kind discriminates how a question is answered.
type Kind string

const (
	KindSingle Kind = "SINGLE"
	KindMulti  Kind = "MULTI"
	KindDrag   Kind = "DRAG"
)

// Letters lists the option letters in display order. E is optional.
var Letters = []string{"A", "B", "C", "D", "E"}

// Bank is the on-disk question bank. It never carries answer keys; those
// stay with the verification server.
type Bank struct {
	Version   int        `json:"version" yaml:"version"`
	Title     string     `json:"title" yaml:"title"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Question is a single exam question.
type Question struct {
	ID      string   `json:"id" yaml:"id"`
	Kind    Kind     `json:"type" yaml:"type"`
	Text    string   `json:"text" yaml:"text"`
	Options []Option `json:"options" yaml:"options"`
	Image   string   `json:"image,omitempty" yaml:"image,omitempty"`
}

// Option is one selectable answer.
type Option struct {
	Letter string `json:"letter" yaml:"letter"`
	Text   string `json:"text" yaml:"text"`
}

// Answerable reports whether the question can be answered by picking
// options. Drag-and-drop questions cannot.
func (q Question) Answerable() bool {
	return q.Kind == KindSingle || q.Kind == KindMulti
}

// HasImage reports whether the question references an image.
func (q Question) HasImage() bool {
	return strings.TrimSpace(q.Image) != ""
}

// OptionIndex returns the index of the option with the given letter, or -1.
func (q Question) OptionIndex(letter string) int {
	for i, o := range q.Options {
		if o.Letter == letter {
			return i
		}
	}
	return -1
}
