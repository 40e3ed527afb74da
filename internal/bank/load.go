package bank

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoQuestions indicates a bank with nothing a learner can answer.
var ErrNoQuestions = errors.New("question bank has no answerable questions")

// Load reads, parses, normalizes, and validates a question bank file.
// Files ending in .json are parsed as JSON, everything else as YAML.
func Load(path string) (Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bank{}, fmt.Errorf("read question bank: %w", err)
	}
	b, err := Parse(data, strings.ToLower(filepath.Ext(path)) == ".json")
	if err != nil {
		return Bank{}, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Parse decodes a bank from memory and validates it.
func Parse(data []byte, isJSON bool) (Bank, error) {
	var (
		b   Bank
		err error
	)
	if isJSON {
		b, err = parseJSON(data)
	} else {
		b, err = parseYAML(data)
	}
	if err != nil {
		return Bank{}, err
	}
	Normalize(&b)
	if err := Validate(b); err != nil {
		return Bank{}, err
	}
	return b, nil
}

func parseJSON(data []byte) (Bank, error) {
	var b Bank
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&b); err != nil {
		return Bank{}, fmt.Errorf("parse json: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Bank{}, fmt.Errorf("parse json: multiple documents are not supported")
		}
		return Bank{}, fmt.Errorf("parse json: %w", err)
	}
	return b, nil
}

func parseYAML(data []byte) (Bank, error) {
	var b Bank
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&b); err != nil {
		return Bank{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Bank{}, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return Bank{}, fmt.Errorf("parse yaml: %w", err)
	}
	return b, nil
}

// Normalize trims whitespace, upper-cases kinds and letters, assigns missing
// option letters by position and drops empty trailing options.
func Normalize(b *Bank) {
	for i := range b.Questions {
		q := &b.Questions[i]
		q.ID = strings.TrimSpace(q.ID)
		q.Kind = Kind(strings.ToUpper(strings.TrimSpace(string(q.Kind))))
		q.Text = strings.TrimSpace(q.Text)
		q.Image = strings.TrimSpace(q.Image)

		opts := q.Options[:0]
		for j, o := range q.Options {
			o.Text = strings.TrimSpace(o.Text)
			o.Letter = strings.ToUpper(strings.TrimSpace(o.Letter))
			if o.Letter == "" && j < len(Letters) {
				o.Letter = Letters[j]
			}
			if o.Text == "" {
				continue
			}
			opts = append(opts, o)
		}
		q.Options = opts
	}
}

// Answerable returns the questions both modes can present, preserving order.
func (b Bank) Answerable() []Question {
	out := make([]Question, 0, len(b.Questions))
	for _, q := range b.Questions {
		if q.Answerable() {
			out = append(out, q)
		}
	}
	return out
}

// Shuffled returns a copy of qs in random order.
func Shuffled(qs []Question, r *rand.Rand) []Question {
	out := make([]Question, len(qs))
	copy(out, qs)
	shuffle := rand.Shuffle
	if r != nil {
		shuffle = r.Shuffle
	}
	shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
