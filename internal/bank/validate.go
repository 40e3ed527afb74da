package bank

import (
	"errors"
	"fmt"
	"slices"
)

// Validate checks structural rules: unique non-empty ids, known kinds,
// two to five options with unique letters from A..E.
func Validate(b Bank) error {
	var errs []error
	seen := make(map[string]bool, len(b.Questions))
	for i, q := range b.Questions {
		where := fmt.Sprintf("questions[%d]", i)
		if q.ID == "" {
			errs = append(errs, fmt.Errorf("%s: id is required", where))
		} else if seen[q.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate id %q", where, q.ID))
		}
		seen[q.ID] = true

		switch q.Kind {
		case KindSingle, KindMulti:
		case KindDrag:
			continue
		default:
			errs = append(errs, fmt.Errorf("%s: unknown type %q", where, q.Kind))
			continue
		}
		if q.Text == "" {
			errs = append(errs, fmt.Errorf("%s: text is required", where))
		}
		if len(q.Options) < 2 || len(q.Options) > len(Letters) {
			errs = append(errs, fmt.Errorf("%s: expected 2-%d options, got %d", where, len(Letters), len(q.Options)))
		}
		letters := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			if !slices.Contains(Letters, o.Letter) {
				errs = append(errs, fmt.Errorf("%s: invalid option letter %q", where, o.Letter))
			}
			if letters[o.Letter] {
				errs = append(errs, fmt.Errorf("%s: duplicate option letter %q", where, o.Letter))
			}
			letters[o.Letter] = true
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if len(b.Answerable()) == 0 {
		return ErrNoQuestions
	}
	return nil
}
