package store

import (
	"cmp"
	"slices"
)

// sortWeakestFirst orders by accuracy ascending, then attempts descending,
// then question ID.
func sortWeakestFirst(qs []QuestionStats) {
	slices.SortFunc(qs, func(a, b QuestionStats) int {
		if c := cmp.Compare(a.Accuracy(), b.Accuracy()); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Attempts, a.Attempts); c != 0 {
			return c
		}
		return cmp.Compare(a.QuestionID, b.QuestionID)
	})
}
