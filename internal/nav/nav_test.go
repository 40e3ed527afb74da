package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var settled = Status{Attempted: true}

func TestProgressAndPrev(t *testing.T) {
	c := New(3, PolicyVerify)
	assert.Equal(t, 1, c.Position())
	assert.Equal(t, 33, c.Progress())
	assert.False(t, c.PrevEnabled())

	require.Equal(t, Moved, c.Next(settled))
	assert.Equal(t, 67, c.Progress())
	assert.True(t, c.PrevEnabled())

	require.Equal(t, Moved, c.Next(settled))
	assert.Equal(t, 100, c.Progress())
	assert.True(t, c.IsLast())
	assert.Equal(t, "Finish", c.NextLabel())
}

func TestVerifyPolicy(t *testing.T) {
	tests := []struct {
		name string
		s    Status
		want bool
	}{
		{"untouched", Status{}, false},
		{"checked only", Status{AnyChecked: true}, false},
		{"pending", Status{Pending: true}, false},
		{"attempted while retry pending", Status{Attempted: true, Pending: true}, false},
		{"attempted", Status{Attempted: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(2, PolicyVerify)
			assert.Equal(t, tt.want, c.NextEnabled(tt.s))
		})
	}
}

func TestExamPolicy(t *testing.T) {
	c := New(2, PolicyExam)
	assert.Equal(t, Blocked, c.Next(Status{}))
	assert.Equal(t, 0, c.Current())
	assert.Equal(t, Moved, c.Next(Status{AnyChecked: true}))
	assert.Equal(t, Finish, c.Next(Status{AnyChecked: true}))
	assert.Equal(t, 1, c.Current())
}

func TestJumpsLimitedToFrontier(t *testing.T) {
	c := New(5, PolicyVerify)
	c.Next(settled)
	c.Next(settled)
	assert.Equal(t, 2, c.Frontier())

	assert.True(t, c.First())
	assert.Equal(t, 0, c.Current())
	assert.True(t, c.Last())
	assert.Equal(t, 2, c.Current())

	assert.ErrorIs(t, c.GoTo(4), ErrOutOfRange)
	assert.ErrorIs(t, c.GoTo(0), ErrOutOfRange)
	assert.ErrorIs(t, c.GoTo(6), ErrOutOfRange)
	require.NoError(t, c.GoTo(2))
	assert.Equal(t, 1, c.Current())
}

func TestGenerationChangesOnMove(t *testing.T) {
	c := New(3, PolicyVerify)
	g := c.Generation()
	assert.False(t, c.Prev())
	assert.Equal(t, g, c.Generation())

	c.Next(settled)
	assert.NotEqual(t, g, c.Generation())
}

func TestEmpty(t *testing.T) {
	c := New(0, PolicyExam)
	assert.Equal(t, 0, c.Progress())
	assert.False(t, c.NextEnabled(Status{AnyChecked: true}))
}
