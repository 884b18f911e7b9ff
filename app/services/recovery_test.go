package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAnswer(t *testing.T) {
	assert.Equal(t, "fluffy", NormalizeAnswer("  Fluffy \t"))
	assert.Equal(t, "", NormalizeAnswer("   "))
}

func TestCountFilled(t *testing.T) {
	assert.Equal(t, 0, CountFilled(answers()))
	assert.Equal(t, 2, CountFilled(answers("a", " ", "b")))
	assert.Equal(t, 7, CountFilled(answers("1", "2", "3", "4", "5", "6", "7")))
}

func TestCountMatches(t *testing.T) {
	stored := answers("rex", "", "paris", "blue", "", "", "pizza")

	tests := []struct {
		name string
		submitted [7]string
		want int
	}{
		{"all blank", answers(), 0},
		{"case and spaces ignored", answers(" REX", "", "Paris ", "BLUE"), 3},
		{"both sides must be filled", answers("", "anything", "", "", "x"), 0},
		{"positional only", answers("paris", "", "rex"), 0},
		{"one wrong", answers("rex", "", "london", "blue", "", "", "pizza"), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountMatches(tt.submitted, stored))
		})
	}
}
