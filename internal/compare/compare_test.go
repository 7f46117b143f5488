package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verte-zerg/typetest/internal/model"
)

func TestClassifyMixed(t *testing.T) {
	res := Classify("abc", "abx")
	assert.Equal(t, []model.Class{model.ClassCorrect, model.ClassCorrect, model.ClassIncorrect}, res.Classes)
	assert.Equal(t, 2, res.Correct)
}

func TestClassifyPartialInput(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		typed   string
		correct int
	}{
		{"nothing typed", "hello", "", 0},
		{"prefix", "hello", "he", 2},
		{"wrong prefix", "hello", "xe", 1},
		{"full match", "hello", "hello", 5},
		{"all wrong", "abc", "xyz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(tt.target, tt.typed)
			assert.Len(t, res.Classes, len([]rune(tt.target)))
			assert.Equal(t, tt.correct, res.Correct)

			matches := 0
			typed := []rune(tt.typed)
			for i, r := range []rune(tt.target) {
				if i >= len(typed) {
					assert.Equal(t, model.ClassUntyped, res.Classes[i], "index %d", i)
					continue
				}
				if typed[i] == r {
					matches++
				}
			}
			assert.Equal(t, matches, res.Correct)
		})
	}
}

func TestClassifyIgnoresOverTyping(t *testing.T) {
	res := Classify("cat", "catapult")
	assert.Len(t, res.Classes, 3)
	assert.Equal(t, 3, res.Correct)
}

func TestClassifyEmpty(t *testing.T) {
	res := Classify("", "")
	assert.Empty(t, res.Classes)
	assert.Zero(t, res.Correct)

	res = Classify("", "abc")
	assert.Empty(t, res.Classes)
	assert.Zero(t, res.Correct)
}

func TestClassifyRunes(t *testing.T) {
	res := Classify("naïve", "naive")
	assert.Len(t, res.Classes, 5)
	assert.Equal(t, model.ClassIncorrect, res.Classes[2])
	assert.Equal(t, 4, res.Correct)
}
