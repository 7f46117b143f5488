// Package compare classifies typed text against a target passage.
package compare

import "github.com/verte-zerg/typetest/internal/model"

// Result holds per-character classes for the target and the number of correct characters.
type Result struct {
	Classes []model.Class
	Correct int
}

// Classify compares typed against target rune by rune. The result always has one class per
// target rune; typed runes beyond the end of target are ignored.
func Classify(target, typed string) Result {
	return ClassifyRunes([]rune(target), []rune(typed))
}

// ClassifyRunes is Classify over pre-split runes.
func ClassifyRunes(target, typed []rune) Result {
	res := Result{Classes: make([]model.Class, len(target))}
	for i, want := range target {
		if i >= len(typed) {
			// Zero value is ClassUntyped.
			break
		}
		if typed[i] == want {
			res.Classes[i] = model.ClassCorrect
			res.Correct++
			continue
		}
		res.Classes[i] = model.ClassIncorrect
	}
	return res
}
