package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typetest/internal/model"
)

// styledRune is one rendered passage cell.
type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildStyledRunes renders each passage character by its class. Untyped characters of the word
// under the cursor are highlighted, and a mistyped space is shown as a dot.
func buildStyledRunes(targetRunes []rune, classes []model.Class, cursorIndex int) []styledRune {
	wordStart, wordEnd := currentWord(targetRunes, cursorIndex)

	out := make([]styledRune, 0, len(targetRunes))
	for i, target := range targetRunes {
		displayed := target
		style := pendingStyle
		class := model.ClassUntyped
		if i < len(classes) {
			class = classes[i]
		}
		switch class {
		case model.ClassCorrect:
			style = correctStyle
		case model.ClassIncorrect:
			style = incorrectStyle
			if target == ' ' {
				displayed = '•'
			}
		default:
			if i >= wordStart && i < wordEnd {
				style = currentWordStyle
			}
			if i == cursorIndex {
				style = style.Underline(true)
			}
		}
		out = append(out, styledRune{
			s:       style.Render(string(displayed)),
			width:   runewidth.RuneWidth(displayed),
			isSpace: target == ' ',
		})
	}
	return out
}

// currentWord returns the rune range of the word at cursor. A cursor on a space points at the
// following word, a cursor past the end at the last word, and a negative cursor at the first.
func currentWord(target []rune, cursor int) (int, int) {
	if cursor < 0 {
		cursor = 0
	}
	i := cursor
	for i < len(target) && target[i] == ' ' {
		i++
	}
	if i >= len(target) {
		i = len(target) - 1
		for i >= 0 && target[i] == ' ' {
			i--
		}
		if i < 0 {
			return 0, 0
		}
	}
	start, end := i, i
	for start > 0 && target[start-1] != ' ' {
		start--
	}
	for end < len(target) && target[end] != ' ' {
		end++
	}
	return start, end
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// splitWords cuts runes into words, each keeping the spaces that follow it.
func splitWords(runes []styledRune) [][]styledRune {
	var words [][]styledRune
	start := 0
	for i, item := range runes {
		if item.isSpace && (i+1 == len(runes) || !runes[i+1].isSpace) {
			words = append(words, runes[start:i+1])
			start = i + 1
		}
	}
	if start < len(runes) {
		words = append(words, runes[start:])
	}
	return words
}

func trimTrailingSpace(runes []styledRune) []styledRune {
	end := len(runes)
	for end > 0 && runes[end-1].isSpace {
		end--
	}
	return runes[:end]
}

func widthOf(runes []styledRune) int {
	total := 0
	for _, item := range runes {
		total += item.width
	}
	return total
}

// wrapStyledRunes fills lines of at most width cells, breaking between words. Words wider than
// a line are split. Spaces at a break are dropped.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var lines []string
	var line []styledRune
	lineWidth := 0
	flush := func() {
		lines = append(lines, renderStyledRunes(trimTrailingSpace(line)))
		line, lineWidth = nil, 0
	}

	for _, word := range splitWords(runes) {
		if lineWidth > 0 && lineWidth+widthOf(trimTrailingSpace(word)) > width {
			flush()
		}
		for _, item := range word {
			if lineWidth > 0 && !item.isSpace && lineWidth+item.width > width {
				flush()
			}
			line = append(line, item)
			lineWidth += item.width
		}
	}
	if len(line) > 0 || len(lines) == 0 {
		flush()
	}
	return strings.Join(lines, "\n")
}
