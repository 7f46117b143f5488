// Package generator builds random passages from a word list.
package generator

import (
	"math/rand"
	"strings"
	"time"
	"unicode"
)

// Options controls passage shape.
type Options struct {
	Words    int
	CapsPct  float64
	PunctPct float64
	PunctSet []rune
}

// Generator produces randomized passages.
type Generator struct {
	rnd  *rand.Rand
	opts Options
}

// New returns a Generator seeded with the current time.
func New(opts Options) *Generator {
	return NewWithRand(rand.New(rand.NewSource(time.Now().UnixNano())), opts)
}

// NewWithRand returns a Generator drawing from rnd.
func NewWithRand(rnd *rand.Rand, opts Options) *Generator {
	if opts.Words <= 0 {
		opts.Words = 1
	}
	return &Generator{rnd: rnd, opts: opts}
}

// Passage picks words uniformly, applies caps and punctuation, and joins them with spaces.
// It returns "" for an empty word list.
func (g *Generator) Passage(words []string) string {
	if len(words) == 0 {
		return ""
	}
	out := make([]string, 0, g.opts.Words)
	for i := 0; i < g.opts.Words; i++ {
		word := words[g.rnd.Intn(len(words))]
		word = g.applyCaps(word)
		word = g.applyPunct(word)
		out = append(out, word)
	}
	return strings.Join(out, " ")
}

func (g *Generator) applyCaps(word string) string {
	if g.opts.CapsPct <= 0 || g.rnd.Float64() > g.opts.CapsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func (g *Generator) applyPunct(word string) string {
	if g.opts.PunctPct <= 0 || len(g.opts.PunctSet) == 0 || g.rnd.Float64() > g.opts.PunctPct {
		return word
	}
	return word + string(g.opts.PunctSet[g.rnd.Intn(len(g.opts.PunctSet))])
}
