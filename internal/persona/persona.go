// Package persona is the boundary to the AI text generation collaborator.
// The engine only ever asks for one line of flavor text; providers that call
// a real model implement Generator, and the canned generator keeps the bot
// functional without one.
package persona

import (
	"context"
	"math/rand/v2"
)

// Generator produces one line of persona-flavored display text.
type Generator interface {
	Line(ctx context.Context, mode, topic string) (string, error)
}

// Canned lines keyed by topic. Modes are accepted but not differentiated by
// the canned generator.
var cannedLines = map[string][]string{
	"pepper_drop": {
		"Pepper Drop: spice storm incoming.",
		"The crown drops embers. Blaze discipline.",
		"King Pepper rain protocol active.",
	},
	"420": {
		"King Pepper commands the realm to ignite.",
		"The royal ember burns for all realms.",
		"Light it for the crown.",
	},
}

// CannedGenerator serves pre-written lines with uniform random selection.
type CannedGenerator struct {
	rng func() float64
}

// NewCannedGenerator creates a canned-line generator.
func NewCannedGenerator() *CannedGenerator {
	return &CannedGenerator{rng: rand.Float64}
}

// Line returns a random canned line for the topic. Unknown topics fall back
// to the 420 lines.
func (g *CannedGenerator) Line(ctx context.Context, mode, topic string) (string, error) {
	lines, ok := cannedLines[topic]
	if !ok {
		lines = cannedLines["420"]
	}
	return lines[int(g.rng()*float64(len(lines)))%len(lines)], nil
}
