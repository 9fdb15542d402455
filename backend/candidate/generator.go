// Package candidate produces the random invite codes tried by a run.
package candidate

import (
	"fmt"
	"iter"
	"math"
	"math/rand/v2"
	"strings"
)

const (
	DefaultLength   = 6
	DefaultAlphabet = "abcdefghijklmnopqrstuvwxyz"
)

// ConfigError reports a request the token space cannot satisfy.
type ConfigError struct {
	Requested int
	Space     uint64
	Reason    string
}

func (e *ConfigError) Error() string {
	if e.Reason != "" {
		return "candidate: " + e.Reason
	}
	return fmt.Sprintf("candidate: requested %d unique tokens but only %d exist", e.Requested, e.Space)
}

type Options struct {
	Length   int
	Alphabet string
	// Seed fixes the random sequence; zero picks a random seed.
	Seed uint64
}

// Generator draws fixed-length tokens uniformly from the alphabet. It is not
// safe for concurrent use.
type Generator struct {
	length   int
	alphabet []byte
	rng      *rand.Rand
}

func NewGenerator(opts Options) (*Generator, error) {
	if opts.Length <= 0 {
		opts.Length = DefaultLength
	}
	if opts.Alphabet == "" {
		opts.Alphabet = DefaultAlphabet
	}
	alphabet, err := normalizeAlphabet(opts.Alphabet)
	if err != nil {
		return nil, err
	}
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Generator{
		length:   opts.Length,
		alphabet: alphabet,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}, nil
}

func normalizeAlphabet(raw string) ([]byte, error) {
	seen := make(map[byte]struct{}, len(raw))
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c > 127 {
			return nil, &ConfigError{Reason: "alphabet must be ASCII"}
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, &ConfigError{Reason: "alphabet is empty"}
	}
	return out, nil
}

// Space returns the number of distinct tokens, saturating at math.MaxUint64.
func (g *Generator) Space() uint64 {
	base := uint64(len(g.alphabet))
	space := uint64(1)
	for i := 0; i < g.length; i++ {
		if space > math.MaxUint64/base {
			return math.MaxUint64
		}
		space *= base
	}
	return space
}

func (g *Generator) Length() int {
	return g.length
}

// Generate returns a lazy sequence of count distinct tokens. Each call keeps
// its own seen-set, so separate calls are independent.
func (g *Generator) Generate(count int) (iter.Seq[string], error) {
	if count < 0 {
		return nil, &ConfigError{Requested: count, Space: g.Space(), Reason: "token count must not be negative"}
	}
	if uint64(count) > g.Space() {
		return nil, &ConfigError{Requested: count, Space: g.Space()}
	}
	return func(yield func(string) bool) {
		seen := make(map[string]struct{}, count)
		var b strings.Builder
		for len(seen) < count {
			b.Reset()
			for i := 0; i < g.length; i++ {
				b.WriteByte(g.alphabet[g.rng.IntN(len(g.alphabet))])
			}
			token := b.String()
			if _, dup := seen[token]; dup {
				continue
			}
			seen[token] = struct{}{}
			if !yield(token) {
				return
			}
		}
	}, nil
}

// Collect drains Generate into a slice.
func (g *Generator) Collect(count int) ([]string, error) {
	seq, err := g.Generate(count)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, count)
	for token := range seq {
		out = append(out, token)
	}
	return out, nil
}
