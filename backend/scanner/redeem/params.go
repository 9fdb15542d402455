package redeemscan

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

const tokenPlaceholder = "{token}"

// Params models one brute-force run.
type Params struct {
	// BaseURL receives the token in place of {token}, or appended when the
	// placeholder is absent.
	BaseURL         string
	Workers         int
	TokensPerWorker int
	// Delay is the fixed pause each worker takes after every attempt.
	Delay time.Duration
	// MaxRate caps attempts per second across all workers; zero disables it.
	MaxRate         float64
	ProgressEvery   int
	StartupAttempts int
}

// WithDefaults returns a copy where unset fields take their stock values.
func (p Params) WithDefaults() Params {
	cp := p
	cp.BaseURL = strings.TrimSpace(cp.BaseURL)
	if cp.Workers == 0 {
		cp.Workers = 4
	}
	if cp.TokensPerWorker == 0 {
		cp.TokensPerWorker = 10000
	}
	if cp.Delay == 0 {
		cp.Delay = 500 * time.Millisecond
	}
	if cp.ProgressEvery <= 0 {
		cp.ProgressEvery = 50
	}
	if cp.StartupAttempts <= 0 {
		cp.StartupAttempts = 1
	}
	return cp
}

func (p Params) Validate() error {
	if p.BaseURL == "" {
		return errors.New("no target URL specified")
	}
	if p.Workers < 0 || p.TokensPerWorker < 0 {
		return errors.New("workers and tokens per worker must be positive")
	}
	if p.Delay < 0 {
		return errors.New("delay must not be negative")
	}
	if p.MaxRate < 0 {
		return errors.New("max rate must not be negative")
	}
	return nil
}

// TargetURL builds the redeem URL for token.
func (p Params) TargetURL(token string) string {
	if strings.Contains(p.BaseURL, tokenPlaceholder) {
		return strings.ReplaceAll(p.BaseURL, tokenPlaceholder, token)
	}
	return p.BaseURL + token
}

// partitionRoundRobin deals token i to worker i mod n, keeping order.
func partitionRoundRobin(tokens []string, n int) [][]string {
	if n <= 0 {
		return nil
	}
	parts := make([][]string, n)
	per := len(tokens)/n + 1
	for i := range parts {
		parts[i] = make([]string, 0, per)
	}
	for i, token := range tokens {
		parts[i%n] = append(parts[i%n], token)
	}
	return parts
}
