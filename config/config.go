// Package config holds the small set of parameters that size a
// heavy-hitters run, built with plain struct literals and functional
// options, matching the teacher's NewPCG(lambda, N, n, c, t int)
// constructor-parameter style rather than reaching for a flag/viper/
// cobra dependency the teacher never uses either.
package config

import (
	"errors"
	"runtime"
)

// Config sizes a single heavy-hitters collection run.
type Config struct {
	// Lambda is the security parameter in bits (the PRG seed width).
	Lambda int
	// Depth is the per-axis domain bit length ibDCF evaluates to.
	Depth int
	// Dimension is the number of axes in the L∞-ball predicate.
	Dimension int
	// NumWorkers bounds how many channels/goroutines a tree_crawl round
	// fans out across.
	NumWorkers int
	// NumClients is the number of clients expected to submit keys.
	NumClients int
	// ThresholdRatio is the fraction of NumClients a prefix must match
	// to survive pruning; Threshold() derives the absolute count.
	ThresholdRatio float64
}

// Option configures a Config during construction.
type Option func(*Config)

// WithLambda overrides the default security parameter.
func WithLambda(lambda int) Option {
	return func(c *Config) { c.Lambda = lambda }
}

// WithDepth overrides the default per-axis domain bit length.
func WithDepth(depth int) Option {
	return func(c *Config) { c.Depth = depth }
}

// WithDimension overrides the default number of axes.
func WithDimension(d int) Option {
	return func(c *Config) { c.Dimension = d }
}

// WithNumWorkers overrides the default worker count.
func WithNumWorkers(n int) Option {
	return func(c *Config) { c.NumWorkers = n }
}

// WithNumClients sets the expected number of clients.
func WithNumClients(n int) Option {
	return func(c *Config) { c.NumClients = n }
}

// WithThresholdRatio sets the keep-fraction pruning threshold.
func WithThresholdRatio(ratio float64) Option {
	return func(c *Config) { c.ThresholdRatio = ratio }
}

// New builds a Config for numClients clients, applying defaults
// (lambda=128, depth=32, dimension=2, numWorkers=runtime.NumCPU(),
// thresholdRatio=0.01) and then the given options, in order.
func New(numClients int, opts ...Option) *Config {
	c := &Config{
		Lambda:         128,
		Depth:          32,
		Dimension:      2,
		NumWorkers:     runtime.NumCPU(),
		NumClients:     numClients,
		ThresholdRatio: 0.01,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Threshold returns the absolute client-count threshold a prefix must
// meet to survive pruning: ThresholdRatio*NumClients rounded down, and
// never less than 1.
func (c *Config) Threshold() int {
	th := int(c.ThresholdRatio * float64(c.NumClients))
	if th < 1 {
		th = 1
	}
	return th
}

// Validate checks the config's parameters are internally consistent.
func (c *Config) Validate() error {
	if c.Lambda <= 0 {
		return errors.New("config: lambda must be positive")
	}
	if c.Depth <= 0 {
		return errors.New("config: depth must be positive")
	}
	if c.Dimension <= 0 {
		return errors.New("config: dimension must be positive")
	}
	if c.NumWorkers <= 0 {
		return errors.New("config: numWorkers must be positive")
	}
	if c.NumClients <= 0 {
		return errors.New("config: numClients must be positive")
	}
	if c.ThresholdRatio <= 0 || c.ThresholdRatio > 1 {
		return errors.New("config: thresholdRatio must be in (0, 1]")
	}
	return nil
}
