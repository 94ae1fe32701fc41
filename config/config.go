// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package config carries the validated search configuration consumed
// from external collaborators per spec.md §6: an error rate, a context
// size, and a bin count. It follows the validated-options-struct shape
// grailbio/bio/interval.NewBEDOpts uses, without that package's own
// concerns (this module draws no BED/feature-file dependency).
package config

import "github.com/pkg/errors"

// Search is the configuration a search pipeline is built from.
type Search struct {
	// ErrorRate is ε, the fraction of a query's length tolerated as
	// edit-distance error. Must be in [0, 1].
	ErrorRate float64
	// ContextSize is w, the left-extension context window in
	// characters. Must be > 0.
	ContextSize int
	// BinCount is b, the number of bins a query stream is sharded into
	// for parallel search above the core. Must be >= 1.
	BinCount int
}

// Validate checks Search's invariants, returning a wrapped error
// naming the first violation found.
func (s Search) Validate() error {
	if s.ErrorRate < 0 || s.ErrorRate > 1 {
		return errors.Errorf("config: error_rate %v outside [0,1]", s.ErrorRate)
	}
	if s.ContextSize <= 0 {
		return errors.Errorf("config: context_size %d must be > 0", s.ContextSize)
	}
	if s.BinCount < 1 {
		return errors.Errorf("config: bin_count %d must be >= 1", s.BinCount)
	}
	return nil
}

// NewSearch validates and returns cfg, mirroring the
// validate-on-construction idiom grailbio/bio/interval.NewBEDOpts uses.
func NewSearch(errorRate float64, contextSize, binCount int) (Search, error) {
	cfg := Search{ErrorRate: errorRate, ContextSize: contextSize, BinCount: binCount}
	if err := cfg.Validate(); err != nil {
		return Search{}, err
	}
	return cfg, nil
}
