// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package search implements the pigeonhole q-gram filter and the
// bidirectional verifier, the two-stage approximate matcher spec.md
// §4.G/§4.H describes: a cheap filter proposes seed hits from an exact
// q-gram match, and the verifier confirms or rejects each seed with
// bounded edit distance.
package search

import "github.com/pkg/errors"

// ErrQueryEmpty is returned for a zero-length query; callers recover
// locally by skipping it (spec.md §7).
var ErrQueryEmpty = errors.New("search: query is empty")

// ErrQueryTooShort is returned when a query is shorter than the
// filter's q-gram shape; callers recover locally by disabling the
// filter for that query (spec.md §7).
var ErrQueryTooShort = errors.New("search: query shorter than q-gram shape")
