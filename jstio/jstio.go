// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package jstio implements the on-disk store file format spec.md §6
// describes: a fixed header, the raw reference bytes, and a variant
// table, optionally gzip-compressed and checksummed end to end. This
// package sits outside the core's "never logs" boundary (spec.md §7),
// so it is the one place in the module that calls
// github.com/grailbio/base/log.
package jstio

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/grailbio/jst/coverage"
	"github.com/grailbio/jst/variant"
)

// magic identifies a jstio store file; version allows the header
// layout to change without breaking detection of stale readers.
const (
	magic   uint32 = 0x6a737431 // "jst1"
	version uint32 = 1
)

// ErrBadMagic is returned when a file does not begin with the jstio
// magic number.
var ErrBadMagic = errors.New("jstio: bad magic number")

// ErrUnsupportedVersion is returned when a file's version field is
// newer than this package understands.
var ErrUnsupportedVersion = errors.New("jstio: unsupported version")

// ErrChecksumMismatch is returned when the header's seahash checksum
// does not match the payload actually read, indicating truncation or
// corruption.
var ErrChecksumMismatch = errors.New("jstio: checksum mismatch")

// ErrMalformedVariant is returned when a variant record's breakpoint
// is inverted (low > high). A record whose alt or coverage bytes are
// cut short fails with a wrapped read error instead.
var ErrMalformedVariant = errors.New("jstio: malformed variant record")

// flagGzip marks that the payload following the header is
// gzip-compressed.
const flagGzip uint32 = 1 << 0

// header is the fixed-size preamble of a store file. Checksum is a
// seahash digest of the uncompressed payload (reference bytes followed
// by the variant table), computed before any gzip framing is applied,
// so Read can verify integrity the same way regardless of whether the
// file is compressed.
type header struct {
	Magic        uint32
	Version      uint32
	Flags        uint32
	MemberCount  uint32
	ReferenceLen uint64
	VariantCount uint64
	Checksum     uint64
}

const headerSize = 4 + 4 + 4 + 4 + 8 + 8 + 8

func (h header) write(w io.Writer) error {
	var buf [headerSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.Flags)
	binary.LittleEndian.PutUint32(buf[12:16], h.MemberCount)
	binary.LittleEndian.PutUint64(buf[16:24], h.ReferenceLen)
	binary.LittleEndian.PutUint64(buf[24:32], h.VariantCount)
	binary.LittleEndian.PutUint64(buf[32:40], h.Checksum)
	_, err := w.Write(buf[:])
	return err
}

func readHeader(r io.Reader) (header, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return header{}, errors.Wrap(err, "jstio: reading header")
	}
	h := header{
		Magic:        binary.LittleEndian.Uint32(buf[0:4]),
		Version:      binary.LittleEndian.Uint32(buf[4:8]),
		Flags:        binary.LittleEndian.Uint32(buf[8:12]),
		MemberCount:  binary.LittleEndian.Uint32(buf[12:16]),
		ReferenceLen: binary.LittleEndian.Uint64(buf[16:24]),
		VariantCount: binary.LittleEndian.Uint64(buf[24:32]),
		Checksum:     binary.LittleEndian.Uint64(buf[32:40]),
	}
	if h.Magic != magic {
		return header{}, ErrBadMagic
	}
	if h.Version > version {
		return header{}, ErrUnsupportedVersion
	}
	return h, nil
}

// variantRecord is the on-disk encoding of one variant.Variant: a
// breakpoint, an alt sequence, and a coverage bitset serialized as its
// packed words (see coverage.Set.Words).
type variantRecord struct {
	Low, High uint64
	Alt       []byte
	Coverage  []uint64
}

func writeVariantRecord(w io.Writer, v variant.Variant) error {
	var fixed [8 + 8 + 8 + 8]byte
	words := v.Coverage.Words()
	binary.LittleEndian.PutUint64(fixed[0:8], uint64(v.Breakpoint.Low))
	binary.LittleEndian.PutUint64(fixed[8:16], uint64(v.Breakpoint.High))
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(v.Alt)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(words)))
	if _, err := w.Write(fixed[:]); err != nil {
		return err
	}
	if _, err := w.Write(v.Alt); err != nil {
		return err
	}
	wordBuf := make([]byte, 8*len(words))
	for i, word := range words {
		binary.LittleEndian.PutUint64(wordBuf[i*8:i*8+8], word)
	}
	_, err := w.Write(wordBuf)
	return err
}

func readVariantRecord(r io.Reader, memberCount int) (variant.Variant, error) {
	var fixed [8 + 8 + 8 + 8]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return variant.Variant{}, errors.Wrap(err, "jstio: reading variant record")
	}
	low := binary.LittleEndian.Uint64(fixed[0:8])
	high := binary.LittleEndian.Uint64(fixed[8:16])
	altLen := binary.LittleEndian.Uint64(fixed[16:24])
	wordCount := binary.LittleEndian.Uint64(fixed[24:32])

	alt := make([]byte, altLen)
	if _, err := io.ReadFull(r, alt); err != nil {
		return variant.Variant{}, errors.Wrap(err, "jstio: reading variant alt bytes")
	}
	wordBuf := make([]byte, 8*wordCount)
	if _, err := io.ReadFull(r, wordBuf); err != nil {
		return variant.Variant{}, errors.Wrap(err, "jstio: reading variant coverage words")
	}
	words := make([]uint64, wordCount)
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(wordBuf[i*8 : i*8+8])
	}
	cov, err := coverage.FromWords(memberCount, words)
	if err != nil {
		return variant.Variant{}, errors.Wrap(err, "jstio: rebuilding coverage set")
	}
	if low > high {
		return variant.Variant{}, ErrMalformedVariant
	}
	return variant.New(int(low), int(high), alt, cov), nil
}
