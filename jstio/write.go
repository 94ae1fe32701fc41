package jstio

import (
	"bytes"
	"io"

	"github.com/blainsmith/seahash"
	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/grailbio/jst/rcms"
)

// Write serializes store to w: a header, then the reference bytes and
// variant table (optionally gzip-compressed). The header's checksum
// field is a seahash digest of the uncompressed payload, computed
// before compression so Read can verify integrity identically either
// way.
func Write(w io.Writer, store *rcms.Store, gzipCompress bool) error {
	var payload bytes.Buffer
	if _, err := payload.Write(store.Source()); err != nil {
		return errors.Wrap(err, "jstio: buffering reference")
	}
	for i := 0; i < store.Len(); i++ {
		if err := writeVariantRecord(&payload, store.At(i)); err != nil {
			return errors.Wrapf(err, "jstio: buffering variant %d", i)
		}
	}

	h := header{
		Magic:        magic,
		Version:      version,
		MemberCount:  uint32(store.Size()),
		ReferenceLen: uint64(len(store.Source())),
		VariantCount: uint64(store.Len()),
		Checksum:     seahash.Sum64(payload.Bytes()),
	}
	if gzipCompress {
		h.Flags |= flagGzip
	}
	if err := h.write(w); err != nil {
		return errors.Wrap(err, "jstio: writing header")
	}

	if gzipCompress {
		gz := gzip.NewWriter(w)
		if _, err := gz.Write(payload.Bytes()); err != nil {
			return errors.Wrap(err, "jstio: writing compressed payload")
		}
		if err := gz.Close(); err != nil {
			return errors.Wrap(err, "jstio: closing gzip writer")
		}
	} else if _, err := w.Write(payload.Bytes()); err != nil {
		return errors.Wrap(err, "jstio: writing payload")
	}

	log.Printf("jstio: wrote store (%d members, %d bp reference, %d variants, gzip=%v)",
		h.MemberCount, h.ReferenceLen, h.VariantCount, gzipCompress)
	return nil
}
