package jstio

import (
	"bytes"
	"io"
	"io/ioutil"

	"github.com/blainsmith/seahash"
	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/grailbio/jst/rcms"
)

// Read deserializes a store file written by Write, verifying the
// header's checksum against the decompressed payload before
// reconstructing the rcms.Store. Variants are re-inserted in their
// on-disk order, which Write always preserves as Store.At order. Each
// re-insertion runs Insert's conflict checks again; a file written
// from a conflict-free store passes them.
func Read(r io.Reader) (*rcms.Store, error) {
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	var payloadReader io.Reader = r
	if h.Flags&flagGzip != 0 {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "jstio: opening gzip payload")
		}
		defer gz.Close()
		payloadReader = gz
	}
	payload, err := ioutil.ReadAll(payloadReader)
	if err != nil {
		return nil, errors.Wrap(err, "jstio: reading payload")
	}
	if seahash.Sum64(payload) != h.Checksum {
		return nil, ErrChecksumMismatch
	}

	buf := bytes.NewReader(payload)
	reference := make([]byte, h.ReferenceLen)
	if _, err := io.ReadFull(buf, reference); err != nil {
		return nil, errors.Wrap(err, "jstio: reading reference")
	}

	store := rcms.New(reference, int(h.MemberCount))
	for i := uint64(0); i < h.VariantCount; i++ {
		v, err := readVariantRecord(buf, int(h.MemberCount))
		if err != nil {
			return nil, errors.Wrapf(err, "jstio: reading variant %d", i)
		}
		if _, err := store.Insert(v); err != nil {
			return nil, errors.Wrapf(err, "jstio: reinserting variant %d", i)
		}
	}

	log.Printf("jstio: loaded store (%d members, %d bp reference, %d variants)",
		h.MemberCount, h.ReferenceLen, h.VariantCount)
	return store, nil
}
