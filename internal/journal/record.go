package journal

import (
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
)

// Entry value encoding: varint headerLen | header | crc32c(header), where
// the header is an 8-byte big-endian issuance timestamp (Unix ms) followed
// by JSON metadata.

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Meta carries optional issuance metadata.
type Meta struct {
	// Source names the transport or caller that requested the ID.
	Source string `json:"source,omitempty"`
	// Tag is an optional caller-supplied label.
	Tag string `json:"tag,omitempty"`
}

// EncodeEntry serializes an issuance record value.
func EncodeEntry(issuedMs uint64, meta Meta) []byte {
	mb, _ := json.Marshal(meta)
	header := make([]byte, 8, 8+len(mb))
	binary.BigEndian.PutUint64(header, issuedMs)
	header = append(header, mb...)

	out := make([]byte, 0, 10+len(header)+4)
	var tmp [10]byte
	n := binary.PutUvarint(tmp[:], uint64(len(header)))
	out = append(out, tmp[:n]...)
	out = append(out, header...)

	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc32.Checksum(header, castagnoli))
	return append(out, crcb[:]...)
}

// DecodeEntry parses an issuance record value. ok is false for truncated or
// corrupt values.
func DecodeEntry(b []byte) (issuedMs uint64, meta Meta, ok bool) {
	hlen, n := binary.Uvarint(b)
	// Length checks stay in uint64: a corrupt varint can exceed MaxInt64,
	// and converting it to int first would slip past the bound.
	if n <= 0 || hlen < 8 || hlen > uint64(len(b)) || uint64(n)+hlen+4 > uint64(len(b)) {
		return 0, Meta{}, false
	}
	header := b[n : n+int(hlen)]
	expect := binary.BigEndian.Uint32(b[n+int(hlen):])
	if crc32.Checksum(header, castagnoli) != expect {
		return 0, Meta{}, false
	}
	issuedMs = binary.BigEndian.Uint64(header[:8])
	if len(header) > 8 {
		if err := json.Unmarshal(header[8:], &meta); err != nil {
			return 0, Meta{}, false
		}
	}
	return issuedMs, meta, true
}
