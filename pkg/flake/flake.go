package flake

// CustomEpochMs is the reference epoch for the timestamp field:
// 2024-01-01T00:00:00Z in Unix milliseconds. The 41-bit field measured from
// here lasts until roughly year 2093.
const CustomEpochMs uint64 = 1704067200000

const (
	shardBits    = 13
	sequenceBits = 10

	shardShift     = sequenceBits
	timestampShift = shardBits + sequenceBits
)

// MaxShardID and MaxSequence are the largest values encodable in their fields.
const (
	MaxShardID  uint16 = 1<<shardBits - 1
	MaxSequence uint16 = 1<<sequenceBits - 1
)

// maxTimestamp caps the 41-bit timestamp field.
const maxTimestamp uint64 = 1<<41 - 1

// Encode packs a millisecond timestamp, shard and sequence into one ID.
// It is pure arithmetic: the caller is responsible for masking shard and
// sequence into range and for supplying tsMs >= CustomEpochMs.
func Encode(tsMs uint64, shard uint16, seq uint16) uint64 {
	return (tsMs-CustomEpochMs)<<timestampShift | uint64(shard)<<shardShift | uint64(seq)
}

// DecodeTimestamp extracts the timestamp field and re-adds the custom epoch,
// returning Unix milliseconds.
func DecodeTimestamp(id uint64) uint64 {
	return id>>timestampShift + CustomEpochMs
}

// DecodeShard extracts the shard field.
func DecodeShard(id uint64) uint16 {
	return uint16(id>>shardShift) & MaxShardID
}

// DecodeSequence extracts the sequence field.
func DecodeSequence(id uint64) uint16 {
	return uint16(id) & MaxSequence
}
