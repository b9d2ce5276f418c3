// Package hexid holds the identifier types shared by the parent-chain and
// child-chain ingestion cores: a fixed-size block hash rendered as
// 0x-prefixed lowercase hex at API boundaries, and the (index, hash) pair
// that names a block.
package hexid

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash32 is a 32-byte content hash, carried raw internally and rendered as
// 0x-prefixed lowercase hex at the outer boundary (spec §4.3).
type Hash32 [32]byte

var Zero32 Hash32

func (h Hash32) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// MarshalJSON renders the hash as 0x-prefixed lowercase hex.
func (h Hash32) MarshalJSON() ([]byte, error) {
	return []byte(`"` + h.String() + `"`), nil
}

// UnmarshalJSON accepts 0x-prefixed or bare hex, case-insensitively.
func (h *Hash32) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseHash32(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHash32 parses a 0x-prefixed or bare 64-char hex string into a Hash32.
func ParseHash32(s string) (Hash32, error) {
	var out Hash32
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	if len(s) != 64 {
		return out, fmt.Errorf("hexid: invalid hash length %d (want 64 hex chars)", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("hexid: invalid hash hex: %w", err)
	}
	copy(out[:], b)
	return out, nil
}

// ReverseBytes returns a copy of b with byte order reversed. Used to convert
// the little-endian burn_block_hash on the wire (spec §6) into the
// big-endian-rendered identifier used internally.
func ReverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// BlockIdentifier is the pair (index, hash) naming a block on some chain
// (spec §3). Equality is by Hash; Index is informational.
type BlockIdentifier struct {
	Index uint64 `json:"index"`
	Hash  Hash32 `json:"hash"`
}

// Equal compares two identifiers by hash only, per spec §3.
func (b BlockIdentifier) Equal(o BlockIdentifier) bool {
	return b.Hash == o.Hash
}

func (b BlockIdentifier) String() string {
	return fmt.Sprintf("%d:%s", b.Index, b.Hash)
}

// Less provides the deterministic tie-break used by chain-segment canonical
// selection when two segments have equal length: smaller tip hash wins
// (spec §4.1).
func (b BlockIdentifier) Less(o BlockIdentifier) bool {
	for i := range b.Hash {
		if b.Hash[i] != o.Hash[i] {
			return b.Hash[i] < o.Hash[i]
		}
	}
	return false
}
