package hexid

import "testing"

const (
	hex64Mixed = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"
	hex64Zero  = "0000000000000000000000000000000000000000000000000000000000000000"
	hex64One   = "1111111111111111111111111111111111111111111111111111111111111111"
	hex64FF    = "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"
)

func mustHash(t *testing.T, s string) Hash32 {
	t.Helper()
	h, err := ParseHash32(s)
	if err != nil {
		t.Fatalf("ParseHash32(%q): %v", s, err)
	}
	return h
}

func TestParseHash32RoundTrip(t *testing.T) {
	s := "0x" + hex64Mixed
	h := mustHash(t, s)
	if h.String() != s {
		t.Fatalf("round-trip mismatch: got %s want %s", h.String(), s)
	}
}

func TestParseHash32BarePrefixInsensitive(t *testing.T) {
	lower := mustHash(t, hex64Mixed)
	upper := mustHash(t, "0X"+hex64Mixed)
	if lower != upper {
		t.Fatalf("expected case-insensitive parse to match")
	}
}

func TestParseHash32InvalidLength(t *testing.T) {
	if _, err := ParseHash32("0xabcd"); err == nil {
		t.Fatalf("expected error for short hash")
	}
}

func TestBlockIdentifierEqualByHashOnly(t *testing.T) {
	h := mustHash(t, hex64One)
	a := BlockIdentifier{Index: 1, Hash: h}
	b := BlockIdentifier{Index: 99, Hash: h}
	if !a.Equal(b) {
		t.Fatalf("expected equal identifiers despite differing index")
	}
}

func TestBlockIdentifierLessTieBreak(t *testing.T) {
	lo := BlockIdentifier{Hash: mustHash(t, hex64Zero)}
	hi := BlockIdentifier{Hash: mustHash(t, hex64FF)}
	if !lo.Less(hi) {
		t.Fatalf("expected lo < hi")
	}
	if hi.Less(lo) {
		t.Fatalf("expected hi not < lo")
	}
}

func TestReverseBytes(t *testing.T) {
	in := []byte{1, 2, 3, 4}
	out := ReverseBytes(in)
	want := []byte{4, 3, 2, 1}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("ReverseBytes mismatch at %d: got %v want %v", i, out, want)
		}
	}
	if in[0] != 1 {
		t.Fatalf("ReverseBytes mutated input")
	}
}
