package obfuscate

import (
	"bytes"
	"testing"
)

func TestDeriveKey(t *testing.T) {
	// serial bytes p0,p1,p2,p3 = 0x12,0x34,0x56,0x78
	got := DeriveKey([4]byte{0x12, 0x34, 0x56, 0x78})
	p0, p1, p2, p3 := byte(0x12), byte(0x34), byte(0x56), byte(0x78)
	want := Key{
		p2&p1 - p2,
		p1 + p0 + p3,
		p3 + p0 ^ p1,
		p3&p1 + p2,
		p3 | p2 - p3,
	}
	if got != want {
		t.Fatalf("DeriveKey() = %v, want %v", got, want)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	keys := []Key{
		DeriveKey([4]byte{0, 0, 0, 0}),
		DeriveKey([4]byte{1, 2, 3, 4}),
		DeriveKey([4]byte{0xFF, 0xFE, 0xFD, 0xFC}),
		DeriveKey([4]byte{0x12, 0x34, 0x56, 0x78}),
	}
	plaintexts := [][]byte{
		{},
		{0x00},
		bytes.Repeat([]byte{0xAB}, 32),
		[]byte("login packet payload 1234567890"),
	}
	for _, k := range keys {
		for _, p := range plaintexts {
			enc := Encode(p, k)
			dec := Decode(enc, k)
			if !bytes.Equal(dec, p) {
				t.Fatalf("Decode(Encode(%x, %v), %v) = %x, want %x", p, k, k, dec, p)
			}
		}
	}
}

func TestEncodeFirstByteUsesZeroPrevious(t *testing.T) {
	k := DeriveKey([4]byte{9, 8, 7, 6})
	single := Encode([]byte{0x42}, k)
	// first output byte: ((key[0] - 0) ^ 0x42) + 0x34
	want := byte(k[0]^0x42) + keyConst
	if single[0] != want {
		t.Fatalf("Encode first byte = 0x%02X, want 0x%02X", single[0], want)
	}
}
