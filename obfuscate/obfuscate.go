// Package obfuscate implements the serial-number-seeded XOR-chaining
// obfuscation used to protect login and selected data payloads (spec §4.3).
//
// This is obfuscation, not encryption: it carries no secrecy claim. The key
// schedule and chained transform below are the single variant the WP3000/
// IC1000 controller family uses; the reverse-engineering catalog of other
// manufacturer variants is informational only and is not implemented here.
package obfuscate

// keyConst is the additive constant folded into every encoded byte.
const keyConst = 0x34

// Key is the 5-byte schedule derived from a controller's serial number,
// cycled modulo its length by Encode/Decode.
type Key [5]byte

// DeriveKey derives the obfuscation key schedule from a 4-byte serial
// number. The transform below mirrors the WP3000/IC1000 host driver's
// serial-to-key derivation bit for bit.
func DeriveKey(serial [4]byte) Key {
	p0, p1, p2, p3 := serial[0], serial[1], serial[2], serial[3]
	var k Key
	k[0] = (p2&p1 - p2)
	k[1] = p1 + p0 + p3
	k[2] = p3 + p0 ^ p1
	k[3] = (p3 & p1) + p2
	k[4] = (p3 | p2) - p3
	return k
}

// Encode obfuscates plaintext with key. Each output byte depends on the
// current input byte, the cycling key byte, and the previous *input* byte
// (CBC-like chaining); the first byte chains from an initial previous value
// of zero.
func Encode(plaintext []byte, key Key) []byte {
	out := make([]byte, len(plaintext))
	var prev byte
	for i, b := range plaintext {
		out[i] = (key[i%len(key)]-prev^b + keyConst)
		prev = b
	}
	return out
}

// Decode reverses Encode: decode(encode(x, k), k) == x for all x, k.
func Decode(ciphertext []byte, key Key) []byte {
	out := make([]byte, len(ciphertext))
	var tmp byte
	for i, b := range ciphertext {
		tmp = (b - keyConst) ^ (key[i%len(key)] - tmp)
		out[i] = tmp
	}
	return out
}
