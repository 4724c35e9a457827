// Package frame implements the M-net wire framing: SOH/EOT delimiters,
// 0xFF byte-doubling escapes, and CRC-16/XMODEM integrity checking.
//
// Wire layout (see spec §6.1):
//
//	SOH DST SRC T_HI T_LO LEN PAYLOAD[LEN] CRC_HI CRC_LO EOT
//
// CRC is computed over the unescaped DST..PAYLOAD span and is itself part of
// the escaped region. LEN is always the unescaped payload length.
package frame

import (
	"errors"
	"fmt"

	"github.com/ic1000/mnet-go/crc"
)

const (
	SOH byte = 0x01
	EOT byte = 0x04

	// MaxPayload is the largest payload LEN can carry (one byte, unescaped length).
	MaxPayload = 255
)

// Errors returned by Build (ErrFrameTooLarge) and Parse. Wrap with errors.Is
// against these sentinels.
var (
	ErrFrameTooLarge = errors.New("frame: payload exceeds 255 bytes")
	ErrBadFraming    = errors.New("frame: missing or misplaced SOH/EOT")
	ErrBadCRC        = errors.New("frame: CRC mismatch")
	ErrBadLength     = errors.New("frame: LEN disagrees with de-escaped payload")
	ErrTruncated     = errors.New("frame: frame ends before EOT")
)

// Frame is the decoded value of one on-wire M-net packet (design note: a
// pure value type, replacing the source's mutable MnetPacket inner class).
type Frame struct {
	Dst     byte
	Src     byte
	Type    uint16
	Payload []byte
}

// escape doubles every 0xFF byte in b (applied to the DST..CRC_LO region).
func escape(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		out = append(out, c)
		if c == 0xFF {
			out = append(out, 0xFF)
		}
	}
	return out
}

// unescape collapses doubled 0xFF bytes. Returns an error if a lone 0xFF is
// found at the end of the slice with no following byte to confirm the pair.
func unescape(b []byte) ([]byte, error) {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		out = append(out, b[i])
		if b[i] == 0xFF {
			i++
			if i >= len(b) || b[i] != 0xFF {
				return nil, ErrBadFraming
			}
		}
	}
	return out, nil
}

// Build constructs the full on-wire frame for dst/src/typ/payload: computes
// the CRC over the unescaped header+payload, escapes the DST..CRC_LO region,
// and wraps it in SOH/EOT.
func Build(dst, src byte, typ uint16, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("%w: got %d bytes", ErrFrameTooLarge, len(payload))
	}

	header := []byte{dst, src, byte(typ >> 8), byte(typ), byte(len(payload))}
	unescaped := append(append([]byte{}, header...), payload...)
	sum := crc.Checksum(unescaped)
	unescaped = append(unescaped, byte(sum>>8), byte(sum))

	out := make([]byte, 0, len(unescaped)*2+2)
	out = append(out, SOH)
	out = append(out, escape(unescaped)...)
	out = append(out, EOT)
	return out, nil
}

// Parse strictly validates and decodes a complete frame: it must start with
// SOH, end with EOT, de-escape cleanly, carry a LEN matching the de-escaped
// payload length, and its CRC must match.
func Parse(b []byte) (Frame, error) {
	if len(b) < 2 || b[0] != SOH {
		return Frame{}, ErrBadFraming
	}
	if b[len(b)-1] != EOT {
		return Frame{}, ErrTruncated
	}
	body, err := unescape(b[1 : len(b)-1])
	if err != nil {
		return Frame{}, err
	}
	// DST SRC T_HI T_LO LEN + payload + CRC_HI CRC_LO
	if len(body) < 7 {
		return Frame{}, ErrTruncated
	}
	dst, src := body[0], body[1]
	typ := uint16(body[2])<<8 | uint16(body[3])
	length := int(body[4])
	if len(body) != 5+length+2 {
		return Frame{}, ErrBadLength
	}
	payload := body[5 : 5+length]
	wantCRC := uint16(body[5+length])<<8 | uint16(body[6+length])
	gotCRC := crc.Checksum(body[:5+length])
	if gotCRC != wantCRC {
		return Frame{}, ErrBadCRC
	}
	return Frame{Dst: dst, Src: src, Type: typ, Payload: append([]byte{}, payload...)}, nil
}
