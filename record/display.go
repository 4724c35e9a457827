package record

import "fmt"

// DisplayBufferLen is the raw size of the remote display (LCD) buffer (spec
// §3/§4.8).
const DisplayBufferLen = 138

// DisplayLineLen is the width of one rendered LCD row.
const DisplayLineLen = 18

// DisplayBuffer holds the raw remote-display bytes from get_remote_display.
type DisplayBuffer [DisplayBufferLen]byte

// ParseDisplayBuffer validates and wraps a raw remote-display reply.
func ParseDisplayBuffer(raw []byte) (DisplayBuffer, error) {
	var buf DisplayBuffer
	if len(raw) != DisplayBufferLen {
		return buf, fmt.Errorf("record: remote display buffer is %d bytes, want %d", len(raw), DisplayBufferLen)
	}
	copy(buf[:], raw)
	return buf, nil
}

// Lines renders the buffer as successive 18-char rows with trailing padding
// stripped (spec §4.8).
func (b DisplayBuffer) Lines() []string {
	lines := make([]string, 0, DisplayBufferLen/DisplayLineLen+1)
	for start := 0; start < DisplayBufferLen; start += DisplayLineLen {
		end := start + DisplayLineLen
		if end > DisplayBufferLen {
			end = DisplayBufferLen
		}
		lines = append(lines, trimTrailing(b[start:end]))
	}
	return lines
}
