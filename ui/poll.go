package ui

import "fmt"

// PollField is one labeled value printed on a live poll line.
type PollField struct {
	Label string
	Value string
}

// PrintPollLine prints a single in-place (carriage-return) line showing the
// current decoded data-point values, mirroring the teacher's in-place
// live-sample line. Neither cmd binary calls it.
func PrintPollLine(fields []PollField) {
	line := "\r[POLL] "
	for _, f := range fields {
		line += fmt.Sprintf("%s=%-12s ", f.Label, f.Value)
	}
	line += "                    "
	fmt.Print(line)
}

// PrintEventLine prints a freshly-seen event-stack entry in place, light
// purple, distinguishing it from the steady poll line above it.
func PrintEventLine(index uint8, code uint16, text string) {
	fmt.Printf("\r\033[95m[EVENT %03d] code=%04x %s\033[0m\n", index, code, text)
}

// PrintAlarmLine prints a newly-occurred alarm, bright yellow.
func PrintAlarmLine(subID uint16, description string) {
	fmt.Printf("\r\033[93m[ALARM %04d] %s\033[0m\n", subID, description)
}
