package services

import "fmt"

// ReferenceFormatter renders allocated sequence numbers as human-readable
// entry references, e.g. "JE-2025-0001". PadWidth is a minimum: sequences
// beyond the digit budget lengthen the number instead of wrapping or
// truncating, so references stay collision-free at any volume.
type ReferenceFormatter struct {
	Prefix   string
	PadWidth int
}

// DefaultReferenceFormatter matches the engine's stock configuration.
func DefaultReferenceFormatter() ReferenceFormatter {
	return ReferenceFormatter{Prefix: "JE", PadWidth: 4}
}

// Format renders a reference for a fiscal period and sequence number.
func (f ReferenceFormatter) Format(fiscalPeriod string, seq int64) string {
	width := f.PadWidth
	if width <= 0 {
		width = 4
	}
	return fmt.Sprintf("%s-%s-%0*d", f.Prefix, fiscalPeriod, width, seq)
}
