package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReferenceFormat(t *testing.T) {
	f := DefaultReferenceFormatter()

	assert.Equal(t, "JE-2025-0001", f.Format("2025", 1))
	assert.Equal(t, "JE-2025-0042", f.Format("2025", 42))
	assert.Equal(t, "JE-2025-9999", f.Format("2025", 9999))
	// Beyond the pad width the number lengthens instead of wrapping.
	assert.Equal(t, "JE-2025-10000", f.Format("2025", 10000))
}

func TestReferenceFormatCustom(t *testing.T) {
	f := ReferenceFormatter{Prefix: "GL", PadWidth: 6}
	assert.Equal(t, "GL-2026-000007", f.Format("2026", 7))

	zero := ReferenceFormatter{Prefix: "JE"}
	assert.Equal(t, "JE-2025-0003", zero.Format("2025", 3))
}
