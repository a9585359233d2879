package pagination_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/general_ledger/internal/utils/pagination"
)

func TestTokenRoundTrip(t *testing.T) {
	entryDate := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2025, 6, 15, 10, 30, 45, 123456789, time.UTC)
	entryID := "0c9d5a1e-32be-4f6e-9a58-3f2a2e0f8f11"

	token := pagination.EncodeToken(entryDate, createdAt, entryID)
	gotDate, gotCreatedAt, gotEntryID, err := pagination.DecodeToken(token)

	require.NoError(t, err)
	assert.True(t, gotDate.Equal(entryDate))
	assert.True(t, gotCreatedAt.Equal(createdAt))
	assert.Equal(t, entryID, gotEntryID)
}

func TestDecodeTokenRejectsGarbage(t *testing.T) {
	_, _, _, err := pagination.DecodeToken("not base64!!")
	assert.Error(t, err)

	// Valid base64 but not a token.
	_, _, _, err = pagination.DecodeToken("aGVsbG8=")
	assert.Error(t, err)
}
