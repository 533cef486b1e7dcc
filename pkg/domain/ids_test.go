package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "rently/pkg/domain-errors"
)

func TestParseUserID(t *testing.T) {
	t.Run("valid UUID round-trips", func(t *testing.T) {
		raw := uuid.New().String()
		parsed, err := ParseUserID(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, parsed.String())
	})

	t.Run("empty string is invalid input", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("malformed string is invalid input", func(t *testing.T) {
		_, err := ParseUserID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("nil UUID is rejected", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
	})
}

func TestIDZeroValues(t *testing.T) {
	assert.True(t, UserID{}.IsZero())
	assert.True(t, ListingID{}.IsZero())
	assert.False(t, NewUserID().IsZero())
	assert.False(t, NewRequestID().IsZero())
}

func TestIDTypesAreDistinct(t *testing.T) {
	raw := uuid.New().String()
	listingID, err := ParseListingID(raw)
	require.NoError(t, err)
	communityID, err := ParseCommunityID(raw)
	require.NoError(t, err)

	// Same underlying UUID, different identities in the type system.
	assert.Equal(t, listingID.String(), communityID.String())
}

func TestIDJSONRoundTrip(t *testing.T) {
	original := NewListingID()

	encoded, err := json.Marshal(original)
	require.NoError(t, err)
	assert.JSONEq(t, `"`+original.String()+`"`, string(encoded))

	var decoded ListingID
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, original, decoded)

	var invalid ListingID
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &invalid))
}
