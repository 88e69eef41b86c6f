package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "employeeapp/pkg/domain-errors"
)

func TestParseRecordID_Invariants(t *testing.T) {
	for _, input := range []string{"", "  ", "abc", "0", "-4", "1.5", "99999999999999999999"} {
		t.Run("rejects "+input, func(t *testing.T) {
			_, err := ParseRecordID(input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		})
	}

	t.Run("accepts positive id with surrounding space", func(t *testing.T) {
		id, err := ParseRecordID(" 42 ")
		require.NoError(t, err)
		assert.Equal(t, RecordID(42), id)
		assert.Equal(t, "42", id.String())
	})
}

func TestIdentity(t *testing.T) {
	assert.True(t, Identity{ID: 1, Name: "Rowland", Role: RoleAdmin}.IsAdmin())
	assert.False(t, Identity{ID: 1, Name: "Rowland", Role: "admin"}.IsAdmin())
	assert.True(t, Identity{}.IsZero())
	assert.False(t, Identity{ID: 3}.IsZero())
}
