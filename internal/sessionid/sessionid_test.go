package sessionid

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	id, err := New()
	require.NoError(t, err)

	assert.Len(t, id, Length)
	require.NoError(t, Validate(id))

	u, err := Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), u.Version())
}

func TestNewUnique(t *testing.T) {
	ids := make(map[string]bool)

	for i := 0; i < 100; i++ {
		id, err := New()
		require.NoError(t, err)
		assert.False(t, ids[id], "duplicate ID generated: %s", id)
		ids[id] = true
	}
}

func TestNewTimeSorted(t *testing.T) {
	var ids []string

	for i := 0; i < 10; i++ {
		id, err := New()
		require.NoError(t, err)
		ids = append(ids, id)
		time.Sleep(time.Millisecond)
	}

	for i := 1; i < len(ids); i++ {
		assert.Negative(t, strings.Compare(ids[i-1], ids[i]), "IDs not sorted: %s >= %s", ids[i-1], ids[i])
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	tests := []uuid.UUID{
		uuid.Nil,
		uuid.Max,
		uuid.MustParse("01890a5d-ac96-774b-bcce-b302099a8057"),
	}

	for _, u := range tests {
		id := Encode(u)
		require.NoError(t, Validate(id), u.String())

		back, err := Parse(id)
		require.NoError(t, err)
		assert.Equal(t, u, back)
	}

	assert.Equal(t, strings.Repeat("0", Length), Encode(uuid.Nil))
	assert.Equal(t, "7"+strings.Repeat("z", Length-1), Encode(uuid.Max))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid ID", "01h5n0et5q6mt3v7ms1234abcd", false},
		{"too short", "01h5n0et5q6mt3v7ms123", true},
		{"too long", "01h5n0et5q6mt3v7ms1234abcdef", true},
		{"first char too high", "81h5n0et5q6mt3v7ms1234abcd", true},
		{"invalid character", "01h5n0et5q6mt3v7ms1234abci", true},
		{"uppercase not allowed", "01H5N0ET5Q6MT3V7MS1234ABCD", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	_, err := Parse("nope")
	assert.Error(t, err)
}

func TestAlphabet(t *testing.T) {
	assert.Len(t, alphabet, 32)

	seen := make(map[rune]bool)
	for _, char := range alphabet {
		assert.False(t, seen[char], "duplicate character in alphabet: %c", char)
		seen[char] = true
	}

	for _, char := range "ilou" {
		assert.NotContains(t, alphabet, string(char))
	}
}
