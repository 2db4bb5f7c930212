package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPubKey_Deterministic(t *testing.T) {
	pub := []byte{0x02, 0x79, 0xBE, 0x66, 0x7E, 0xF9, 0xDC, 0xBB}

	a := FromPubKey(1, 1, pub)
	b := FromPubKey(1, 1, pub)
	assert.Equal(t, a, b)
	assert.False(t, a.IsZero())

	// A different chain id produces a different address.
	c := FromPubKey(2, 1, pub)
	assert.NotEqual(t, a, c)
}

func TestAddress_Fields(t *testing.T) {
	a := FromPubKey(0x0102, 0x03, []byte{0xAA})
	assert.Equal(t, uint16(0x0102), a.ChainID())
	assert.Equal(t, byte(0x03), a.Type())
}

func TestAddress_StringRoundTrip(t *testing.T) {
	a := FromPubKey(1, 1, []byte{0x01, 0x02, 0x03})

	s := a.String()
	require.NotEmpty(t, s)

	parsed, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, a, parsed)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"not base58", "0OIl"},
		{"too short", "2g"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			assert.ErrorIs(t, err, ErrInvalidAddress)
		})
	}
}

func TestFromBytes_BadChecksum(t *testing.T) {
	a := FromPubKey(1, 1, []byte{0x01})
	raw := make([]byte, AddressLength)
	copy(raw, a[:])
	raw[AddressLength-1] ^= 0xFF

	_, err := FromBytes(raw)
	assert.ErrorIs(t, err, ErrBadChecksum)
}

func TestAddress_IsZero(t *testing.T) {
	var z Address
	assert.True(t, z.IsZero())
}
