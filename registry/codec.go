package registry

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/nulsoracles/librevdist-go/account"
)

const (
	codecHeaderSize  = 4 // num_entries(4)
	codecEntrySize   = account.AddressLength
	codecTrailerSize = 1 // initialized flag(1)
)

// Serialize encodes the registry's ordered member list to binary format.
// Only active members appear in the ordered list, so the flag map is
// reconstructed from it on decode.
func Serialize(r *Registry) ([]byte, error) {
	if len(r.order) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d entries", ErrTooManyMembers, len(r.order))
	}
	buf := make([]byte, codecHeaderSize+codecEntrySize*len(r.order)+codecTrailerSize)
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(r.order)))
	offset := codecHeaderSize
	for _, a := range r.order {
		copy(buf[offset:offset+codecEntrySize], a[:])
		offset += codecEntrySize
	}
	if r.initialized {
		buf[offset] = 1
	}
	return buf, nil
}

// Deserialize decodes binary data into a registry.
func Deserialize(data []byte) (*Registry, error) {
	if len(data) < codecHeaderSize+codecTrailerSize {
		return nil, fmt.Errorf("%w: too short (%d bytes)", ErrInvalidData, len(data))
	}
	numEntries := int(binary.BigEndian.Uint32(data[0:4]))
	expected := codecHeaderSize + codecEntrySize*numEntries + codecTrailerSize
	if len(data) != expected {
		return nil, fmt.Errorf("%w: expected %d bytes for %d entries, got %d",
			ErrInvalidData, expected, numEntries, len(data))
	}

	r := New()
	offset := codecHeaderSize
	for i := 0; i < numEntries; i++ {
		var a account.Address
		copy(a[:], data[offset:offset+codecEntrySize])
		offset += codecEntrySize
		r.active[a] = true
		r.order = append(r.order, a)
	}
	r.initialized = data[offset] == 1
	return r, nil
}
