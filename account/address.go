package account

import (
	"fmt"

	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/mr-tron/base58"
)

const (
	// AddressLength is the fixed byte length of an encoded account address:
	// chain id (2) + address type (1) + HASH160 (20) + checksum (1).
	AddressLength = 24

	hashLength = 20
)

// Address identifies an account on the host chain. The zero value means
// "no address". Addresses are comparable and usable as map keys.
type Address [AddressLength]byte

// FromPubKey derives an address from a serialized public key.
// The 20-byte body is HASH160(pubkey) = RIPEMD160(SHA256(pubkey)).
func FromPubKey(chainID uint16, addrType byte, pubKey []byte) Address {
	var a Address
	a[0] = byte(chainID)
	a[1] = byte(chainID >> 8)
	a[2] = addrType
	copy(a[3:3+hashLength], bsvhash.Hash160(pubKey))
	a[AddressLength-1] = checksum(a[:AddressLength-1])
	return a
}

// Parse decodes a base58 address string and verifies its checksum.
func Parse(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return FromBytes(raw)
}

// FromBytes builds an address from raw bytes, verifying length and checksum.
func FromBytes(raw []byte) (Address, error) {
	if len(raw) != AddressLength {
		return Address{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAddress, AddressLength, len(raw))
	}
	var a Address
	copy(a[:], raw)
	if a[AddressLength-1] != checksum(a[:AddressLength-1]) {
		return Address{}, ErrBadChecksum
	}
	return a, nil
}

// String returns the base58 encoding of the address.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// ChainID returns the little-endian chain identifier prefix.
func (a Address) ChainID() uint16 {
	return uint16(a[0]) | uint16(a[1])<<8
}

// Type returns the address type byte (account, contract, multisig).
func (a Address) Type() byte {
	return a[2]
}

// IsZero reports whether a is the zero ("no address") value.
func (a Address) IsZero() bool {
	return a == Address{}
}

// checksum is the XOR of all preceding address bytes.
func checksum(body []byte) byte {
	var x byte
	for _, b := range body {
		x ^= b
	}
	return x
}
