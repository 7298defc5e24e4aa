package domain

import (
	"encoding/hex"
	"fmt"

	dErrors "credledger/pkg/domain-errors"
)

// Bytes32 is a fixed 32-byte value such as a credential hash, a curve
// coordinate or a signature scalar. Its text form is lowercase hex.
type Bytes32 [32]byte

// ParseBytes32 decodes 64 hex characters, with or without a 0x prefix.
func ParseBytes32(s string) (Bytes32, error) {
	var out Bytes32
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	if len(s) != hex.EncodedLen(len(out)) {
		return out, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("expected %d hex characters, got %d", hex.EncodedLen(len(out)), len(s)))
	}
	if _, err := hex.Decode(out[:], []byte(s)); err != nil {
		return out, dErrors.New(dErrors.CodeInvalidInput, "value is not valid hex")
	}
	return out, nil
}

func (b Bytes32) String() string { return hex.EncodeToString(b[:]) }

func (b Bytes32) IsZero() bool { return b == Bytes32{} }

func (b Bytes32) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Bytes32) UnmarshalText(text []byte) error {
	parsed, err := ParseBytes32(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
