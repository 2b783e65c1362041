package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/ticketvec-mcp/pkg/types"
)

const (
	// StoreExtension is the filename suffix of every project store
	StoreExtension = ".db"

	// MaxProjectNameLength bounds project names in bytes
	MaxProjectNameLength = 64

	escapeByte = '_'
	hexDigits  = "0123456789abcdef"
)

// EncodeProjectName maps a project name to its store filename.
//
// Bytes in [a-z0-9-] are kept; every other byte becomes '_' followed by two
// lowercase hex digits. The mapping is injective, never produces path
// separators and never yields two names that differ only in case, so
// distinct projects get distinct files on every filesystem.
func EncodeProjectName(project string) (string, error) {
	if err := ValidateProjectName(project); err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(project) + len(StoreExtension))
	for i := 0; i < len(project); i++ {
		c := project[i]
		if isPlainByte(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte(escapeByte)
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}
	b.WriteString(StoreExtension)
	return b.String(), nil
}

// DecodeProjectName reverses EncodeProjectName
func DecodeProjectName(filename string) (string, error) {
	encoded, ok := strings.CutSuffix(filename, StoreExtension)
	if !ok || encoded == "" {
		return "", fmt.Errorf("%q is not a store filename", filename)
	}

	out := make([]byte, 0, len(encoded))
	for i := 0; i < len(encoded); i++ {
		c := encoded[i]
		switch {
		case isPlainByte(c):
			out = append(out, c)
		case c == escapeByte && i+2 < len(encoded) && isLowerHex(encoded[i+1]) && isLowerHex(encoded[i+2]):
			v, err := strconv.ParseUint(encoded[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("%q: bad escape at %d: %w", filename, i, err)
			}
			if isPlainByte(byte(v)) {
				return "", fmt.Errorf("%q: non-canonical escape at %d", filename, i)
			}
			out = append(out, byte(v))
			i += 2
		default:
			return "", fmt.Errorf("%q: unexpected byte %q at %d", filename, c, i)
		}
	}
	return string(out), nil
}

// ValidateProjectName rejects names that cannot be mapped to a store
func ValidateProjectName(project string) error {
	if project == "" {
		return types.Errorf(types.ErrInvalidProject, "project name is empty")
	}
	if len(project) > MaxProjectNameLength {
		return types.Errorf(types.ErrInvalidProject, "project name exceeds %d bytes", MaxProjectNameLength)
	}
	return nil
}

func isPlainByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-'
}

func isLowerHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}
