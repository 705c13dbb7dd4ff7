package serialization

import "errors"

// Errors returned while reading a .strand file.
var (
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrHeaderTooLarge     = errors.New("header exceeds maximum size")
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrOutOfBounds        = errors.New("tensor extends beyond data section")
	ErrUnknownDType       = errors.New("unknown tensor data type")
)
