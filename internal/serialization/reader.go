package serialization

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/strand-ml/strand/internal/tensor"
)

// Read loads a .strand file into a state dict, verifying the trailing
// checksum first. The returned header carries the model type and metadata.
func Read(path string) (*Header, map[string]*tensor.RawTensor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes an in-memory .strand file.
func Parse(data []byte) (*Header, map[string]*tensor.RawTensor, error) {
	fixed := len(Magic) + 4 + 8
	if len(data) < fixed+checksumSize {
		return nil, nil, ErrInvalidMagic
	}
	if string(data[:len(Magic)]) != Magic {
		return nil, nil, ErrInvalidMagic
	}
	version := binary.LittleEndian.Uint32(data[len(Magic):])
	if version != FormatVersion {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	headerSize := binary.LittleEndian.Uint64(data[len(Magic)+4:])
	if headerSize > maxHeaderSize {
		return nil, nil, ErrHeaderTooLarge
	}

	body := data[:len(data)-checksumSize]
	stored := data[len(data)-checksumSize:]
	digest := sha256.Sum256(body)
	if !bytes.Equal(digest[:], stored) {
		return nil, nil, ErrChecksumMismatch
	}

	headerEnd := fixed + int(headerSize)
	if headerEnd > len(body) {
		return nil, nil, ErrHeaderTooLarge
	}
	var header Header
	if err := json.Unmarshal(data[fixed:headerEnd], &header); err != nil {
		return nil, nil, fmt.Errorf("unmarshal header: %w", err)
	}

	dataStart := int64(headerEnd) + padding(int64(headerEnd))
	section := body[min(int(dataStart), len(body)):]

	tensors := make(map[string]*tensor.RawTensor, len(header.Tensors))
	for _, meta := range header.Tensors {
		dt, ok := stringToDtype(meta.DType)
		if !ok {
			return nil, nil, fmt.Errorf("%w: tensor %q has dtype %q", ErrUnknownDType, meta.Name, meta.DType)
		}
		if meta.Offset < 0 || meta.Size < 0 || meta.Offset+meta.Size > int64(len(section)) {
			return nil, nil, fmt.Errorf("%w: tensor %q", ErrOutOfBounds, meta.Name)
		}
		raw, err := tensor.NewRaw(tensor.Shape(meta.Shape), dt, tensor.CPU)
		if err != nil {
			return nil, nil, fmt.Errorf("tensor %q: %w", meta.Name, err)
		}
		if want := int64(len(raw.Bytes())); want != meta.Size {
			return nil, nil, fmt.Errorf("tensor %q: shape %v needs %d bytes, header says %d",
				meta.Name, meta.Shape, want, meta.Size)
		}
		copy(raw.Bytes(), section[meta.Offset:meta.Offset+meta.Size])
		tensors[meta.Name] = raw
	}
	return &header, tensors, nil
}
