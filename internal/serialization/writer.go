package serialization

import (
	"bufio"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	json "github.com/goccy/go-json"

	"github.com/strand-ml/strand/internal/tensor"
)

// Write saves a state dict to path in .strand format. Tensor order in the
// file is sorted by name, so identical state dicts produce identical files.
func Write(path, modelType string, tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteTo(f, modelType, tensors, metadata); err != nil {
		return err
	}
	return f.Close()
}

// WriteTo streams a state dict in .strand format to w.
func WriteTo(w io.Writer, modelType string, tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)

	header := Header{
		FormatVersion: FormatVersion,
		ModelType:     modelType,
		CreatedAt:     time.Now().UTC(),
		Tensors:       make([]TensorMeta, 0, len(names)),
		Metadata:      metadata,
	}
	var offset int64
	for _, name := range names {
		raw := tensors[name]
		size := int64(len(raw.Bytes()))
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  dtypeToString(raw.DType()),
			Shape:  raw.Shape(),
			Offset: offset,
			Size:   size,
		})
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshal header: %w", err)
	}

	sum := sha256.New()
	out := bufio.NewWriter(io.MultiWriter(w, sum))

	if _, err := out.WriteString(Magic); err != nil {
		return err
	}
	if err := binary.Write(out, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return err
	}
	if err := binary.Write(out, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return err
	}
	if _, err := out.Write(headerJSON); err != nil {
		return err
	}

	// Pad so the data section starts on a DataAlignment boundary.
	written := int64(len(Magic)) + 4 + 8 + int64(len(headerJSON))
	if pad := padding(written); pad > 0 {
		if _, err := out.Write(make([]byte, pad)); err != nil {
			return err
		}
	}

	for _, name := range names {
		if _, err := out.Write(tensors[name].Bytes()); err != nil {
			return fmt.Errorf("write tensor %q: %w", name, err)
		}
	}
	if err := out.Flush(); err != nil {
		return err
	}

	// Trailing digest covers everything written so far.
	if _, err := w.Write(sum.Sum(nil)); err != nil {
		return err
	}
	return nil
}

func padding(n int64) int64 {
	if r := n % DataAlignment; r != 0 {
		return DataAlignment - r
	}
	return 0
}
