package squirrel

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Codec encodes cached values to bytes and back. Decode returns a tagged
// error distinct from the decoded value, so a legitimately cached false or
// zero value is never mistaken for a decode failure.
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// GobCodec is the default codec, using encoding/gob.
type GobCodec[T any] struct{}

// Encode serializes v with gob.
func (GobCodec[T]) Encode(v T) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes a gob payload.
func (GobCodec[T]) Decode(data []byte) (T, error) {
	var v T
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		return v, err
	}
	return v, nil
}

// JSONCodec stores values as JSON, for entries that should stay readable
// with standard tooling.
type JSONCodec[T any] struct{}

// Encode serializes v as JSON.
func (JSONCodec[T]) Encode(v T) ([]byte, error) {
	return json.Marshal(v)
}

// Decode deserializes a JSON payload.
func (JSONCodec[T]) Decode(data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}

// RawCodec passes byte slices through untouched.
type RawCodec struct{}

// Encode returns value as-is.
func (RawCodec) Encode(v []byte) ([]byte, error) {
	return v, nil
}

// Decode returns data as-is.
func (RawCodec) Decode(data []byte) ([]byte, error) {
	return data, nil
}

// Frame markers for zstd-wrapped payloads.
const (
	frameRaw  = 0x00
	frameZstd = 0x01
)

// ZstdCodec wraps another codec with zstd compression. Payloads that do not
// shrink are stored uncompressed; a one-byte frame marker records which form
// was written.
type ZstdCodec[T any] struct {
	inner   Codec[T]
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewZstdCodec wraps inner with zstd compression at the given level.
func NewZstdCodec[T any](inner Codec[T], level int) (*ZstdCodec[T], error) {
	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &ZstdCodec[T]{inner: inner, encoder: encoder, decoder: decoder}, nil
}

// Encode serializes v with the inner codec and compresses the result when
// compression actually reduces its size.
func (c *ZstdCodec[T]) Encode(v T) ([]byte, error) {
	data, err := c.inner.Encode(v)
	if err != nil {
		return nil, err
	}

	compressed := c.encoder.EncodeAll(data, make([]byte, 1, len(data)/2+1))
	if len(compressed) < len(data)+1 {
		compressed[0] = frameZstd
		return compressed, nil
	}

	framed := make([]byte, 1+len(data))
	framed[0] = frameRaw
	copy(framed[1:], data)
	return framed, nil
}

// Decode reverses Encode, decompressing when the frame marker says so.
func (c *ZstdCodec[T]) Decode(data []byte) (T, error) {
	var zero T
	if len(data) == 0 {
		return zero, fmt.Errorf("empty payload")
	}

	payload := data[1:]
	switch data[0] {
	case frameRaw:
	case frameZstd:
		decompressed, err := c.decoder.DecodeAll(payload, nil)
		if err != nil {
			return zero, fmt.Errorf("zstd decompression failed: %w", err)
		}
		payload = decompressed
	default:
		return zero, fmt.Errorf("unknown frame marker 0x%02x", data[0])
	}

	return c.inner.Decode(payload)
}
