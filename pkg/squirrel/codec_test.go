package squirrel

import (
	"bytes"
	"testing"
)

func TestGobCodec_RoundTrip(t *testing.T) {
	type record struct {
		Name  string
		Count int
		Tags  []string
	}

	codec := GobCodec[record]{}
	want := record{Name: "acorn", Count: 7, Tags: []string{"a", "b"}}

	data, err := codec.Encode(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != want.Name || got.Count != want.Count || len(got.Tags) != len(want.Tags) {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestGobCodec_FalseRoundTrips(t *testing.T) {
	codec := GobCodec[bool]{}

	data, err := codec.Encode(false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("decoding an encoded false must not report failure: %v", err)
	}
	if got != false {
		t.Error("expected false back")
	}
}

func TestGobCodec_GarbageReportsError(t *testing.T) {
	codec := GobCodec[int]{}

	if _, err := codec.Decode([]byte("garbage")); err == nil {
		t.Error("expected decode error for garbage input")
	}
}

func TestJSONCodec_RoundTrip(t *testing.T) {
	codec := JSONCodec[map[string]int]{}
	want := map[string]int{"a": 1, "b": 2}

	data, err := codec.Encode(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["a"] != 1 || got["b"] != 2 {
		t.Errorf("round trip mismatch: got %v, want %v", got, want)
	}
}

func TestRawCodec_PassThrough(t *testing.T) {
	codec := RawCodec{}
	payload := []byte("raw bytes")

	data, err := codec.Encode(payload)
	if err != nil {
		t.Fatal(err)
	}
	got, err := codec.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("got %q, want %q", got, payload)
	}
}

func TestZstdCodec_RoundTrip(t *testing.T) {
	codec, err := NewZstdCodec[[]byte](RawCodec{}, 3)
	if err != nil {
		t.Fatal(err)
	}

	// Highly compressible payload should take the compressed path.
	big := bytes.Repeat([]byte("squirrels love acorns "), 500)
	data, err := codec.Encode(big)
	if err != nil {
		t.Fatal(err)
	}
	if data[0] != frameZstd {
		t.Error("compressible payload was not compressed")
	}
	if len(data) >= len(big) {
		t.Errorf("compressed size %d not smaller than original %d", len(data), len(big))
	}

	got, err := codec.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, big) {
		t.Error("round trip mismatch for compressed payload")
	}

	// Tiny payload stays raw but still round-trips.
	small := []byte("x")
	data, err = codec.Encode(small)
	if err != nil {
		t.Fatal(err)
	}
	if data[0] != frameRaw {
		t.Error("incompressible payload was compressed anyway")
	}
	got, err = codec.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, small) {
		t.Error("round trip mismatch for raw payload")
	}
}

func TestZstdCodec_BadFrame(t *testing.T) {
	codec, err := NewZstdCodec[[]byte](RawCodec{}, 3)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := codec.Decode(nil); err == nil {
		t.Error("expected error for empty payload")
	}
	if _, err := codec.Decode([]byte{0xFF, 0x01}); err == nil {
		t.Error("expected error for unknown frame marker")
	}
	if _, err := codec.Decode([]byte{frameZstd, 0x00}); err == nil {
		t.Error("expected error for truncated zstd frame")
	}
}
