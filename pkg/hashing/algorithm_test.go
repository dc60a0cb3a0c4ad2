package hashing

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestDeterminism(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")

	h1 := New()
	h1.Write(data)
	d1 := h1.Sum(nil)

	h2 := New()
	h2.Write(data)
	d2 := h2.Sum(nil)

	if !bytes.Equal(d1, d2) {
		t.Fatalf("equal inputs produced different digests: %x vs %x", d1, d2)
	}
	if len(d1) != DigestSize {
		t.Fatalf("expected %d-byte digest, got %d", DigestSize, len(d1))
	}
}

func TestAssociativity(t *testing.T) {
	b1 := []byte("hello, ")
	b2 := []byte("world!")

	split := New()
	split.Write(b1)
	split.Write(b2)
	splitDigest := split.Sum(nil)

	whole := New()
	whole.Write(append(append([]byte{}, b1...), b2...))
	wholeDigest := whole.Sum(nil)

	if !bytes.Equal(splitDigest, wholeDigest) {
		t.Fatalf("update(b1); update(b2) != update(b1||b2): %x vs %x", splitDigest, wholeDigest)
	}
}

func TestKnownAnswerVectors(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"", "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"},
		{"abc", "6437b3ac38465133ffb63b75273a8db548c558465d79db03fd359c6cd5bd9d85"},
	}

	for _, c := range cases {
		h := New()
		h.Write([]byte(c.input))
		got := hex.EncodeToString(h.Sum(nil))
		if got != c.want {
			t.Fatalf("BLAKE3(%q) = %s, want %s", c.input, got, c.want)
		}
	}
}

func TestAlgorithmDescriptionAndSupported(t *testing.T) {
	if !Algorithm_BLAKE3.Supported() {
		t.Fatal("Algorithm_BLAKE3 should be supported")
	}
	if !Algorithm_AlgorithmDefault.Supported() {
		t.Fatal("Algorithm_AlgorithmDefault should be supported (aliases BLAKE3)")
	}
	if Algorithm_BLAKE3.Description() != "BLAKE3" {
		t.Fatalf("unexpected description: %s", Algorithm_BLAKE3.Description())
	}
	unsupported := Algorithm(255)
	if unsupported.Supported() {
		t.Fatal("algorithm 255 should not be supported")
	}
}
