package model

import (
	"bytes"
	"testing"

	"github.com/GonxKZ/disksense64-sub000/pkg/filesystem"
)

func sampleEntry(withSignatures bool) *FileEntry {
	e := &FileEntry{
		VolumeId:    42,
		FileId:      1001,
		PathId:      HashPath("/data/photo.jpg"),
		FullPath:    "/data/photo.jpg",
		SizeLogical: 123456,
		SizeOnDisk:  126976,
		Attributes:  filesystem.AttributeArchive,
		Timestamps: Timestamps{
			Creation:   1000,
			LastWrite:  2000,
			LastAccess: 3000,
			Change:     4000,
		},
	}
	if withSignatures {
		e.HeadTail16 = bytes.Repeat([]byte{0xAB}, 32)
		e.Digest = bytes.Repeat([]byte{0xCD}, 32)
	}
	return e
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	for _, withSignatures := range []bool{false, true} {
		original := sampleEntry(withSignatures)
		encoded := original.Marshal()

		decoded, err := Unmarshal(encoded)
		if err != nil {
			t.Fatalf("unmarshal failed: %s", err)
		}

		if decoded.VolumeId != original.VolumeId ||
			decoded.FileId != original.FileId ||
			decoded.PathId != original.PathId ||
			decoded.FullPath != original.FullPath ||
			decoded.SizeLogical != original.SizeLogical ||
			decoded.SizeOnDisk != original.SizeOnDisk ||
			decoded.Attributes != original.Attributes ||
			decoded.Timestamps != original.Timestamps {
			t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, original)
		}
		if !bytes.Equal(decoded.HeadTail16, original.HeadTail16) {
			t.Fatalf("head/tail mismatch after round trip")
		}
		if !bytes.Equal(decoded.Digest, original.Digest) {
			t.Fatalf("digest mismatch after round trip")
		}
	}
}

func TestUnmarshalTruncated(t *testing.T) {
	full := sampleEntry(true).Marshal()
	for _, cut := range []int{0, 1, 10, len(full) - 1} {
		if _, err := Unmarshal(full[:cut]); err == nil {
			t.Fatalf("expected error unmarshaling %d of %d bytes", cut, len(full))
		}
	}
}

func TestClusterRoundedSize(t *testing.T) {
	cases := []struct{ in, want uint64 }{
		{0, 0},
		{1, 4096},
		{4096, 4096},
		{4097, 8192},
		{20000, 20480},
	}
	for _, c := range cases {
		if got := ClusterRoundedSize(c.in); got != c.want {
			t.Fatalf("ClusterRoundedSize(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestHasSignatureAndDigest(t *testing.T) {
	e := sampleEntry(false)
	if e.HasSignature() || e.HasDigest() {
		t.Fatal("fresh entry should report no signature or digest")
	}
	e = sampleEntry(true)
	if !e.HasSignature() || !e.HasDigest() {
		t.Fatal("entry with 32-byte fields should report signature and digest present")
	}
}
