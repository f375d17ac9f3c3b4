package env

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b := &Block{
		UserName:     "alice",
		AssembleTime: 1700000000.5,
		SourceCTime:  1600000000,
		SourceATime:  1600000001,
		SourceMTime:  1600000002,
	}
	buf := b.Encode()
	if len(buf) != BlockSize {
		t.Fatalf("Encode() length = %d, want %d", len(buf), BlockSize)
	}
	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.UserName != b.UserName {
		t.Errorf("UserName = %q, want %q", got.UserName, b.UserName)
	}
	if got.AssembleTime != b.AssembleTime || got.SourceCTime != b.SourceCTime ||
		got.SourceATime != b.SourceATime || got.SourceMTime != b.SourceMTime {
		t.Errorf("timestamps did not round-trip: got %+v", got)
	}
}

func TestUserNameTruncatedTo15BytesAndZeroPadded(t *testing.T) {
	long := "abcdefghijklmnopqrstuvwxyz"
	buf := packUserName(long)
	if len(buf) != 16 {
		t.Fatalf("packUserName length = %d, want 16", len(buf))
	}
	if string(buf[0:15]) != long[:15] {
		t.Errorf("truncated name = %q, want %q", buf[0:15], long[:15])
	}
	if buf[15] != 0 {
		t.Errorf("field is not zero-padded: %v", buf)
	}
}

func TestUserNameTruncationDoesNotSplitRune(t *testing.T) {
	// 14 ASCII bytes followed by a 2-byte rune would split at byte 15;
	// the 2-byte rune must be dropped whole rather than truncated in half.
	name := "aaaaaaaaaaaaaa" + "é" // 14 + 2-byte rune = 16 bytes raw
	buf := packUserName(name)
	decoded := unpackUserName(buf)
	if decoded != "aaaaaaaaaaaaaa" {
		t.Errorf("decoded = %q, want the rune dropped whole", decoded)
	}
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	if _, err := Decode(make([]byte, 10)); err == nil {
		t.Errorf("expected an error decoding a too-short buffer")
	}
}
