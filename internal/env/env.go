// Package env builds the 80-byte environment block written into every
// object container (§3 "Container file", §6 object layout): two UUIDs,
// the assembling user's truncated name, and four POSIX-second timestamps.
package env

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"os/user"
	"time"

	"github.com/google/uuid"
)

var errShortBlock = errors.New("environment block truncated")

// BlockSize is the on-disk size of the environment block in bytes.
const BlockSize = 80

// Block holds the decoded fields of an environment block.
type Block struct {
	UUID1        uuid.UUID
	UUID4        uuid.UUID
	UserName     string
	AssembleTime float64
	SourceCTime  float64
	SourceATime  float64
	SourceMTime  float64
}

// Build constructs the environment block for assembling sourcePath right
// now: a fresh time-based UUID, a fresh random UUID, the current OS user's
// name, and the source file's ctime/atime/mtime.
func Build(sourcePath string) (*Block, error) {
	u1, err := uuid.NewUUID()
	if err != nil {
		return nil, err
	}
	u4, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	fi, err := os.Stat(sourcePath)
	if err != nil {
		return nil, err
	}
	ctime, atime, mtime := statTimes(fi)

	return &Block{
		UUID1:        u1,
		UUID4:        u4,
		UserName:     lookupUserName(),
		AssembleTime: float64(time.Now().UnixNano()) / 1e9,
		SourceCTime:  ctime,
		SourceATime:  atime,
		SourceMTime:  mtime,
	}, nil
}

func lookupUserName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if v := os.Getenv("USER"); v != "" {
		return v
	}
	if v := os.Getenv("USERNAME"); v != "" {
		return v
	}
	return ""
}

// Encode packs a Block into the 80-byte on-disk form.
func (b *Block) Encode() []byte {
	out := make([]byte, BlockSize)
	copy(out[0:16], b.UUID1[:])
	copy(out[16:32], b.UUID4[:])
	copy(out[32:48], packUserName(b.UserName))
	binary.LittleEndian.PutUint64(out[48:56], math.Float64bits(b.AssembleTime))
	binary.LittleEndian.PutUint64(out[56:64], math.Float64bits(b.SourceCTime))
	binary.LittleEndian.PutUint64(out[64:72], math.Float64bits(b.SourceATime))
	binary.LittleEndian.PutUint64(out[72:80], math.Float64bits(b.SourceMTime))
	return out
}

// Decode unpacks an 80-byte environment block.
func Decode(buf []byte) (*Block, error) {
	if len(buf) < BlockSize {
		return nil, errShortBlock
	}
	var u1, u4 uuid.UUID
	copy(u1[:], buf[0:16])
	copy(u4[:], buf[16:32])
	name := unpackUserName(buf[32:48])
	return &Block{
		UUID1:        u1,
		UUID4:        u4,
		UserName:     name,
		AssembleTime: math.Float64frombits(binary.LittleEndian.Uint64(buf[48:56])),
		SourceCTime:  math.Float64frombits(binary.LittleEndian.Uint64(buf[56:64])),
		SourceATime:  math.Float64frombits(binary.LittleEndian.Uint64(buf[64:72])),
		SourceMTime:  math.Float64frombits(binary.LittleEndian.Uint64(buf[72:80])),
	}, nil
}

// packUserName truncates name to 15 bytes of UTF-8 without splitting a
// multi-byte rune, then zero-pads to 16.
func packUserName(name string) []byte {
	out := make([]byte, 16)
	n := 0
	for _, r := range name {
		rb := len(string(r))
		if n+rb > 15 {
			break
		}
		copy(out[n:], string(r))
		n += rb
	}
	return out
}

func unpackUserName(buf []byte) string {
	end := 0
	for end < len(buf) && buf[end] != 0 {
		end++
	}
	return string(buf[:end])
}

// FormatTime renders a POSIX-seconds timestamp the way the extractor
// prints it: local time, "2006-01-02 15:04:05".
func FormatTime(sec float64) string {
	return time.Unix(int64(sec), 0).Local().Format("2006-01-02 15:04:05")
}
