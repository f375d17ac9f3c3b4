package container

import (
	"archive/zip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gmofishsauce/rvasm/internal/env"
)

// Header holds the three section offsets read from a container's first
// 20 bytes.
type Header struct {
	EnvOffset  uint32
	CodeOffset uint32
	SrcOffset  uint32
}

// ReadHeader reads and verifies the magic at the start of f, which must be
// positioned at offset 0.
func ReadHeader(f *os.File) (*Header, error) {
	buf := make([]byte, 20)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if string(buf[0:8]) != Magic {
		return nil, fmt.Errorf("not an object container: bad magic")
	}
	return &Header{
		EnvOffset:  binary.LittleEndian.Uint32(buf[8:12]),
		CodeOffset: binary.LittleEndian.Uint32(buf[12:16]),
		SrcOffset:  binary.LittleEndian.Uint32(buf[16:20]),
	}, nil
}

// ReadEnv seeks to the header's environment offset and decodes the block.
func ReadEnv(f *os.File, h *Header) (*env.Block, error) {
	if _, err := f.Seek(int64(h.EnvOffset), io.SeekStart); err != nil {
		return nil, err
	}
	buf := make([]byte, env.BlockSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, fmt.Errorf("reading environment block: %w", err)
	}
	return env.Decode(buf)
}

// ExtractSource seeks to the header's source-archive offset, copies the
// remaining bytes into a temporary file, unzips it into destDir, and
// removes the temporary file whether extraction succeeds or fails.
func ExtractSource(f *os.File, h *Header, destDir string) error {
	if _, err := f.Seek(int64(h.SrcOffset), io.SeekStart); err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "rvextract-*.zip")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, f); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	zr, err := zip.OpenReader(tmpPath)
	if err != nil {
		return fmt.Errorf("opening source archive: %w", err)
	}
	defer zr.Close()

	for _, zf := range zr.File {
		if err := extractZipFile(zf, destDir); err != nil {
			return err
		}
	}
	return nil
}

func extractZipFile(zf *zip.File, destDir string) error {
	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	outPath := filepath.Join(destDir, filepath.Base(zf.Name))
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}
