// Package container implements the Container Writer and Reader (§4.5,
// §4.6, §6): the 20-byte header, 80-byte environment block, code section,
// and appended DEFLATE ZIP archive of the original source.
package container

import (
	"archive/zip"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/gmofishsauce/rvasm/internal/env"
)

// Magic is the 8-byte container identifier.
const Magic = "FURV0000"

const (
	envOffset  = 0x14
	codeOffset = 0x64
)

// Writer builds an object container incrementally: header placeholder,
// environment block, code bytes, then the source archive with the header
// patched once the archive's offset is known.
type Writer struct {
	f    *os.File
	path string
}

// Create opens path for writing and emits the header placeholder.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := &Writer{f: f, path: path}
	if err := w.writeHeaderPlaceholder(); err != nil {
		w.Abort()
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeaderPlaceholder() error {
	h := make([]byte, 20)
	copy(h[0:8], Magic)
	binary.LittleEndian.PutUint32(h[8:12], envOffset)
	binary.LittleEndian.PutUint32(h[12:16], codeOffset)
	binary.LittleEndian.PutUint32(h[16:20], 0)
	_, err := w.f.Write(h)
	return err
}

// WriteEnv writes the 80-byte environment block immediately after the
// header, at offset 0x14.
func (w *Writer) WriteEnv(b *env.Block) error {
	_, err := w.f.Write(b.Encode())
	return err
}

// WriteCode appends the assembled code+data bytes at offset 0x64.
func (w *Writer) WriteCode(code []byte) error {
	_, err := w.f.Write(code)
	return err
}

// Finish patches the source-archive offset into the header and appends a
// DEFLATE ZIP archive of sourcePath under its original base name.
func (w *Writer) Finish(sourcePath string) error {
	pos, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := w.f.Seek(16, io.SeekStart); err != nil {
		return err
	}
	offBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(offBuf, uint32(pos))
	if _, err := w.f.Write(offBuf); err != nil {
		return err
	}
	if _, err := w.f.Seek(pos, io.SeekStart); err != nil {
		return err
	}
	return w.appendSourceArchive(sourcePath)
}

func (w *Writer) appendSourceArchive(sourcePath string) error {
	tmp, err := os.CreateTemp("", "rvasm-src-*.zip")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := writeSourceZip(tmp, sourcePath); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	zipData, err := os.ReadFile(tmpPath)
	if err != nil {
		return err
	}
	_, err = w.f.Write(zipData)
	return err
}

func writeSourceZip(tmp *os.File, sourcePath string) error {
	src, err := os.ReadFile(sourcePath)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(tmp)
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:   filepath.Base(sourcePath),
		Method: zip.Deflate,
	})
	if err != nil {
		zw.Close()
		return err
	}
	if _, err := fw.Write(src); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// Close closes the underlying file without removing it.
func (w *Writer) Close() error {
	return w.f.Close()
}

// Abort closes and removes the partial object file (§4.5, §5 "fail-safe
// cleanup"): called whenever Pass 1 or Pass 2 reports an error.
func (w *Writer) Abort() {
	w.f.Close()
	os.Remove(w.path)
}
