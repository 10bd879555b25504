// Package rom loads CHIP-8 program images from disk, unpacking common
// archive and compression formats by file extension.
package rom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/bodgit/sevenzip"
	"github.com/cespare/xxhash"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"

	"github.com/valerio/go-chip8/chip8/memory"
)

var (
	// ErrEmpty is returned for a ROM with no bytes.
	ErrEmpty = errors.New("rom is empty")
	// ErrNoFile is returned for an archive with no regular file in it.
	ErrNoFile = errors.New("archive contains no file")
)

// Image is a program ready to be copied into memory.
type Image struct {
	// Name is the base name of the file the program came from.
	Name string
	Data []byte
	// Hash fingerprints Data, shown in logs and the debug panel.
	Hash uint64
	// Format is the container the program was unpacked from, "raw" if none.
	Format string
}

// Load reads path and unpacks it according to its extension.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rom: %w", err)
	}
	return Decode(filepath.Base(path), data)
}

// Decode unpacks data according to the extension of name and validates that
// the program fits in memory.
func Decode(name string, data []byte) (*Image, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")

	var (
		program []byte
		err     error
	)
	switch format {
	case "zip":
		program, err = unzip(data)
	case "7z":
		program, err = un7z(data)
	case "gz", "xz", "zst", "lz4", "br":
		program, err = decompress(format, data)
	default:
		format = "raw"
		program, err = data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", name, err)
	}

	return FromBytes(name, format, program)
}

// FromBytes wraps an already unpacked program.
func FromBytes(name, format string, program []byte) (*Image, error) {
	if len(program) == 0 {
		return nil, ErrEmpty
	}
	if len(program) > memory.MaxROMSize {
		return nil, fmt.Errorf("%w: %d bytes, max %d", memory.ErrROMTooLarge, len(program), memory.MaxROMSize)
	}

	return &Image{
		Name:   name,
		Data:   program,
		Hash:   xxhash.Sum64(program),
		Format: format,
	}, nil
}

func decompress(format string, data []byte) ([]byte, error) {
	src := bytes.NewReader(data)

	var r io.Reader
	switch format {
	case "gz":
		gz, err := gzip.NewReader(src)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	case "xz":
		x, err := xz.NewReader(src)
		if err != nil {
			return nil, err
		}
		r = x
	case "zst":
		dec, err := zstd.NewReader(src)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		r = dec
	case "lz4":
		r = lz4.NewReader(src)
	case "br":
		r = brotli.NewReader(src)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	return readLimited(r)
}

func unzip(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return readLimited(rc)
	}
	return nil, ErrNoFile
}

func un7z(data []byte) ([]byte, error) {
	r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return readLimited(rc)
	}
	return nil, ErrNoFile
}

// readLimited reads at most one byte past the ROM limit so oversized
// payloads fail the size check without being fully inflated.
func readLimited(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, int64(memory.MaxROMSize)+1))
}
