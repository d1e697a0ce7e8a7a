// Package romloader reads SNES program images from disk, including images
// packed in ZIP, 7z, gzip, tar.gz and RAR archives, and strips copier
// headers.
package romloader

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// Largest ExHiROM image plus a copier header.
const maxROMSize = 8*1024*1024 + copierHeaderSize

// Extensions are the file extensions recognized as SNES images.
var Extensions = []string{".sfc", ".smc"}

// ErrNoROMFile is returned when no ROM file is found in an archive
var ErrNoROMFile = errors.New("no ROM file found in archive")

// ErrUnsupportedFormat is returned for unrecognized file formats
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrFileTooLarge is returned when extracted content exceeds size limit
var ErrFileTooLarge = errors.New("file exceeds maximum size limit")

// ErrEmptyROM is returned when the image holds no program data
var ErrEmptyROM = errors.New("ROM is empty")

// ROM is a loaded program image.
type ROM struct {
	Data         []byte // Program data with any copier header removed
	Name         string // Base file name, for display
	CRC32        uint32 // Checksum of Data
	CopierHeader bool   // A copier header was stripped
}

// formatType represents the detected file format
type formatType int

const (
	formatUnknown formatType = iota
	formatRaw
	formatZIP
	format7z
	formatGzip
	formatRAR
)

// Load reads a ROM from path. Archives are detected by magic bytes and the
// first entry matching one of extensions is used. Raw files must carry one
// of extensions.
func Load(path string, extensions []string) (*ROM, error) {
	data, name, err := loadRaw(path, extensions)
	if err != nil {
		return nil, err
	}

	data, stripped := StripCopierHeader(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyROM, name)
	}

	return &ROM{
		Data:         data,
		Name:         name,
		CRC32:        crc32.ChecksumIEEE(data),
		CopierHeader: stripped,
	}, nil
}

// loadRaw returns the file or archive entry contents unmodified.
func loadRaw(path string, extensions []string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	// Read header for magic byte detection
	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", fmt.Errorf("failed to read file header: %w", err)
	}
	header = header[:n]

	format := detectFormat(header, path, extensions)

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", fmt.Errorf("failed to seek file: %w", err)
	}

	switch format {
	case formatRaw:
		data, err := limitedRead(f)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read ROM: %w", err)
		}
		return data, filepath.Base(path), nil
	case formatZIP:
		return extractFromZIP(path, extensions)
	case format7z:
		return extractFrom7z(path, extensions)
	case formatGzip:
		return extractFromGzip(f, path, extensions)
	case formatRAR:
		return extractFromRAR(path, extensions)
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// detectFormat determines the file format based on magic bytes and extension.
func detectFormat(header []byte, path string, extensions []string) formatType {
	ext := strings.ToLower(filepath.Ext(path))

	// Check magic bytes first (more reliable)
	switch {
	case bytes.HasPrefix(header, magicZIP), bytes.HasPrefix(header, magicZIPEnd):
		return formatZIP
	case bytes.HasPrefix(header, magicRAR):
		return formatRAR
	case bytes.HasPrefix(header, magic7z):
		return format7z
	case bytes.HasPrefix(header, magicGzip):
		return formatGzip
	}

	// Fall back to extension for archive formats
	switch ext {
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	}

	if isROMFile(path, extensions) {
		return formatRaw
	}
	return formatUnknown
}

// isROMFile checks if a filename has one of the given ROM extensions (case-insensitive)
func isROMFile(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// limitedRead reads from r up to maxROMSize bytes, returning an error if exceeded
func limitedRead(r io.Reader) ([]byte, error) {
	lr := io.LimitReader(r, maxROMSize+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if len(data) > maxROMSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
