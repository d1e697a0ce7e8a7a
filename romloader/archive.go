package romloader

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode/v2"
)

// errEndOfArchive ends an archive walk.
var errEndOfArchive = errors.New("end of archive")

// archiveEntry is one member of an archive. open is only valid until the
// walk advances.
type archiveEntry struct {
	name  string
	isDir bool
	open  func() (io.ReadCloser, error)
}

// nextEntryFunc returns the next member, or errEndOfArchive.
type nextEntryFunc func() (archiveEntry, error)

// firstROM walks an archive and reads the first regular member with one of
// extensions.
func firstROM(next nextEntryFunc, extensions []string) ([]byte, string, error) {
	for {
		e, err := next()
		if err == errEndOfArchive {
			return nil, "", ErrNoROMFile
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to read archive entry: %w", err)
		}
		if e.isDir || !isROMFile(e.name, extensions) {
			continue
		}

		rc, err := e.open()
		if err != nil {
			return nil, "", fmt.Errorf("failed to open %s in archive: %w", e.name, err)
		}
		data, err := limitedRead(rc)
		rc.Close()
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", e.name, err)
		}
		return data, filepath.Base(e.name), nil
	}
}

// fileList adapts an indexed archive (zip, 7z) to a walk.
func fileList(n int, entry func(i int) archiveEntry) nextEntryFunc {
	i := 0
	return func() (archiveEntry, error) {
		if i >= n {
			return archiveEntry{}, errEndOfArchive
		}
		e := entry(i)
		i++
		return e, nil
	}
}

func fsEntry(name string, info fs.FileInfo, open func() (io.ReadCloser, error)) archiveEntry {
	return archiveEntry{name: name, isDir: info.IsDir(), open: open}
}

// extractFromZIP extracts the first ROM file from a ZIP archive
func extractFromZIP(path string, extensions []string) ([]byte, string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	return firstROM(fileList(len(r.File), func(i int) archiveEntry {
		f := r.File[i]
		return fsEntry(f.Name, f.FileInfo(), f.Open)
	}), extensions)
}

// extractFrom7z extracts the first ROM file from a 7z archive
func extractFrom7z(path string, extensions []string) ([]byte, string, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open 7z: %w", err)
	}
	defer r.Close()

	return firstROM(fileList(len(r.File), func(i int) archiveEntry {
		f := r.File[i]
		return fsEntry(f.Name, f.FileInfo(), f.Open)
	}), extensions)
}

// extractFromRAR extracts the first ROM file from a RAR archive
func extractFromRAR(path string, extensions []string) ([]byte, string, error) {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open rar: %w", err)
	}
	defer r.Close()

	return firstROM(func() (archiveEntry, error) {
		header, err := r.Next()
		if err == io.EOF {
			return archiveEntry{}, errEndOfArchive
		}
		if err != nil {
			return archiveEntry{}, err
		}
		return archiveEntry{
			name:  header.Name,
			isDir: header.IsDir,
			open:  func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
		}, nil
	}, extensions)
}

// extractFromGzip reads a plain .gz ROM or the first ROM of a tar.gz
func extractFromGzip(src io.Reader, path string, extensions []string) ([]byte, string, error) {
	gr, err := gzip.NewReader(src)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gr.Close()

	lowerPath := strings.ToLower(path)
	if strings.HasSuffix(lowerPath, ".tar.gz") || strings.HasSuffix(lowerPath, ".tgz") {
		return extractFromTar(gr, extensions)
	}

	// Plain .gz file: the decompressed content is the ROM
	data, err := limitedRead(gr)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decompress gzip: %w", err)
	}

	name := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		name = name[:len(name)-3]
	}
	return data, name, nil
}

// extractFromTar extracts the first ROM file from a tar stream
func extractFromTar(r io.Reader, extensions []string) ([]byte, string, error) {
	tr := tar.NewReader(r)

	return firstROM(func() (archiveEntry, error) {
		header, err := tr.Next()
		if err == io.EOF {
			return archiveEntry{}, errEndOfArchive
		}
		if err != nil {
			return archiveEntry{}, err
		}
		return archiveEntry{
			name:  header.Name,
			isDir: header.Typeflag != tar.TypeReg,
			open:  func() (io.ReadCloser, error) { return io.NopCloser(tr), nil },
		}, nil
	}, extensions)
}
