// Package nifti loads NIfTI-1, NIfTI-2 and Analyze 7.5 images into volumes.
//
// Single files (.nii) and header/image pairs (.hdr + .img) are supported,
// optionally gzip compressed. Compression is detected from the file
// content. Only the fields needed to decode voxel values are interpreted;
// orientation and voxel size are ignored.
package nifti

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"cogfusion/pkg/volume"
)

var (
	// ErrUnsupportedFormat is returned for files that are not a known image format.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrUnsupportedDatatype is returned for complex, RGB and unknown voxel types.
	ErrUnsupportedDatatype = errors.New("unsupported voxel datatype")

	// ErrTruncated is returned when a file holds fewer bytes than its header promises.
	ErrTruncated = errors.New("truncated image data")
)

// LoadError reports a file that could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadVolumes loads every named file, preserving order. It stops at the
// first failure and returns a *LoadError.
func LoadVolumes(names []string) ([]*volume.Volume, error) {
	vols := make([]*volume.Volume, 0, len(names))
	for _, name := range names {
		v, err := Load(name)
		if err != nil {
			return nil, err
		}
		vols = append(vols, v)
	}
	return vols, nil
}

// Load reads a single image. Either member of a header/image pair may be
// named. The volume is named after path.
func Load(path string) (*volume.Volume, error) {
	v, err := load(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	log.Debug().Str("path", path).Ints("shape", v.Shape).Msg("Loaded volume")
	return v, nil
}

func load(path string) (*volume.Volume, error) {
	headerPath, imagePath := pairPaths(path)
	headerBytes, err := readFile(headerPath)
	if err != nil {
		return nil, err
	}
	h, err := ParseHeader(headerBytes)
	if err != nil {
		return nil, err
	}

	raw := headerBytes
	if !h.SingleFile {
		if imagePath == headerPath {
			return nil, fmt.Errorf("%w: %s header needs a separate .img file", ErrUnsupportedFormat, h.Format)
		}
		if raw, err = readFile(imagePath); err != nil {
			return nil, err
		}
	}
	if int64(len(raw)) < h.VoxOffset {
		return nil, fmt.Errorf("%w: vox_offset %d beyond %d bytes", ErrTruncated, h.VoxOffset, len(raw))
	}
	return decode(path, h, raw[h.VoxOffset:])
}

func decode(name string, h *Header, raw []byte) (*volume.Volume, error) {
	size, _ := h.Datatype.size()
	n := h.Voxels()
	if n > len(raw)/size {
		return nil, fmt.Errorf("%w: need %d bytes of %s voxels, have %d", ErrTruncated, n*size, h.Datatype, len(raw))
	}
	data := make([]float64, n)
	h.Datatype.decode(raw[:n*size], h.ByteOrder, data)
	if slope, inter, ok := h.scale(); ok && (slope != 1 || inter != 0) {
		for i := range data {
			data[i] = data[i]*slope + inter
		}
	}
	return volume.New(name, h.Dims, data)
}

// readFile returns the content of path, inflated if it is gzip data.
func readFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(b) < 2 || b[0] != 0x1f || b[1] != 0x8b {
		return b, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("gzip %s: %w", path, err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gzip %s: %w", path, err)
	}
	return out, nil
}

// splitExt splits path into its stem, image extension and optional ".gz"
// suffix, e.g. "a/b.img.gz" -> "a/b", ".img", ".gz".
func splitExt(path string) (stem, ext, gz string) {
	stem = path
	if strings.EqualFold(filepath.Ext(stem), ".gz") {
		gz = stem[len(stem)-3:]
		stem = stem[:len(stem)-3]
	}
	ext = filepath.Ext(stem)
	return strings.TrimSuffix(stem, ext), ext, gz
}

// pairPaths returns the header and image files for path. For single files
// both are path itself.
func pairPaths(path string) (header, image string) {
	stem, ext, gz := splitExt(path)
	switch strings.ToLower(ext) {
	case ".hdr":
		return path, partner(stem, ext, ".img", gz)
	case ".img":
		return partner(stem, ext, ".hdr", gz), path
	}
	return path, path
}

// partner finds the other member of a pair, matching the case of ext and
// preferring the same compression suffix.
func partner(stem, ext, to, gz string) string {
	if ext == strings.ToUpper(ext) {
		to = strings.ToUpper(to)
	}
	candidates := []string{stem + to + gz, stem + to, stem + to + ".gz"}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return candidates[0]
}
