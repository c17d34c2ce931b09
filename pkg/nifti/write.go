package nifti

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"cogfusion/pkg/volume"
)

// singleFileOffset is the voxel offset of a NIfTI-1 single file: the header
// plus an empty four byte extension block.
const singleFileOffset = sizeNifti1 + 4

// Write stores v as a little-endian float64 NIfTI-1 image. The extension of
// path selects the layout: ".hdr" or ".img" writes a pair, anything else a
// single file. A trailing ".gz" compresses every file written.
func Write(path string, v *volume.Volume) error {
	stem, ext, gz := splitExt(path)
	compress := gz != ""

	switch strings.ToLower(ext) {
	case ".hdr", ".img":
		hdr, err := encodeHeader(v, false)
		if err != nil {
			return err
		}
		if err := writeFile(stem+".hdr"+gz, compress, hdr); err != nil {
			return err
		}
		return writeFile(stem+".img"+gz, compress, encodeData(v))
	default:
		hdr, err := encodeHeader(v, true)
		if err != nil {
			return err
		}
		return writeFile(path, compress, hdr, make([]byte, 4), encodeData(v))
	}
}

func encodeHeader(v *volume.Volume, single bool) ([]byte, error) {
	if v.Rank() > 7 {
		return nil, fmt.Errorf("nifti: rank %d exceeds 7", v.Rank())
	}
	order := binary.LittleEndian
	buf := make([]byte, sizeNifti1)
	order.PutUint32(buf[0:], sizeNifti1)

	order.PutUint16(buf[40:], uint16(v.Rank()))
	for i, d := range v.Shape {
		if d > math.MaxInt16 {
			return nil, fmt.Errorf("nifti: axis %d size %d too large for NIfTI-1", i, d)
		}
		order.PutUint16(buf[42+2*i:], uint16(d))
	}
	for i := v.Rank() + 1; i < 8; i++ {
		order.PutUint16(buf[40+2*i:], 1)
	}
	order.PutUint16(buf[70:], uint16(Float64))
	order.PutUint16(buf[72:], 64)
	for i := 0; i < 8; i++ {
		order.PutUint32(buf[76+4*i:], math.Float32bits(1))
	}

	offset := float32(0)
	magic := "ni1\x00"
	if single {
		offset = singleFileOffset
		magic = "n+1\x00"
	}
	order.PutUint32(buf[108:], math.Float32bits(offset))
	order.PutUint32(buf[112:], math.Float32bits(1))
	copy(buf[344:], magic)
	return buf, nil
}

func encodeData(v *volume.Volume) []byte {
	buf := make([]byte, 8*v.Len())
	for i, x := range v.Data {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(x))
	}
	return buf
}

func writeFile(path string, compress bool, parts ...[]byte) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	var w io.Writer = f
	var zw *gzip.Writer
	if compress {
		zw = gzip.NewWriter(f)
		w = zw
	}
	for _, p := range parts {
		if _, err := w.Write(p); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if zw != nil {
		return zw.Close()
	}
	return nil
}
