package nifti

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Header sizes in bytes.
const (
	sizeNifti1 = 348
	sizeNifti2 = 540
)

// Format identifies the on-disk header flavour.
type Format int

const (
	// Analyze is the Analyze 7.5 / SPM header without a NIfTI magic.
	Analyze Format = iota
	Nifti1
	Nifti2
)

func (f Format) String() string {
	switch f {
	case Analyze:
		return "analyze"
	case Nifti1:
		return "nifti1"
	case Nifti2:
		return "nifti2"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Header holds the fields needed to decode voxel data.
type Header struct {
	Format Format
	// SingleFile is true when the voxels follow the header in the same file.
	SingleFile bool
	ByteOrder  binary.ByteOrder
	Dims       []int
	Datatype   Datatype
	BitPix     int
	VoxOffset  int64
	SclSlope   float64
	SclInter   float64
}

// Voxels returns the number of voxels described by the header.
func (h *Header) Voxels() int {
	n := 1
	for _, d := range h.Dims {
		n *= d
	}
	return n
}

// scale reports the slope and intercept to apply, if any.
func (h *Header) scale() (slope, inter float64, ok bool) {
	if h.SclSlope == 0 || math.IsNaN(h.SclSlope) || math.IsInf(h.SclSlope, 0) {
		return 0, 0, false
	}
	inter = h.SclInter
	if math.IsNaN(inter) || math.IsInf(inter, 0) {
		inter = 0
	}
	return h.SclSlope, inter, true
}

// ParseHeader decodes a NIfTI-1, NIfTI-2 or Analyze 7.5 header from the
// start of buf. Byte order is detected from the sizeof_hdr field.
func ParseHeader(buf []byte) (*Header, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("%w: %d header bytes", ErrTruncated, len(buf))
	}
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		switch order.Uint32(buf[:4]) {
		case sizeNifti1:
			return parseNifti1(buf, order)
		case sizeNifti2:
			return parseNifti2(buf, order)
		}
	}
	return nil, fmt.Errorf("%w: sizeof_hdr is neither %d nor %d", ErrUnsupportedFormat, sizeNifti1, sizeNifti2)
}

func parseNifti1(buf []byte, order binary.ByteOrder) (*Header, error) {
	if len(buf) < sizeNifti1 {
		return nil, fmt.Errorf("%w: %d of %d header bytes", ErrTruncated, len(buf), sizeNifti1)
	}
	h := &Header{ByteOrder: order}
	switch magic := buf[344:348]; {
	case bytes.Equal(magic, []byte("n+1\x00")):
		h.Format, h.SingleFile = Nifti1, true
	case bytes.Equal(magic, []byte("ni1\x00")):
		h.Format = Nifti1
	default:
		h.Format = Analyze
	}

	var dim [8]int
	for i := range dim {
		dim[i] = int(int16(order.Uint16(buf[40+2*i:])))
	}
	dims, err := dimensions(dim[:])
	if err != nil {
		return nil, err
	}
	h.Dims = dims
	h.Datatype = Datatype(int16(order.Uint16(buf[70:])))
	h.BitPix = int(int16(order.Uint16(buf[72:])))
	h.VoxOffset = int64(math.Float32frombits(order.Uint32(buf[108:])))
	// SPM keeps slope and intercept in Analyze funused1 and funused2, which
	// sit at the offsets of scl_slope and scl_inter.
	h.SclSlope = float64(math.Float32frombits(order.Uint32(buf[112:])))
	h.SclInter = float64(math.Float32frombits(order.Uint32(buf[116:])))
	return h, h.check()
}

func parseNifti2(buf []byte, order binary.ByteOrder) (*Header, error) {
	if len(buf) < sizeNifti2 {
		return nil, fmt.Errorf("%w: %d of %d header bytes", ErrTruncated, len(buf), sizeNifti2)
	}
	h := &Header{ByteOrder: order, Format: Nifti2}
	switch magic := buf[4:8]; {
	case bytes.Equal(magic, []byte("n+2\x00")):
		h.SingleFile = true
	case bytes.Equal(magic, []byte("ni2\x00")):
	default:
		return nil, fmt.Errorf("%w: bad NIfTI-2 magic %q", ErrUnsupportedFormat, magic)
	}
	h.Datatype = Datatype(int16(order.Uint16(buf[12:])))
	h.BitPix = int(int16(order.Uint16(buf[14:])))

	var dim [8]int
	for i := range dim {
		dim[i] = int(int64(order.Uint64(buf[16+8*i:])))
	}
	dims, err := dimensions(dim[:])
	if err != nil {
		return nil, err
	}
	h.Dims = dims
	h.VoxOffset = int64(order.Uint64(buf[168:]))
	h.SclSlope = math.Float64frombits(order.Uint64(buf[176:]))
	h.SclInter = math.Float64frombits(order.Uint64(buf[184:]))
	return h, h.check()
}

// dimensions validates a dim[8] array and returns its active sizes. The
// voxel count must fit in an int.
func dimensions(dim []int) ([]int, error) {
	rank := dim[0]
	if rank < 1 || rank > 7 {
		return nil, fmt.Errorf("%w: dim[0]=%d", ErrUnsupportedFormat, rank)
	}
	dims := make([]int, rank)
	n := 1
	for i := range dims {
		d := dim[i+1]
		if d < 1 {
			return nil, fmt.Errorf("%w: dim[%d]=%d", ErrUnsupportedFormat, i+1, d)
		}
		if n > math.MaxInt/d {
			return nil, fmt.Errorf("%w: dimensions %v overflow the voxel count", ErrUnsupportedFormat, dim[1:rank+1])
		}
		n *= d
		dims[i] = d
	}
	return dims, nil
}

func (h *Header) check() error {
	size, ok := h.Datatype.size()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedDatatype, h.Datatype)
	}
	if h.BitPix != 0 && h.BitPix != 8*size {
		return fmt.Errorf("%w: bitpix %d for %s", ErrUnsupportedFormat, h.BitPix, h.Datatype)
	}
	if n := h.Voxels(); n > math.MaxInt/size {
		return fmt.Errorf("%w: %d %s voxels exceed the addressable size", ErrUnsupportedFormat, n, h.Datatype)
	}
	if h.VoxOffset < 0 {
		return fmt.Errorf("%w: negative vox_offset", ErrUnsupportedFormat)
	}
	return nil
}
