package nifti

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Datatype is the NIfTI datatype code of the stored voxels.
type Datatype int16

// Supported datatype codes.
const (
	Uint8   Datatype = 2
	Int16   Datatype = 4
	Int32   Datatype = 8
	Float32 Datatype = 16
	Float64 Datatype = 64
	Int8    Datatype = 256
	Uint16  Datatype = 512
	Uint32  Datatype = 768
	Int64   Datatype = 1024
	Uint64  Datatype = 1280
)

func (d Datatype) String() string {
	switch d {
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int8:
		return "int8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Int64:
		return "int64"
	case Uint64:
		return "uint64"
	}
	return fmt.Sprintf("datatype(%d)", int16(d))
}

// size returns the bytes per voxel, or false for unsupported codes such as
// complex or RGB data.
func (d Datatype) size() (int, bool) {
	switch d {
	case Uint8, Int8:
		return 1, true
	case Int16, Uint16:
		return 2, true
	case Int32, Uint32, Float32:
		return 4, true
	case Float64, Int64, Uint64:
		return 8, true
	}
	return 0, false
}

// decode converts raw voxel bytes to float64 values.
func (d Datatype) decode(raw []byte, order binary.ByteOrder, out []float64) {
	switch d {
	case Uint8:
		for i := range out {
			out[i] = float64(raw[i])
		}
	case Int8:
		for i := range out {
			out[i] = float64(int8(raw[i]))
		}
	case Int16:
		for i := range out {
			out[i] = float64(int16(order.Uint16(raw[2*i:])))
		}
	case Uint16:
		for i := range out {
			out[i] = float64(order.Uint16(raw[2*i:]))
		}
	case Int32:
		for i := range out {
			out[i] = float64(int32(order.Uint32(raw[4*i:])))
		}
	case Uint32:
		for i := range out {
			out[i] = float64(order.Uint32(raw[4*i:]))
		}
	case Float32:
		for i := range out {
			out[i] = float64(math.Float32frombits(order.Uint32(raw[4*i:])))
		}
	case Int64:
		for i := range out {
			out[i] = float64(int64(order.Uint64(raw[8*i:])))
		}
	case Uint64:
		for i := range out {
			out[i] = float64(order.Uint64(raw[8*i:]))
		}
	case Float64:
		for i := range out {
			out[i] = math.Float64frombits(order.Uint64(raw[8*i:]))
		}
	}
}
