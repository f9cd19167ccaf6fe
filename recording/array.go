package recording

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// Array is a numeric NumPy array flattened in row-major order.
type Array struct {
	Shape []int
	Data  []float64
}

// Rows returns the number of rows (the first dimension).
func (a *Array) Rows() int {
	if len(a.Shape) == 0 {
		return 0
	}
	return a.Shape[0]
}

// Cols returns the size of one row; 1 for 1-D arrays.
func (a *Array) Cols() int {
	if len(a.Shape) < 2 {
		return 1
	}
	n := 1
	for _, d := range a.Shape[1:] {
		n *= d
	}
	return n
}

// Row returns the i-th row of a 2-D array.
func (a *Array) Row(i int) []float64 {
	c := a.Cols()
	return a.Data[i*c : (i+1)*c]
}

func decodeNPY(data []byte, path string) (*Array, error) {
	r, err := npyio.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &FormatError{Path: path, Reason: "npy header", cause: err}
	}
	if r.Header.Descr.Fortran {
		return nil, &FormatError{Path: path, Reason: "fortran-ordered arrays are not supported"}
	}
	var values []float64
	if err := r.Read(&values); err != nil {
		return nil, &FormatError{Path: path, Reason: "npy data", cause: err}
	}
	shape := append([]int(nil), r.Header.Descr.Shape...)
	if len(shape) == 0 {
		shape = []int{len(values)}
	}
	return &Array{Shape: shape, Data: values}, nil
}

func encodeNPY(w io.Writer, values []float64) error {
	if values == nil {
		values = []float64{}
	}
	return npyio.Write(w, values)
}

// encodeArray writes 1-D arrays as slices and 2-D arrays as matrices.
func encodeArray(w io.Writer, a *Array) error {
	switch len(a.Shape) {
	case 0, 1:
		return encodeNPY(w, a.Data)
	case 2:
		if a.Shape[0]*a.Shape[1] != len(a.Data) || a.Shape[0] == 0 {
			return fmt.Errorf("array shape %v does not hold %d values", a.Shape, len(a.Data))
		}
		return npyio.Write(w, mat.NewDense(a.Shape[0], a.Shape[1], a.Data))
	default:
		return fmt.Errorf("arrays of rank %d are not supported", len(a.Shape))
	}
}

// decodeRawTimes decodes a headerless big-endian float64 array.
func decodeRawTimes(data []byte, path string) ([]float64, error) {
	if len(data)%8 != 0 {
		return nil, &FormatError{Path: path, Reason: fmt.Sprintf("size %d is not a multiple of 8", len(data))}
	}
	out := make([]float64, len(data)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.BigEndian.Uint64(data[i*8:]))
	}
	return out, nil
}
