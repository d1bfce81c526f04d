package shape

import (
	"encoding/binary"
	"io"

	"github.com/inamate/vecpad/internal/geom"
)

// Largest number of elements preallocated from an untrusted count.
const maxPrealloc = 1 << 12

func writeFloats(w io.Writer, vs ...float64) error {
	return binary.Write(w, binary.LittleEndian, vs)
}

func readFloats(r io.Reader, n int) ([]float64, error) {
	vs := make([]float64, n)
	if err := binary.Read(r, binary.LittleEndian, vs); err != nil {
		return nil, err
	}
	return vs, nil
}

func writeCount(w io.Writer, n int) error {
	return binary.Write(w, binary.LittleEndian, int32(n))
}

func readCount(r io.Reader) (int, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, ErrNegativeCount
	}
	return int(n), nil
}

func writePoints(w io.Writer, pts []geom.Point) error {
	if err := writeCount(w, len(pts)); err != nil {
		return err
	}
	for _, p := range pts {
		if err := writeFloats(w, p.X, p.Y); err != nil {
			return err
		}
	}
	return nil
}

func readPoints(r io.Reader) ([]geom.Point, error) {
	n, err := readCount(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	pts := make([]geom.Point, 0, min(n, maxPrealloc))
	for range n {
		v, err := readFloats(r, 2)
		if err != nil {
			return nil, err
		}
		pts = append(pts, geom.Pt(v[0], v[1]))
	}
	return pts, nil
}
