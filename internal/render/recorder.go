package render

import (
	"encoding/json"
	"fmt"

	"github.com/inamate/vecpad/internal/geom"
)

// DrawCommand represents a single drawing operation for a remote frontend
// to execute on a Canvas2D context.
type DrawCommand struct {
	Op          string       `json:"op"`               // "line", "rect", "ellipse", "polyline"
	Shape       int          `json:"shape"`            // document index, -1 for editor feedback
	Points      []geom.Point `json:"points"`           // screen-space vertices or corners
	RX          float64      `json:"rx,omitempty"`     // ellipse radii
	RY          float64      `json:"ry,omitempty"`     //
	Stroke      string       `json:"stroke"`           // CSS colour
	StrokeWidth float64      `json:"strokeWidth"`      //
	Dashed      bool         `json:"dashed,omitempty"` //
}

// ShapeMarker is implemented by sinks that correlate primitives with the
// document index of the shape that emitted them.
type ShapeMarker interface {
	BeginShape(index int)
}

// Recorder is a Sink that buffers draw commands in painter's order.
type Recorder struct {
	Commands []DrawCommand
	current  int
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{current: -1}
}

// BeginShape tags subsequent commands with the given document index.
func (r *Recorder) BeginShape(index int) {
	r.current = index
}

func (r *Recorder) add(cmd DrawCommand, pen Pen) {
	cmd.Shape = r.current
	cmd.Stroke = CSSColor(pen)
	cmd.StrokeWidth = pen.Width
	cmd.Dashed = pen.Dashed
	r.Commands = append(r.Commands, cmd)
}

func (r *Recorder) DrawLine(a, b geom.Point, pen Pen) {
	r.add(DrawCommand{Op: "line", Points: []geom.Point{a, b}}, pen)
}

func (r *Recorder) DrawRect(a, b geom.Point, pen Pen) {
	r.add(DrawCommand{Op: "rect", Points: []geom.Point{a, b}}, pen)
}

func (r *Recorder) DrawEllipse(center geom.Point, rx, ry float64, pen Pen) {
	r.add(DrawCommand{Op: "ellipse", Points: []geom.Point{center}, RX: rx, RY: ry}, pen)
}

func (r *Recorder) DrawPolyline(pts []geom.Point, pen Pen) {
	cp := make([]geom.Point, len(pts))
	copy(cp, pts)
	r.add(DrawCommand{Op: "polyline", Points: cp}, pen)
}

// Reset drops all buffered commands.
func (r *Recorder) Reset() {
	r.Commands = r.Commands[:0]
	r.current = -1
}

// JSON serializes the buffered commands. An empty buffer encodes as "[]".
func (r *Recorder) JSON() (string, error) {
	if len(r.Commands) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(r.Commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// CSSColor formats the pen colour as a CSS hex string.
func CSSColor(pen Pen) string {
	c := pen.Color
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", c.R, c.G, c.B, float64(c.A)/255)
}
