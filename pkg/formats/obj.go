// Package formats reads and writes the mesh files used for control cages.
// OBJ (Wavefront) is the only supported format.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/subdiv/pkg/math"
	"github.com/Faultbox/subdiv/pkg/subdiv"
)

// OBJ format errors.
var (
	ErrMalformedOBJ    = errors.New("malformed OBJ data")
	ErrInvalidOBJIndex = errors.New("invalid OBJ index")
	ErrUnsupportedFace = errors.New("unsupported OBJ face: only triangles and quads")
)

// NoIndex marks a missing texture coordinate or normal reference.
const NoIndex = -1

// OBJFace is one polygon. TexCoords and Normals are parallel to Vertices
// and hold NoIndex where the corner has no reference.
type OBJFace struct {
	Vertices  []int
	TexCoords []int
	Normals   []int
}

// OBJ is a parsed Wavefront OBJ mesh with zero-based indices.
type OBJ struct {
	Name      string
	Positions []math.Vec3
	TexCoords []math.Vec2
	Normals   []math.Vec3
	Faces     []OBJFace
}

// ParseOBJ parses OBJ text. Materials, groups and smoothing groups are
// ignored.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "v":
			var v [3]float32
			v, err = parseFloats3(fields[1:], 3)
			obj.Positions = append(obj.Positions, math.Vec3{X: v[0], Y: v[1], Z: v[2]})
		case "vt":
			var v [3]float32
			v, err = parseFloats3(fields[1:], 2)
			obj.TexCoords = append(obj.TexCoords, math.Vec2{X: v[0], Y: v[1]})
		case "vn":
			var v [3]float32
			v, err = parseFloats3(fields[1:], 3)
			obj.Normals = append(obj.Normals, math.Vec3{X: v[0], Y: v[1], Z: v[2]})
		case "f":
			var face OBJFace
			face, err = obj.parseFace(fields[1:])
			obj.Faces = append(obj.Faces, face)
		case "o":
			if len(fields) > 1 && obj.Name == "" {
				obj.Name = strings.Join(fields[1:], " ")
			}
		case "g", "s", "usemtl", "mtllib", "l", "p":
		default:
			err = fmt.Errorf("%w: unknown statement %q", ErrMalformedOBJ, fields[0])
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ data: %w", err)
	}

	return obj, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

// parseFloats3 reads at least min and at most 3 components; extra
// components (such as the w of a position) are ignored.
func parseFloats3(fields []string, min int) ([3]float32, error) {
	var out [3]float32
	if len(fields) < min {
		return out, fmt.Errorf("%w: expected %d components, got %d", ErrMalformedOBJ, min, len(fields))
	}
	for i := 0; i < len(fields) && i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return out, fmt.Errorf("%w: %v", ErrMalformedOBJ, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

func (o *OBJ) parseFace(fields []string) (OBJFace, error) {
	if len(fields) != 3 && len(fields) != 4 {
		return OBJFace{}, fmt.Errorf("%w: %d corners", ErrUnsupportedFace, len(fields))
	}

	face := OBJFace{
		Vertices:  make([]int, len(fields)),
		TexCoords: make([]int, len(fields)),
		Normals:   make([]int, len(fields)),
	}
	for i, field := range fields {
		parts := strings.Split(field, "/")
		if len(parts) > 3 {
			return OBJFace{}, fmt.Errorf("%w: face corner %q", ErrMalformedOBJ, field)
		}

		v, err := resolveIndex(parts[0], len(o.Positions))
		if err != nil {
			return OBJFace{}, err
		}
		face.Vertices[i] = v

		face.TexCoords[i] = NoIndex
		if len(parts) > 1 && parts[1] != "" {
			if face.TexCoords[i], err = resolveIndex(parts[1], len(o.TexCoords)); err != nil {
				return OBJFace{}, err
			}
		}

		face.Normals[i] = NoIndex
		if len(parts) > 2 && parts[2] != "" {
			if face.Normals[i], err = resolveIndex(parts[2], len(o.Normals)); err != nil {
				return OBJFace{}, err
			}
		}
	}
	return face, nil
}

// resolveIndex converts a one-based or negative relative OBJ index.
func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOBJIndex, s)
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	default:
		return 0, fmt.Errorf("%w: %d with %d elements defined", ErrInvalidOBJIndex, i, count)
	}
}

// Topology converts the faces into the refiner's flat encoding.
func (o *OBJ) Topology() subdiv.Topology {
	faces := make([]subdiv.Quad, len(o.Faces))
	for i, f := range o.Faces {
		v := f.Vertices
		if len(v) == 3 {
			faces[i] = subdiv.Tri(v[0], v[1], v[2])
		} else {
			faces[i] = subdiv.Quad{Index0: v[0], Index1: v[1], Index2: v[2], Index3: v[3]}
		}
	}
	return subdiv.Topology{VertexCount: len(o.Positions), Faces: faces}
}

// VertexTexCoords returns one texture coordinate per position when every
// corner that references a vertex uses the same texture coordinate. Meshes
// with UV seams return false.
func (o *OBJ) VertexTexCoords() ([]math.Vec2, bool) {
	if len(o.TexCoords) == 0 {
		return nil, false
	}

	assigned := make([]int, len(o.Positions))
	for i := range assigned {
		assigned[i] = NoIndex
	}
	for _, f := range o.Faces {
		for i, v := range f.Vertices {
			vt := f.TexCoords[i]
			if vt == NoIndex {
				return nil, false
			}
			if assigned[v] != NoIndex && assigned[v] != vt {
				return nil, false
			}
			assigned[v] = vt
		}
	}

	out := make([]math.Vec2, len(o.Positions))
	for v, vt := range assigned {
		if vt != NoIndex {
			out[v] = o.TexCoords[vt]
		}
	}
	return out, true
}

// NewOBJ builds a mesh whose corners reference position, texture coordinate
// and normal with the same index. texCoords and normals may be nil.
func NewOBJ(name string, t subdiv.Topology, positions []math.Vec3, texCoords []math.Vec2, normals []math.Vec3) *OBJ {
	obj := &OBJ{
		Name:      name,
		Positions: positions,
		TexCoords: texCoords,
		Normals:   normals,
		Faces:     make([]OBJFace, len(t.Faces)),
	}
	for i, q := range t.Faces {
		verts := []int{q.Index0, q.Index1, q.Index2, q.Index3}
		if q.IsTriangle() {
			verts = verts[:3]
		}
		face := OBJFace{
			Vertices:  verts,
			TexCoords: make([]int, len(verts)),
			Normals:   make([]int, len(verts)),
		}
		for k, v := range verts {
			face.TexCoords[k] = NoIndex
			face.Normals[k] = NoIndex
			if texCoords != nil {
				face.TexCoords[k] = v
			}
			if normals != nil {
				face.Normals[k] = v
			}
		}
		obj.Faces[i] = face
	}
	return obj
}

// Write encodes the mesh as OBJ text. precision is the number of decimals
// per component; a negative precision uses the shortest exact form.
func (o *OBJ) Write(w io.Writer, precision int) error {
	bw := bufio.NewWriter(w)
	num := func(f float32) string {
		return strconv.FormatFloat(float64(f), 'f', precision, 32)
	}

	if o.Name != "" {
		fmt.Fprintf(bw, "o %s\n", o.Name)
	}
	for _, p := range o.Positions {
		fmt.Fprintf(bw, "v %s %s %s\n", num(p.X), num(p.Y), num(p.Z))
	}
	for _, t := range o.TexCoords {
		fmt.Fprintf(bw, "vt %s %s\n", num(t.X), num(t.Y))
	}
	for _, n := range o.Normals {
		fmt.Fprintf(bw, "vn %s %s %s\n", num(n.X), num(n.Y), num(n.Z))
	}
	for _, f := range o.Faces {
		bw.WriteString("f")
		for i, v := range f.Vertices {
			bw.WriteString(" ")
			bw.WriteString(strconv.Itoa(v + 1))
			vt, vn := f.TexCoords[i], f.Normals[i]
			switch {
			case vt != NoIndex && vn != NoIndex:
				fmt.Fprintf(bw, "/%d/%d", vt+1, vn+1)
			case vt != NoIndex:
				fmt.Fprintf(bw, "/%d", vt+1)
			case vn != NoIndex:
				fmt.Fprintf(bw, "//%d", vn+1)
			}
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// WriteFile writes the mesh to path.
func (o *OBJ) WriteFile(path string, precision int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating OBJ file: %w", err)
	}
	if err := o.Write(f, precision); err != nil {
		f.Close()
		return fmt.Errorf("writing OBJ file: %w", err)
	}
	return f.Close()
}
