package epa

import (
	"math"
	"sync"

	"github.com/akmonengine/featherserver/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const polytopeInitialCapacity = 16

// Face is a triangle of the polytope with its outward normal and distance to the origin
type Face struct {
	Points   [3]mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

type edge struct {
	a, b mgl64.Vec3
}

// Polytope is the convex hull grown toward the Minkowski difference boundary
type Polytope struct {
	faces []Face
	edges []edge
}

var polytopePool = sync.Pool{
	New: func() interface{} {
		return &Polytope{
			faces: make([]Face, 0, polytopeInitialCapacity),
			edges: make([]edge, 0, polytopeInitialCapacity),
		}
	},
}

func (p *Polytope) Reset() {
	p.faces = p.faces[:0]
	p.edges = p.edges[:0]
}

func (p *Polytope) Faces() []Face {
	return p.faces
}

// Seed builds the four faces of the GJK tetrahedron
func (p *Polytope) Seed(simplex *gjk.Simplex) {
	a, b, c, d := simplex.Points[0], simplex.Points[1], simplex.Points[2], simplex.Points[3]

	p.faces = append(p.faces,
		newFace(a, b, c, d),
		newFace(a, c, d, b),
		newFace(a, d, b, c),
		newFace(b, d, c, a),
	)
}

// newFace orients the triangle so its normal points away from opposite
func newFace(a, b, c, opposite mgl64.Vec3) Face {
	normal := b.Sub(a).Cross(c.Sub(a))
	if normal.Len() < 1e-12 {
		return Face{Points: [3]mgl64.Vec3{a, b, c}, Normal: mgl64.Vec3{0, 1, 0}, Distance: math.Inf(1)}
	}
	normal = normal.Normalize()

	if normal.Dot(opposite.Sub(a)) > 0 {
		normal = normal.Mul(-1)
		b, c = c, b
	}

	return Face{Points: [3]mgl64.Vec3{a, b, c}, Normal: normal, Distance: normal.Dot(a)}
}

// Closest returns the index of the face nearest to the origin
func (p *Polytope) Closest() int {
	best := 0
	for i := 1; i < len(p.faces); i++ {
		if p.faces[i].Distance < p.faces[best].Distance {
			best = i
		}
	}
	return best
}

func (p *Polytope) remove(index int) {
	last := len(p.faces) - 1
	p.faces[index] = p.faces[last]
	p.faces = p.faces[:last]
}

// Expand removes every face visible from support and stitches the horizon
// to it. It returns false when nothing changed.
func (p *Polytope) Expand(support mgl64.Vec3) bool {
	p.edges = p.edges[:0]
	centroid := p.centroid()

	kept := p.faces[:0]
	removed := 0
	for _, face := range p.faces {
		if face.Normal.Dot(support.Sub(face.Points[0])) > 0 {
			p.addHorizonEdge(face.Points[0], face.Points[1])
			p.addHorizonEdge(face.Points[1], face.Points[2])
			p.addHorizonEdge(face.Points[2], face.Points[0])
			removed++
			continue
		}
		kept = append(kept, face)
	}
	p.faces = kept

	if removed == 0 {
		return false
	}

	for _, e := range p.edges {
		p.faces = append(p.faces, newFace(e.a, e.b, support, centroid))
	}

	return true
}

// addHorizonEdge keeps edges shared by a single removed face; an edge seen
// twice (in reverse) is interior and cancels out.
func (p *Polytope) addHorizonEdge(a, b mgl64.Vec3) {
	for i, e := range p.edges {
		if e.a == b && e.b == a {
			p.edges[i] = p.edges[len(p.edges)-1]
			p.edges = p.edges[:len(p.edges)-1]
			return
		}
	}
	p.edges = append(p.edges, edge{a: a, b: b})
}

func (p *Polytope) centroid() mgl64.Vec3 {
	sum := mgl64.Vec3{}
	for _, face := range p.faces {
		sum = sum.Add(face.Points[0]).Add(face.Points[1]).Add(face.Points[2])
	}
	if len(p.faces) == 0 {
		return sum
	}
	return sum.Mul(1.0 / float64(3*len(p.faces)))
}
