package engine

import (
	"math"
	"slices"

	"github.com/akmonengine/featherserver/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// maxCellsPerAxis: bodies spanning more cells than this skip the grid and are
// tested against everything (planes, very large boxes)
const maxCellsPerAxis = 16

// CellKey is the integer coordinate of a grid cell
type CellKey struct {
	X, Y, Z int
}

type Cell struct {
	bodyIndices []int
}

// Pair is a couple of bodies whose bounds overlap
type Pair struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

// SpatialGrid is a uniform hashed grid used as broad phase
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int
	oversize []int
}

func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].bodyIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

func (sg *SpatialGrid) CellSize() float64 {
	return sg.cellSize
}

// Insert registers a body in every cell its bounds cover
func (sg *SpatialGrid) Insert(bodyIndex int, body *actor.RigidBody) {
	minCell, maxCell, ok := sg.cellRange(body.Shape.GetAABB())
	if !ok {
		sg.oversize = append(sg.oversize, bodyIndex)
		return
	}

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})
				sg.cells[cellIdx].bodyIndices = append(sg.cells[cellIdx].bodyIndices, bodyIndex)
			}
		}
	}
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].bodyIndices = sg.cells[i].bodyIndices[:0]
	}
	sg.oversize = sg.oversize[:0]
}

// Build clears the grid and inserts every body
func (sg *SpatialGrid) Build(bodies []*actor.RigidBody) {
	sg.Clear()
	for i, body := range bodies {
		sg.Insert(i, body)
	}
	for i := range sg.cells {
		if len(sg.cells[i].bodyIndices) > 1 {
			slices.Sort(sg.cells[i].bodyIndices)
		}
	}
}

// FindPairs returns each overlapping candidate pair once, ordered by the
// index of its first body.
func (sg *SpatialGrid) FindPairs(bodies []*actor.RigidBody) []Pair {
	pairs := make([]Pair, 0, len(bodies)/2)
	seen := make([]bool, len(bodies))
	isOversize := make([]bool, len(bodies))
	for _, idx := range sg.oversize {
		isOversize[idx] = true
	}

	for bodyIdx, bodyA := range bodies {
		clear(seen)

		visit := func(otherIdx int) {
			if otherIdx == bodyIdx || seen[otherIdx] {
				return
			}
			// each pair is emitted by its lower index, except oversize bodies
			// which are only reached from the other side
			if otherIdx < bodyIdx && !isOversize[otherIdx] {
				return
			}
			seen[otherIdx] = true
			if candidate(bodyA, bodies[otherIdx]) {
				pairs = append(pairs, Pair{BodyA: bodyA, BodyB: bodies[otherIdx]})
			}
		}

		if isOversize[bodyIdx] {
			// oversize vs oversize, lower index emits
			for _, otherIdx := range sg.oversize {
				if otherIdx > bodyIdx {
					visit(otherIdx)
				}
			}
			continue
		}

		for _, otherIdx := range sg.oversize {
			visit(otherIdx)
		}

		minCell, maxCell, _ := sg.cellRange(bodyA.Shape.GetAABB())
		for x := minCell.X; x <= maxCell.X; x++ {
			for y := minCell.Y; y <= maxCell.Y; y++ {
				for z := minCell.Z; z <= maxCell.Z; z++ {
					for _, otherIdx := range sg.cells[sg.hashCell(CellKey{x, y, z})].bodyIndices {
						visit(otherIdx)
					}
				}
			}
		}
	}

	return pairs
}

func candidate(a, b *actor.RigidBody) bool {
	if a.BodyType != actor.BodyTypeDynamic && b.BodyType != actor.BodyTypeDynamic && !a.IsTrigger && !b.IsTrigger {
		return false
	}
	if a.IsSleeping && b.IsSleeping {
		return false
	}
	return a.Shape.GetAABB().Overlaps(b.Shape.GetAABB())
}

func (sg *SpatialGrid) cellRange(aabb actor.AABB) (CellKey, CellKey, bool) {
	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)

	if maxCell.X-minCell.X >= maxCellsPerAxis ||
		maxCell.Y-minCell.Y >= maxCellsPerAxis ||
		maxCell.Z-minCell.Z >= maxCellsPerAxis {
		return minCell, maxCell, false
	}
	return minCell, maxCell, true
}

func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: clampCell(math.Floor(pos.X() / sg.cellSize)),
		Y: clampCell(math.Floor(pos.Y() / sg.cellSize)),
		Z: clampCell(math.Floor(pos.Z() / sg.cellSize)),
	}
}

func clampCell(v float64) int {
	const limit = 1 << 30
	return int(math.Max(-limit, math.Min(limit, v)))
}

func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
