// Package rid provides the opaque handles the server hands out and the
// per-kind tables that resolve them.
package rid

import "fmt"

// Kind tags a handle with the table that owns it
type Kind uint8

const (
	KindInvalid Kind = iota
	KindShape
	KindBody
	KindArea
	KindSpace
	KindJoint
)

func (k Kind) String() string {
	switch k {
	case KindShape:
		return "shape"
	case KindBody:
		return "body"
	case KindArea:
		return "area"
	case KindSpace:
		return "space"
	case KindJoint:
		return "joint"
	}
	return "invalid"
}

const (
	indexBits      = 32
	generationBits = 24
	generationMask = 1<<generationBits - 1
)

// RID packs kind (8 bits), generation (24 bits) and slot index (32 bits).
// The zero RID never resolves.
type RID uint64

// Invalid is the zero handle
const Invalid RID = 0

func New(kind Kind, generation uint32, index uint32) RID {
	return RID(uint64(kind)<<(indexBits+generationBits) |
		uint64(generation&generationMask)<<indexBits |
		uint64(index))
}

func (r RID) Kind() Kind         { return Kind(r >> (indexBits + generationBits)) }
func (r RID) Generation() uint32 { return uint32(r>>indexBits) & generationMask }
func (r RID) Index() uint32      { return uint32(r) }
func (r RID) IsValid() bool      { return r != Invalid }

func (r RID) String() string {
	if !r.IsValid() {
		return "rid(invalid)"
	}
	return fmt.Sprintf("%s(%d:%d)", r.Kind(), r.Index(), r.Generation())
}

// nextGeneration wraps within 24 bits and skips 0
func nextGeneration(generation uint32) uint32 {
	generation = (generation + 1) & generationMask
	if generation == 0 {
		generation = 1
	}
	return generation
}
