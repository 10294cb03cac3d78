package rid

type slot[T any] struct {
	value      *T
	generation uint32
	alive      bool
}

// Owner is an arena of slots for one kind of object. Freed slots are reused
// with a bumped generation so stale handles stop resolving.
// It is not safe for concurrent use.
type Owner[T any] struct {
	kind     Kind
	slots    []slot[T]
	freeList []uint32
	count    int
}

func NewOwner[T any](kind Kind) *Owner[T] {
	return &Owner[T]{
		kind:     kind,
		slots:    make([]slot[T], 0, 64),
		freeList: make([]uint32, 0, 16),
	}
}

func (o *Owner[T]) Kind() Kind {
	return o.kind
}

// MakeRID stores value and returns a fresh handle for it
func (o *Owner[T]) MakeRID(value *T) RID {
	var index uint32
	if n := len(o.freeList); n > 0 {
		index = o.freeList[n-1]
		o.freeList = o.freeList[:n-1]
	} else {
		index = uint32(len(o.slots))
		o.slots = append(o.slots, slot[T]{generation: 1})
	}

	s := &o.slots[index]
	s.value = value
	s.alive = true
	o.count++

	return New(o.kind, s.generation, index)
}

// Owns reports whether r is a live handle of this table
func (o *Owner[T]) Owns(r RID) bool {
	if r.Kind() != o.kind {
		return false
	}
	index := r.Index()
	if int(index) >= len(o.slots) {
		return false
	}
	s := o.slots[index]
	return s.alive && s.generation == r.Generation()
}

// GetOrNull resolves r, returning nil for stale or foreign handles
func (o *Owner[T]) GetOrNull(r RID) *T {
	if !o.Owns(r) {
		return nil
	}
	return o.slots[r.Index()].value
}

// Free releases the slot of r. It returns false if r was not live.
func (o *Owner[T]) Free(r RID) bool {
	if !o.Owns(r) {
		return false
	}

	index := r.Index()
	s := &o.slots[index]
	s.value = nil
	s.alive = false
	s.generation = nextGeneration(s.generation)
	o.freeList = append(o.freeList, index)
	o.count--

	return true
}

func (o *Owner[T]) Count() int {
	return o.count
}

// Each visits live entries in slot order; returning false stops the walk
func (o *Owner[T]) Each(fn func(r RID, value *T) bool) {
	for index, s := range o.slots {
		if !s.alive {
			continue
		}
		if !fn(New(o.kind, s.generation, uint32(index)), s.value) {
			return
		}
	}
}

// RIDs returns the live handles in slot order
func (o *Owner[T]) RIDs() []RID {
	rids := make([]RID, 0, o.count)
	o.Each(func(r RID, _ *T) bool {
		rids = append(rids, r)
		return true
	})
	return rids
}
