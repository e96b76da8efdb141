package rain

import (
	"container/list"

	"github.com/google/uuid"
)

// Surface is the mount point units are rendered on. Implementations may fail; the Manager
// logs and absorbs those failures one operation at a time.
type Surface interface {
	Mount(u Unit) error
	Unmount(id uuid.UUID) error
	SetPaused(id uuid.UUID, paused bool) error
}

// Registry is the set of live units in creation order, bounded by a capacity.
// It is the only record of what is live; there is no separate cache to go stale.
type Registry struct {
	capacity int
	surface  Surface
	order    *list.List // of Unit
	index    map[uuid.UUID]*list.Element
}

// NewRegistry returns an empty registry mounting onto surface.
func NewRegistry(capacity int, surface Surface) *Registry {
	return &Registry{
		capacity: capacity,
		surface:  surface,
		order:    list.New(),
		index:    make(map[uuid.UUID]*list.Element),
	}
}

// Len is the live count.
func (r *Registry) Len() int { return r.order.Len() }

// Cap is the population ceiling.
func (r *Registry) Cap() int { return r.capacity }

// Full reports whether another registration would be rejected.
func (r *Registry) Full() bool { return r.order.Len() >= r.capacity }

// TryRegister mounts u and records it unless the registry is full or already holds u.
// A mount error leaves the registry unchanged.
func (r *Registry) TryRegister(u Unit) (bool, error) {
	if r.Full() {
		return false, nil
	}
	if _, dup := r.index[u.ID]; dup {
		return false, nil
	}
	if err := r.surface.Mount(u); err != nil {
		return false, err
	}
	r.index[u.ID] = r.order.PushBack(u)
	return true, nil
}

// Deregister removes and unmounts a unit. Unknown ids are a no-op, so expiry and trimming
// may both remove the same unit. An unmount error is returned after the unit is removed.
func (r *Registry) Deregister(id uuid.UUID) (bool, error) {
	el, ok := r.index[id]
	if !ok {
		return false, nil
	}
	r.order.Remove(el)
	delete(r.index, id)
	return true, r.surface.Unmount(id)
}

// Get returns the live unit with id.
func (r *Registry) Get(id uuid.UUID) (Unit, bool) {
	el, ok := r.index[id]
	if !ok {
		return Unit{}, false
	}
	return el.Value.(Unit), true //nolint:forcetypeassert // list only holds Unit
}

// SetPaused records the play state and forwards it to the surface.
func (r *Registry) SetPaused(id uuid.UUID, paused bool) error {
	el, ok := r.index[id]
	if !ok {
		return nil
	}
	u := el.Value.(Unit) //nolint:forcetypeassert // list only holds Unit
	u.Paused = paused
	el.Value = u
	return r.surface.SetPaused(id, paused)
}

// Live returns a creation-order snapshot of every live unit.
func (r *Registry) Live() []Unit {
	return r.Oldest(r.order.Len())
}

// Oldest returns up to n units, oldest first.
func (r *Registry) Oldest(n int) []Unit {
	n = min(n, r.order.Len())
	if n <= 0 {
		return nil
	}
	out := make([]Unit, 0, n)
	for el := r.order.Front(); el != nil && len(out) < n; el = el.Next() {
		out = append(out, el.Value.(Unit)) //nolint:forcetypeassert // list only holds Unit
	}
	return out
}
