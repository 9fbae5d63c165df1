package registry

import (
	"sync"
	"time"

	"github.com/pixperk/handset/pkg/types"
)

// owns the mobile -> lease mapping
// critical :
// - at most one lease per mobile
// - test-and-set on acquire and check-and-delete on release happen under one write lock
// - the map never leaves this type, callers only get lease copies
type Registry struct {
	mu     sync.RWMutex
	leases map[string]types.Lease // mobile -> Lease
}

func New() *Registry {
	return &Registry{
		leases: make(map[string]types.Lease),
	}
}

// books mobile for requester from now until due
// fails with ErrInvalidDue before touching state when due is not strictly after now
// fails with a HolderError wrapping ErrAlreadyLeased when someone holds it, the existing lease is left as is
func (r *Registry) Acquire(mobile, requester string, due, now time.Time) (types.Lease, error) {
	if !due.After(now) {
		return types.Lease{}, types.ErrInvalidDue
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, held := r.leases[mobile]; held {
		return types.Lease{}, &types.HolderError{
			Err:    types.ErrAlreadyLeased,
			Mobile: mobile,
			Holder: existing.Requester,
		}
	}

	lease := types.Lease{
		Mobile:    mobile,
		Requester: requester,
		Made:      now,
		Due:       due,
	}
	r.leases[mobile] = lease

	return lease, nil
}

// removes the lease on mobile if requester holds it and returns the removed lease
func (r *Registry) Release(mobile, requester string) (types.Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lease, held := r.leases[mobile]
	if !held {
		return types.Lease{}, types.ErrNotFound
	}

	//only the holder may free it
	if lease.Requester != requester {
		return types.Lease{}, &types.HolderError{
			Err:    types.ErrForbiddenHolder,
			Mobile: mobile,
			Holder: lease.Requester,
		}
	}

	delete(r.leases, mobile)

	return lease, nil
}

// returns the current lease on mobile, if any
func (r *Registry) Lookup(mobile string) (types.Lease, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lease, held := r.leases[mobile]
	return lease, held
}

// current registry stats
type Stats struct {
	Leases int
}

func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return Stats{
		Leases: len(r.leases),
	}
}
