/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2025 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package registry holds the adapter side's live servants, passivating the
// least recently used one to a freeze.Freeze store whenever admitting a new
// servant would exceed the configured evictor capacity, and rehydrating one
// back out of the freeze store on the next lookup that misses the live set.
package registry

import (
	"sync"

	"github.com/sabouaram/icerpc/evictor"
	"github.com/sabouaram/icerpc/freeze"
	"github.com/sabouaram/icerpc/logger"
	"github.com/sabouaram/icerpc/oid"
	"github.com/sabouaram/icerpc/rpcerr"
	"github.com/sabouaram/icerpc/servant"
)

type record struct {
	entity servant.Servant
	node   evictor.NodeID // zero when the servant did not enter the evictor list
}

// Registry is the single-lock servant directory an adapter dispatches
// through. All methods are safe for concurrent use.
type Registry struct {
	mu sync.Mutex

	servants       map[oid.Oid]record
	reportServants map[oid.Oid]servant.ReportServant
	watch          servant.WatchServant

	evictor *evictor.List
	freeze  *freeze.Freeze[servant.Servant]

	log logger.Logger
}

// New returns an empty Registry whose evictor list admits at most
// evictorCapacity live, serializable servants before passivating the least
// recently used one to db. A evictorCapacity of zero means unbounded.
func New(evictorCapacity int, db freeze.Storage, log logger.Logger) *Registry {
	if log == nil {
		log = logger.Discard()
	}

	return &Registry{
		servants:       make(map[oid.Oid]record),
		reportServants: make(map[oid.Oid]servant.ReportServant),
		evictor:        evictor.New(evictorCapacity),
		freeze:         freeze.New[servant.Servant](db),
		log:            log,
	}
}

// EnrollInFreeze registers the rehydrator used to bring a passivated servant
// of the given category back to life. Returns ErrFreezeDuplicateCategory if
// category is already enrolled.
func (r *Registry) EnrollInFreeze(category string, rehydrate freeze.Rehydrator[servant.Servant]) error {
	return r.freeze.Enroll(category, rehydrate)
}

// SetWatchServant installs w as the registry's single catch-all servant,
// returning whichever one it replaces (nil if none).
func (r *Registry) SetWatchServant(w servant.WatchServant) servant.WatchServant {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.watch
	r.watch = w
	return old
}

// WatchServant returns the registered watch servant, if any.
func (r *Registry) WatchServant() (servant.WatchServant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.watch, r.watch != nil
}

// AddServant installs entity under Oid{entity.Name(), category}, evicting
// the least recently used servant first if this insertion would put the
// live set over capacity. A servant that does not implement servant.Dumper
// is kept resident forever: it never enters the evictor list and is never
// passivated. Returns ErrRegistryDuplicateOid without modifying any state if
// the Oid is already live.
func (r *Registry) AddServant(category string, entity servant.Servant) error {
	o := oid.New(entity.Name(), category)
	_, dumpErr := servant.Dump(entity)
	isSerializable := dumpErr == nil

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, existed := r.servants[o]; existed {
		return rpcerr.ErrRegistryDuplicateOid.Errorf("oid %q is already registered", o.String())
	}

	rec := record{entity: entity}
	if isSerializable {
		r.evictLastOne()
		id, err := r.evictor.Push(o)
		if err == nil {
			rec.node = id
		} else {
			r.log.Warning("evictor rejected push after eviction", logger.Fields{"oid": o.String(), "error": err.Error()})
		}
	}

	r.servants[o] = rec
	return nil
}

// AddReportServant installs entity under Oid{entity.Name(), category}. A
// ReportServant never enters the evictor list: report traffic is
// fire-and-forget and has no passivated form. Returns ErrRegistryDuplicateOid
// without modifying any state if the Oid is already live.
func (r *Registry) AddReportServant(category string, entity servant.ReportServant) error {
	o := oid.New(entity.Name(), category)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, existed := r.reportServants[o]; existed {
		return rpcerr.ErrRegistryDuplicateOid.Errorf("oid %q is already registered", o.String())
	}

	r.reportServants[o] = entity
	return nil
}

// FindServant returns the live servant at o, rehydrating it from the freeze
// store on a live-set miss. A lookup that hits the live set refreshes the
// servant's position in the evictor list, same as the rehydration path.
func (r *Registry) FindServant(o oid.Oid) (servant.Servant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.servants[o]; ok {
		if rec.node != 0 {
			if err := r.evictor.Top(rec.node); err != nil {
				r.log.Warning("evictor lost track of a live servant's node", logger.Fields{"oid": o.String(), "error": err.Error()})
			}
		}
		return rec.entity, true
	}

	entity, err := r.freeze.Load(o)
	if err != nil {
		r.log.Warning("servant lookup missed the freeze store", logger.Fields{"oid": o.String(), "error": err.Error()})
		return nil, false
	}

	r.evictLastOne()
	id, pushErr := r.evictor.Push(o)
	rec := record{entity: entity}
	if pushErr == nil {
		rec.node = id
	}
	r.servants[o] = rec

	return entity, true
}

// FindReportServant returns the ReportServant at o, if any.
func (r *Registry) FindReportServant(o oid.Oid) (servant.ReportServant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.reportServants[o]
	return s, ok
}

// Servants returns every Oid currently resident in the live set, in no
// particular order.
func (r *Registry) Servants() []oid.Oid {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]oid.Oid, 0, len(r.servants))
	for o := range r.servants {
		out = append(out, o)
	}
	return out
}

// ReportServants returns every Oid registered as a ReportServant.
func (r *Registry) ReportServants() []oid.Oid {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]oid.Oid, 0, len(r.reportServants))
	for o := range r.reportServants {
		out = append(out, o)
	}
	return out
}

// evictLastOne passivates the evictor list's current tail, if any. Callers
// must hold r.mu.
func (r *Registry) evictLastOne() {
	v, ok := r.evictor.Evict()
	if !ok {
		return
	}

	o := v.(oid.Oid)
	rec, ok := r.servants[o]
	if !ok {
		return
	}
	delete(r.servants, o)

	data, err := servant.Dump(rec.entity)
	if err != nil {
		r.log.Warning("evicted servant could not be dumped", logger.Fields{"oid": o.String(), "error": err.Error()})
		return
	}

	if err := r.freeze.Store(o, data); err != nil {
		r.log.Warning("failed to passivate evicted servant", logger.Fields{"oid": o.String(), "error": err.Error()})
	}
}

// ErrNoWatchServant is the registry-level error for a nil-Oid Request when no
// watch servant has been registered. Nothing in this module returns it: the
// adapter answers such a Request with a RemoteError reading
// "watch servant doesn't exist.".
var ErrNoWatchServant = rpcerr.ErrRegistryNoWatchServant.Error()
