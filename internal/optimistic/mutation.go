package optimistic

// State of one mutation instance. Committed and RolledBack are
// terminal; a fresh user action starts a new instance.
type State int

const (
	StateIdle State = iota
	StatePending
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled-back"
	}
	return "unknown"
}

type snapshot struct {
	value   interface{}
	present bool
}

// entityGen tracks the latest generation of an entity plus how many
// mutation instances still reference it; the entry is removed once none
// do, so the map is bounded by in-flight mutations, not by history.
type entityGen struct {
	gen    uint64
	active int
}

// mutation drives one instance of the protocol: snapshot strictly
// before optimistic patch, patch strictly before dispatch, and
// commit-or-rollback strictly after the network resolves. Each instance
// only ever touches its own snapshot, so overlapping mutations on
// different entities cannot cross-contaminate.
type mutation struct {
	s      *Synchronizer
	entity string // generation-counter key
	gen    uint64
	keys   []string
	snaps  map[string]snapshot
	state  State
}

// begin captures a snapshot of every cache entry the mutation might
// disturb and bumps the entity's generation, moving Idle → Pending.
func (s *Synchronizer) begin(entity string, keys ...string) *mutation {
	s.mu.Lock()
	e := s.gens[entity]
	if e == nil {
		e = &entityGen{}
		s.gens[entity] = e
	}
	e.gen++
	e.active++
	gen := e.gen
	s.mu.Unlock()

	m := &mutation{
		s:      s,
		entity: entity,
		gen:    gen,
		keys:   keys,
		snaps:  make(map[string]snapshot, len(keys)),
		state:  StateIdle,
	}
	for _, k := range keys {
		v, ok := s.store.Get(k)
		m.snaps[k] = snapshot{value: v, present: ok}
	}
	m.state = StatePending
	return m
}

func (m *mutation) patch(key string, update func(old interface{}) interface{}) {
	m.s.store.Set(key, update)
}

// stale reports whether a newer mutation on the same entity was
// dispatched while this one was in flight. A stale instance must not
// overwrite the fresher cache state its successor produced.
func (m *mutation) stale() bool {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e := m.s.gens[m.entity]
	return e == nil || e.gen != m.gen
}

// release retires this instance's claim on the entity's generation
// entry.
func (m *mutation) release() {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e := m.s.gens[m.entity]
	if e == nil {
		return
	}
	e.active--
	if e.active <= 0 {
		delete(m.s.gens, m.entity)
	}
}

// commit moves Pending → Committed. The authoritative patch is skipped
// when the instance is stale; the touched keys are invalidated instead
// so the next read refetches.
func (m *mutation) commit(apply func()) State {
	defer m.release()
	if m.stale() {
		m.invalidateAll()
	} else if apply != nil {
		apply()
	}
	m.state = StateCommitted
	return m.state
}

// rollback moves Pending → RolledBack, restoring every touched entry
// verbatim from the snapshot taken at begin. Stale instances invalidate
// instead of restoring, for the same reason commit skips its patch.
func (m *mutation) rollback() State {
	defer m.release()
	if m.stale() {
		m.invalidateAll()
	} else {
		for _, k := range m.keys {
			snap := m.snaps[k]
			if snap.present {
				m.s.store.Set(k, func(interface{}) interface{} { return snap.value })
			} else {
				m.s.store.Invalidate(k)
			}
		}
	}
	m.state = StateRolledBack
	return m.state
}

func (m *mutation) invalidateAll() {
	for _, k := range m.keys {
		m.s.dropKey(k)
	}
}
