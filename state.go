package lockman

import (
	"container/list"
	"sync"
)

type (
	// State is the thread-safe, per-strategy lock store described in spec
	// §4.C: for each boundary, an ordered map of UniqueId -> LockInfo
	// (insertion order preserved) plus a secondary ActionId -> set<UniqueId>
	// index. Each built-in strategy owns one State instance.
	//
	// Every operation is atomic with respect to a single internal critical
	// section scoped to its boundary; operations on distinct boundaries
	// never contend with each other, mirroring the per-category locking in
	// the rate-limiting state store this was grounded on.
	State struct {
		boundaries sync.Map // BoundaryId -> *boundaryRecord
		reporter   IssueReporter
	}

	boundaryRecord struct {
		mu    sync.Mutex
		order *list.List // *list.Element.Value is LockInfo
		byUID map[UniqueId]*list.Element
		byAct map[ActionId]map[UniqueId]struct{}
	}
)

var boundaryRecordPool = sync.Pool{New: func() any {
	return &boundaryRecord{
		order: list.New(),
		byUID: make(map[UniqueId]*list.Element),
		byAct: make(map[ActionId]map[UniqueId]struct{}),
	}
}}

// NewState creates an empty State. reporter may be nil, in which case
// DefaultIssueReporter is used: invariant violations are logged via zerolog
// at warn level.
func NewState(reporter IssueReporter) *State {
	if reporter == nil {
		reporter = DefaultIssueReporter
	}
	return &State{reporter: reporter}
}

func (s *State) record(boundary BoundaryId, createIfMissing bool) *boundaryRecord {
	if v, ok := s.boundaries.Load(boundary); ok {
		return v.(*boundaryRecord)
	}
	if !createIfMissing {
		return nil
	}
	rec := boundaryRecordPool.Get().(*boundaryRecord)
	actual, loaded := s.boundaries.LoadOrStore(boundary, rec)
	if loaded {
		boundaryRecordPool.Put(rec)
	}
	return actual.(*boundaryRecord)
}

// Add inserts info under boundary. Inserting a UniqueId that is already
// present violates invariant 1 (spec §3); it is reported via the
// IssueReporter and otherwise ignored, leaving state unchanged.
func (s *State) Add(boundary BoundaryId, info LockInfo) {
	rec := s.record(boundary, true)
	rec.mu.Lock()
	defer rec.mu.Unlock()

	uid := info.UniqueId()
	if _, exists := rec.byUID[uid]; exists {
		s.reporter(IssueDuplicateUniqueId, `lockman: state: duplicate insert of uniqueId `+uid.String())
		return
	}

	el := rec.order.PushBack(info)
	rec.byUID[uid] = el

	actId := info.ActionId()
	set := rec.byAct[actId]
	if set == nil {
		set = make(map[UniqueId]struct{}, 1)
		rec.byAct[actId] = set
	}
	set[uid] = struct{}{}
}

// Remove deletes info's UniqueId from boundary. A no-op (idempotent) if not
// present, satisfying invariant 4.
func (s *State) Remove(boundary BoundaryId, info LockInfo) {
	s.removeByUID(boundary, info.ActionId(), info.UniqueId())
}

// RemoveByActionId deletes every lock sharing actionId from boundary. Used
// by strategies whose unlock semantics release by actionId rather than by a
// single UniqueId (spec §4.E, Dynamic-Condition).
func (s *State) RemoveByActionId(boundary BoundaryId, actionId ActionId) {
	rec := s.record(boundary, false)
	if rec == nil {
		return
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	set := rec.byAct[actionId]
	if len(set) == 0 {
		return
	}
	for uid := range set {
		if el, ok := rec.byUID[uid]; ok {
			rec.order.Remove(el)
			delete(rec.byUID, uid)
		}
	}
	delete(rec.byAct, actionId)
}

func (s *State) removeByUID(boundary BoundaryId, actionId ActionId, uid UniqueId) {
	rec := s.record(boundary, false)
	if rec == nil {
		return
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	el, ok := rec.byUID[uid]
	if !ok {
		return
	}
	rec.order.Remove(el)
	delete(rec.byUID, uid)

	if set := rec.byAct[actionId]; set != nil {
		delete(set, uid)
		if len(set) == 0 {
			delete(rec.byAct, actionId)
		}
	}
}

// Contains reports whether any lock for actionId is held within boundary.
func (s *State) Contains(boundary BoundaryId, actionId ActionId) bool {
	rec := s.record(boundary, false)
	if rec == nil {
		return false
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return len(rec.byAct[actionId]) != 0
}

// Count returns the number of locks held for actionId within boundary.
func (s *State) Count(boundary BoundaryId, actionId ActionId) int {
	rec := s.record(boundary, false)
	if rec == nil {
		return 0
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return len(rec.byAct[actionId])
}

// Locks returns a by-value, insertion-ordered snapshot of every lock held
// within boundary.
func (s *State) Locks(boundary BoundaryId) []LockInfo {
	rec := s.record(boundary, false)
	if rec == nil {
		return nil
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return snapshotOrder(rec.order)
}

// LocksForAction returns a by-value, insertion-ordered snapshot of every
// lock held for actionId within boundary.
func (s *State) LocksForAction(boundary BoundaryId, actionId ActionId) []LockInfo {
	rec := s.record(boundary, false)
	if rec == nil {
		return nil
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	set := rec.byAct[actionId]
	if len(set) == 0 {
		return nil
	}
	out := make([]LockInfo, 0, len(set))
	for el := rec.order.Front(); el != nil; el = el.Next() {
		info := el.Value.(LockInfo)
		if _, ok := set[info.UniqueId()]; ok {
			out = append(out, info)
		}
	}
	return out
}

// ActionIds returns the set of distinct ActionId values currently held
// within boundary.
func (s *State) ActionIds(boundary BoundaryId) map[ActionId]struct{} {
	rec := s.record(boundary, false)
	if rec == nil {
		return nil
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	out := make(map[ActionId]struct{}, len(rec.byAct))
	for actId, set := range rec.byAct {
		if len(set) != 0 {
			out[actId] = struct{}{}
		}
	}
	return out
}

// Cleanup removes every boundary's state.
func (s *State) Cleanup() {
	s.boundaries.Range(func(key, value any) bool {
		s.boundaries.Delete(key)
		releaseBoundaryRecord(value.(*boundaryRecord))
		return true
	})
}

// CleanupBoundary removes boundary's state, atomically dropping both the
// primary and secondary indexes (invariant 5).
func (s *State) CleanupBoundary(boundary BoundaryId) {
	if v, ok := s.boundaries.LoadAndDelete(boundary); ok {
		releaseBoundaryRecord(v.(*boundaryRecord))
	}
}

// Snapshot returns a by-value copy of every boundary's locks, in insertion
// order, grouped by boundary.
func (s *State) Snapshot() map[BoundaryId][]LockInfo {
	out := make(map[BoundaryId][]LockInfo)
	s.boundaries.Range(func(key, value any) bool {
		rec := value.(*boundaryRecord)
		rec.mu.Lock()
		locks := snapshotOrder(rec.order)
		rec.mu.Unlock()
		if len(locks) != 0 {
			out[key.(BoundaryId)] = locks
		}
		return true
	})
	return out
}

func snapshotOrder(order *list.List) []LockInfo {
	out := make([]LockInfo, 0, order.Len())
	for el := order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(LockInfo))
	}
	return out
}

func releaseBoundaryRecord(rec *boundaryRecord) {
	rec.order.Init()
	for k := range rec.byUID {
		delete(rec.byUID, k)
	}
	for k := range rec.byAct {
		delete(rec.byAct, k)
	}
	boundaryRecordPool.Put(rec)
}
