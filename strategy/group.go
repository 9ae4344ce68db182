package strategy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lockman-go/lockman"
)

type (
	// GroupId names a coordination group a GroupInfo joins.
	GroupId string

	// GroupRole is a GroupInfo's role within the groups it joins.
	GroupRole int

	// LeaderEntryPolicy constrains who else may share a group with a
	// leader. This is the canonical vocabulary (spec §9 open question 1);
	// the legacy ExclusionMode form is not implemented.
	LeaderEntryPolicy int
)

const (
	RoleNone GroupRole = iota
	RoleMember
	RoleLeader
)

const (
	// PolicyEmptyGroup requires every listed group to be entirely empty
	// before this leader may join, and excludes everyone else afterward.
	PolicyEmptyGroup LeaderEntryPolicy = iota
	// PolicyWithoutMembers allows other leaders already present, but no
	// members, and excludes members from joining afterward.
	PolicyWithoutMembers
	// PolicyWithoutLeader allows members already present, but no other
	// leader, and excludes other leaders from joining afterward.
	PolicyWithoutLeader
)

func (r GroupRole) String() string {
	switch r {
	case RoleNone:
		return `none`
	case RoleMember:
		return `member`
	case RoleLeader:
		return `leader`
	default:
		return `unknown`
	}
}

func (p LeaderEntryPolicy) String() string {
	switch p {
	case PolicyEmptyGroup:
		return `emptyGroup`
	case PolicyWithoutMembers:
		return `withoutMembers`
	case PolicyWithoutLeader:
		return `withoutLeader`
	default:
		return `unknown`
	}
}

type (
	// GroupInfo is the LockInfo for GroupStrategy.
	GroupInfo struct {
		lockman.Header
		Groups map[GroupId]struct{}
		Role   GroupRole
		Policy LeaderEntryPolicy // meaningful only when Role == RoleLeader
	}

	// GroupStrategy implements spec §4.E3: actions join one or more named
	// groups as a member or a policy-governed leader.
	GroupStrategy struct {
		id    lockman.StrategyId
		state *lockman.State
	}

	// LeaderCannotJoinNonEmptyError rejects a leader join that violates its
	// own declared Policy against the groups' current occupants.
	LeaderCannotJoinNonEmptyError struct {
		Groups []GroupId
	}

	// MemberCannotJoinEmptyError rejects a member join when every listed
	// group is currently empty.
	MemberCannotJoinEmptyError struct {
		Groups []GroupId
	}

	// ActionAlreadyInGroupError rejects a join whose ActionId is already
	// present in one of the listed groups.
	ActionAlreadyInGroupError struct {
		ActionId lockman.ActionId
		Groups   []GroupId
	}

	// BlockedByExclusiveLeaderError rejects a join because an existing
	// leader's Policy excludes this kind of joiner.
	BlockedByExclusiveLeaderError struct {
		LeaderActionId lockman.ActionId
		Group          GroupId
		Policy         LeaderEntryPolicy
	}
)

// NewGroupInfo builds a GroupInfo joining groups (must be non-empty).
func NewGroupInfo(strategyId lockman.StrategyId, actionId lockman.ActionId, role GroupRole, policy LeaderEntryPolicy, groups []GroupId, opts ...lockman.HeaderOption) GroupInfo {
	if len(groups) == 0 {
		panic(`lockman/strategy: GroupInfo requires at least one group`)
	}
	set := make(map[GroupId]struct{}, len(groups))
	for _, g := range groups {
		set[g] = struct{}{}
	}
	return GroupInfo{
		Header: lockman.NewHeader(strategyId, actionId, opts...),
		Groups: set,
		Role:   role,
		Policy: policy,
	}
}

func (i GroupInfo) sortedGroups() []GroupId {
	out := make([]GroupId, 0, len(i.Groups))
	for g := range i.Groups {
		out = append(out, g)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

func (i GroupInfo) DebugDescription() string {
	names := make([]string, 0, len(i.Groups))
	for _, g := range i.sortedGroups() {
		names = append(names, string(g))
	}
	return lockman.FormatDebug(`GroupInfo`, i.ActionId(), i.UniqueId(),
		`groups=[`+strings.Join(names, `,`)+`]`, `role=`+i.Role.String())
}

// NewGroupStrategy constructs a strategy registered under id.
func NewGroupStrategy(id lockman.StrategyId, reporter lockman.IssueReporter) *GroupStrategy {
	return &GroupStrategy{id: id, state: lockman.NewState(reporter)}
}

func (s *GroupStrategy) StrategyId() lockman.StrategyId { return s.id }

func (s *GroupStrategy) State() *lockman.State { return s.state }

func (s *GroupStrategy) CanLock(boundary lockman.BoundaryId, info GroupInfo) lockman.AcquireResult {
	locks := s.state.Locks(boundary)
	groups := info.sortedGroups()

	// duplicate action-id in any listed group
	for _, l := range locks {
		g := l.(GroupInfo)
		if g.ActionId() != info.ActionId() {
			continue
		}
		if groupsIntersect(g.Groups, info.Groups) {
			return lockman.Failure(&ActionAlreadyInGroupError{ActionId: info.ActionId(), Groups: groups})
		}
	}

	// this joiner's own role/policy vs. current occupants
	switch info.Role {
	case RoleNone:
		// treated as a member, but without the leader-policy / empty-group
		// checks that apply to an explicit RoleMember or RoleLeader join.

	case RoleMember:
		if !anyOccupant(locks, info.Groups) {
			return lockman.Failure(&MemberCannotJoinEmptyError{Groups: groups})
		}

	case RoleLeader:
		if violatesOwnPolicy(locks, info) {
			return lockman.Failure(&LeaderCannotJoinNonEmptyError{Groups: groups})
		}
	}

	// existing leaders whose own policy excludes this joiner
	if blocker, group, ok := findExcludingLeader(locks, info); ok {
		return lockman.Failure(&BlockedByExclusiveLeaderError{
			LeaderActionId: blocker.ActionId(),
			Group:          group,
			Policy:         blocker.Policy,
		})
	}

	return lockman.Success()
}

func groupsIntersect(a, b map[GroupId]struct{}) bool {
	for g := range a {
		if _, ok := b[g]; ok {
			return true
		}
	}
	return false
}

func anyOccupant(locks []lockman.LockInfo, groups map[GroupId]struct{}) bool {
	for _, l := range locks {
		g := l.(GroupInfo)
		if groupsIntersect(g.Groups, groups) {
			return true
		}
	}
	return false
}

// violatesOwnPolicy reports whether a leader joining with info's own
// Policy would conflict with the current occupants of its listed groups.
func violatesOwnPolicy(locks []lockman.LockInfo, info GroupInfo) bool {
	for _, l := range locks {
		g := l.(GroupInfo)
		if !groupsIntersect(g.Groups, info.Groups) {
			continue
		}
		switch info.Policy {
		case PolicyEmptyGroup:
			return true // any occupant at all violates emptyGroup
		case PolicyWithoutMembers:
			if g.Role != RoleLeader {
				return true // a member (or none-role occupant) is present
			}
		case PolicyWithoutLeader:
			if g.Role == RoleLeader {
				return true // another leader is present
			}
		}
	}
	return false
}

// findExcludingLeader looks for an existing leader in one of info's listed
// groups whose own Policy excludes a joiner like info.
func findExcludingLeader(locks []lockman.LockInfo, info GroupInfo) (GroupInfo, GroupId, bool) {
	for _, l := range locks {
		g := l.(GroupInfo)
		if g.Role != RoleLeader {
			continue
		}
		for group := range g.Groups {
			if _, ok := info.Groups[group]; !ok {
				continue
			}
			switch g.Policy {
			case PolicyEmptyGroup:
				return g, group, true
			case PolicyWithoutMembers:
				if info.Role != RoleLeader {
					return g, group, true
				}
			case PolicyWithoutLeader:
				if info.Role == RoleLeader {
					return g, group, true
				}
			}
		}
	}
	return GroupInfo{}, ``, false
}

func (s *GroupStrategy) Lock(boundary lockman.BoundaryId, info GroupInfo) {
	s.state.Add(boundary, info)
}

func (s *GroupStrategy) Unlock(boundary lockman.BoundaryId, info GroupInfo) {
	s.state.Remove(boundary, info)
}

func (s *GroupStrategy) Cleanup() { s.state.Cleanup() }

func (s *GroupStrategy) CleanupBoundary(boundary lockman.BoundaryId) {
	s.state.CleanupBoundary(boundary)
}

func (s *GroupStrategy) CurrentLocks() []lockman.LockInfo {
	var out []lockman.LockInfo
	for _, locks := range s.state.Snapshot() {
		out = append(out, locks...)
	}
	return out
}

func (e *LeaderCannotJoinNonEmptyError) Error() string { return e.Describe() }
func (e *LeaderCannotJoinNonEmptyError) FailureReason() string {
	return `leader_cannot_join_non_empty`
}
func (e *LeaderCannotJoinNonEmptyError) Describe() string {
	return fmt.Sprintf(`leader cannot join non-empty group(s): %v`, e.Groups)
}
func (e *LeaderCannotJoinNonEmptyError) HelpAnchor() string {
	return `lockman/strategy#leader-cannot-join-non-empty`
}

func (e *MemberCannotJoinEmptyError) Error() string         { return e.Describe() }
func (e *MemberCannotJoinEmptyError) FailureReason() string { return `member_cannot_join_empty` }
func (e *MemberCannotJoinEmptyError) Describe() string {
	return fmt.Sprintf(`member cannot join empty group(s): %v`, e.Groups)
}
func (e *MemberCannotJoinEmptyError) HelpAnchor() string {
	return `lockman/strategy#member-cannot-join-empty`
}

func (e *ActionAlreadyInGroupError) Error() string         { return e.Describe() }
func (e *ActionAlreadyInGroupError) FailureReason() string { return `action_already_in_group` }
func (e *ActionAlreadyInGroupError) Describe() string {
	return fmt.Sprintf(`action %s already in group(s): %v`, e.ActionId, e.Groups)
}
func (e *ActionAlreadyInGroupError) HelpAnchor() string {
	return `lockman/strategy#action-already-in-group`
}

func (e *BlockedByExclusiveLeaderError) Error() string         { return e.Describe() }
func (e *BlockedByExclusiveLeaderError) FailureReason() string { return `blocked_by_exclusive_leader` }
func (e *BlockedByExclusiveLeaderError) Describe() string {
	return fmt.Sprintf(`blocked by exclusive leader %s in group %s (policy=%s)`, e.LeaderActionId, e.Group, e.Policy)
}
func (e *BlockedByExclusiveLeaderError) HelpAnchor() string {
	return `lockman/strategy#blocked-by-exclusive-leader`
}
