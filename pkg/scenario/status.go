package scenario

import "strings"

// Status is the lifecycle state of an execution node.
type Status string

const (
	StatusNotRun  Status = "not_run"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusPending Status = "pending"
	StatusSkipped Status = "skipped"
	StatusIgnored Status = "ignored"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusPending, StatusSkipped, StatusIgnored:
		return true
	}
	return false
}

// Aggregate derives a group status from its children. A uniform status is
// kept; otherwise failed wins; otherwise the first child's status is used.
// Pending never surfaces above a leaf and becomes passed. An empty group
// has passed.
func Aggregate(children []Status) Status {
	if len(children) == 0 {
		return StatusPassed
	}
	result := children[0]
	uniform := true
	failed := false
	for _, s := range children {
		if s != children[0] {
			uniform = false
		}
		if s == StatusFailed {
			failed = true
		}
	}
	if !uniform && failed {
		result = StatusFailed
	}
	if result == StatusPending {
		return StatusPassed
	}
	return result
}

// Role tags a step definition with the verb that declared it.
type Role string

const (
	RoleSetup    Role = "setup"
	RoleAction   Role = "action"
	RoleVerify   Role = "verify"
	RoleTeardown Role = "teardown"
	RoleCleanup  Role = "cleanup"
	RoleContext  Role = "context"
	RoleIt       Role = "it"
	RoleLet      Role = "let"
)

// IsTeardown reports whether steps with this role run last in their scope
// and are exempt from skipping.
func (r Role) IsTeardown() bool {
	return r == RoleTeardown || r == RoleCleanup
}

// SkipsRestOnFailure reports whether a failure of this role skips the
// remaining non-teardown siblings.
func (r Role) SkipsRestOnFailure() bool {
	return r == RoleSetup || r == RoleAction
}

func (r Role) capitalized() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}
