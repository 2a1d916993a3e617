package types

import "fmt"

// CasePriority represents how urgently a case needs attention
type CasePriority string

const (
	CasePriorityLow    CasePriority = "LOW"
	CasePriorityMedium CasePriority = "MEDIUM"
	CasePriorityHigh   CasePriority = "HIGH"
	CasePriorityUrgent CasePriority = "URGENT"
)

// AllCasePriorities returns all valid priorities, lowest first
func AllCasePriorities() []CasePriority {
	return []CasePriority{
		CasePriorityLow,
		CasePriorityMedium,
		CasePriorityHigh,
		CasePriorityUrgent,
	}
}

// IsValid checks if the priority is valid
func (p CasePriority) IsValid() bool {
	switch p {
	case CasePriorityLow, CasePriorityMedium, CasePriorityHigh, CasePriorityUrgent:
		return true
	default:
		return false
	}
}

// Normalize returns the priority, treating empty as MEDIUM
func (p CasePriority) Normalize() CasePriority {
	if p == "" {
		return CasePriorityMedium
	}
	return p
}

func (p CasePriority) String() string {
	return string(p)
}

// ParseCasePriority parses a string into a CasePriority
func ParseCasePriority(s string) (CasePriority, error) {
	p := CasePriority(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid case priority: %s", s)
	}
	return p, nil
}
