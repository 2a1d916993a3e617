package types

import "fmt"

// ProgramType is an IRS relief program a case is pursued under
type ProgramType string

const (
	// ProgramOIC is Offer in Compromise
	ProgramOIC ProgramType = "OIC"
	// ProgramIA is Installment Agreement
	ProgramIA  ProgramType = "IA"
	// ProgramCNC is Currently Not Collectible
	ProgramCNC ProgramType = "CNC"
	// ProgramPA is Penalty Abatement
	ProgramPA  ProgramType = "PA"
	// ProgramISR is Innocent Spouse Relief
	ProgramISR ProgramType = "ISR"

	ProgramAudit    ProgramType = "AUDIT"
	ProgramMultiple ProgramType = "MULTIPLE"
)

// AllProgramTypes returns every program a case can be opened under
func AllProgramTypes() []ProgramType {
	return []ProgramType{
		ProgramOIC,
		ProgramIA,
		ProgramCNC,
		ProgramPA,
		ProgramISR,
		ProgramAudit,
		ProgramMultiple,
	}
}

// ReliefPrograms returns the five programs scored by the eligibility engine,
// in evaluation order.
func ReliefPrograms() []ProgramType {
	return []ProgramType{
		ProgramOIC,
		ProgramIA,
		ProgramCNC,
		ProgramPA,
		ProgramISR,
	}
}

// IsValid checks if the program type is valid
func (p ProgramType) IsValid() bool {
	switch p {
	case ProgramOIC, ProgramIA, ProgramCNC, ProgramPA, ProgramISR, ProgramAudit, ProgramMultiple:
		return true
	default:
		return false
	}
}

// DisplayName returns the human readable program name
func (p ProgramType) DisplayName() string {
	switch p {
	case ProgramOIC:
		return "Offer in Compromise"
	case ProgramIA:
		return "Installment Agreement"
	case ProgramCNC:
		return "Currently Not Collectible"
	case ProgramPA:
		return "Penalty Abatement"
	case ProgramISR:
		return "Innocent Spouse Relief"
	case ProgramAudit:
		return "Audit Representation"
	case ProgramMultiple:
		return "Multiple Programs"
	default:
		return string(p)
	}
}

func (p ProgramType) String() string {
	return string(p)
}

// ParseProgramType parses a string into a ProgramType
func ParseProgramType(s string) (ProgramType, error) {
	p := ProgramType(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid program type: %s", s)
	}
	return p, nil
}
