package model

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// CaseID is the human readable case identifier, OT<yyyy><mm><nnnn>
type CaseID string

func (x CaseID) String() string { return string(x) }

var caseIDPattern = regexp.MustCompile(`^OT\d{10}$`)

// Validate checks the identifier format
func (x CaseID) Validate() error {
	if !caseIDPattern.MatchString(string(x)) {
		return goerr.Wrap(ErrInvalidInput, "malformed case ID", goerr.V(CaseIDKey, x))
	}
	return nil
}

// GenerateCaseID returns a new case ID for the month of now. The suffix is
// random, so callers retry on collision.
func GenerateCaseID(now time.Time) CaseID {
	return FormatCaseID(now, rand.IntN(10000))
}

// FormatCaseID builds a case ID from the month of t and a suffix in [0, 9999]
func FormatCaseID(t time.Time, suffix int) CaseID {
	year := t.Year() % 10000
	if year < 0 {
		year = -year
	}
	suffix %= 10000
	if suffix < 0 {
		suffix = -suffix
	}
	return CaseID(fmt.Sprintf("OT%04d%02d%04d", year, int(t.Month()), suffix))
}
