package wizard

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrContractViolation is wrapped in a ServiceError when strict contract
// checking rejects an upstream payload.
var ErrContractViolation = eris.New("wizard: upstream contract violation")

// ServiceError is a failed upstream call. The machine is left in the phase
// that issued the call with its prior state intact.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("wizard: %s failed: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Outcome is the effect an operation had on the machine.
type Outcome int

const (
	// OutcomeApplied means the operation changed state.
	OutcomeApplied Outcome = iota
	// OutcomeRejected means a guard refused the operation; state is unchanged.
	OutcomeRejected
	// OutcomeStale means an upstream response arrived after the machine
	// left the state that requested it and was discarded.
	OutcomeStale
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeRejected:
		return "rejected"
	case OutcomeStale:
		return "stale"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
