package kerbmath

import "errors"

var (
	// ErrInvalidParameterCombination is returned for a wrong number of parameter groups, synonyms specified
	// together or unknown parameter names.
	ErrInvalidParameterCombination = errors.New("invalid parameter combination")
	// ErrOutOfDomainValue is returned when a value is outside of its mathematical domain.
	ErrOutOfDomainValue = errors.New("value out of domain")
	// ErrUnsupportedCombination is returned for parameter pairs which cannot be resolved.
	ErrUnsupportedCombination = errors.New("unsupported combination")
	// ErrManeuverPrecondition is returned when a maneuver cannot be performed from the current orbit.
	ErrManeuverPrecondition = errors.New("maneuver precondition")
	// ErrSimulationPrecondition is returned when an orbit cannot be used for an entry simulation.
	ErrSimulationPrecondition = errors.New("simulation precondition")
)

// errorKind returns a short label of the sentinel wrapped by err, used as a metric label.
func errorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrInvalidParameterCombination):
		return "invalid_combination"
	case errors.Is(err, ErrOutOfDomainValue):
		return "out_of_domain"
	case errors.Is(err, ErrUnsupportedCombination):
		return "unsupported"
	case errors.Is(err, ErrManeuverPrecondition):
		return "maneuver"
	case errors.Is(err, ErrSimulationPrecondition):
		return "simulation"
	default:
		return "other"
	}
}
