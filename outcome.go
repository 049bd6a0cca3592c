package easyorm

import "errors"

// Outcome is the result code of a mutating operation.
type Outcome int

const (
	Success Outcome = iota
	Fail
	TableNotFound
	CriteriaDataTypeError
	TableAlreadyExists
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "Success"
	case Fail:
		return "Fail"
	case TableNotFound:
		return "TableNotFound"
	case CriteriaDataTypeError:
		return "CriteriaDataTypeError"
	case TableAlreadyExists:
		return "TableAlreadyExists"
	default:
		return "Unknown"
	}
}

// OutcomeOf maps an error returned by this package onto an Outcome.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return Success
	}
	var derr *DriverError
	if errors.As(err, &derr) {
		return derr.Outcome
	}
	if errors.Is(err, ErrCriteriaDataType) {
		return CriteriaDataTypeError
	}
	return Fail
}
