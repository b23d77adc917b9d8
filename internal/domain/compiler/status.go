package compiler

// Status is the outcome class of one descriptor in one compile pass.
type Status string

const (
	// StatusSuccess means the call was applicable and executed.
	StatusSuccess Status = "success"
	// StatusFail means the call was applicable but some preconditions were
	// violated. Valid sub-items may still have executed.
	StatusFail Status = "fail"
	// StatusIgnore means the call was not applicable. It is not an error.
	StatusIgnore Status = "ignore"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsFailure returns true for StatusFail.
func (s Status) IsFailure() bool {
	return s == StatusFail
}

// Executed returns true if the descriptor issued at least its applicable calls.
func (s Status) Executed() bool {
	switch s {
	case StatusSuccess, StatusFail:
		return true
	case StatusIgnore:
		return false
	}
	return false
}
