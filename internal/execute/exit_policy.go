package execute

// ExitPolicy decides whether a process termination code counts as success.
type ExitPolicy interface {
	Accepts(exitValue int) bool
}

type singleExitValuePolicy struct {
	acceptedExitValue int
}

func (policy singleExitValuePolicy) Accepts(exitValue int) bool {
	return exitValue == policy.acceptedExitValue
}

type exitValueSetPolicy struct {
	acceptedExitValues map[int]struct{}
}

func (policy exitValueSetPolicy) Accepts(exitValue int) bool {
	_, accepted := policy.acceptedExitValues[exitValue]
	return accepted
}

type anyExitValuePolicy struct{}

func (policy anyExitValuePolicy) Accepts(int) bool {
	return true
}

// ExitValue returns a policy accepting exactly one exit value.
func ExitValue(acceptedExitValue int) ExitPolicy {
	return singleExitValuePolicy{acceptedExitValue: acceptedExitValue}
}

// ExitValues returns a policy accepting any of the provided exit values.
func ExitValues(acceptedExitValues ...int) ExitPolicy {
	exitValueSet := make(map[int]struct{}, len(acceptedExitValues))
	for _, acceptedExitValue := range acceptedExitValues {
		exitValueSet[acceptedExitValue] = struct{}{}
	}
	return exitValueSetPolicy{acceptedExitValues: exitValueSet}
}

// AnyExitValue returns the wildcard policy accepting every exit value.
func AnyExitValue() ExitPolicy {
	return anyExitValuePolicy{}
}

// DefaultExitPolicy accepts only a zero exit value.
func DefaultExitPolicy() ExitPolicy {
	return ExitValue(0)
}
