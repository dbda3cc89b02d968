// Package recovery defines the leniency policy applied to internal
// best-effort operations such as releasing process resources. The policy is
// injected explicitly instead of living in ambient global state so individual
// tests and executions can apply different settings without interference.
package recovery

import "go.uber.org/zap"

const (
	bestEffortFailureMessageConstant = "best-effort operation failed"
	operationLogFieldConstant        = "operation"
)

// Policy governs how internally caught failures of best-effort operations are
// treated. The zero value is the lenient default: failures are swallowed.
type Policy struct {
	// Strict propagates internally caught failures to the caller instead of swallowing them.
	Strict bool
	// Trace logs full diagnostic detail for every handled failure regardless of strictness.
	Trace bool
}

// LenientPolicy returns the default policy that swallows best-effort failures silently.
func LenientPolicy() Policy {
	return Policy{}
}

// Handle applies the policy to a failure from the named best-effort operation.
// It returns the failure when the policy is strict and nil otherwise. The
// policy never governs primary execution results, only auxiliary cleanup.
func (policy Policy) Handle(logger *zap.Logger, operationLabel string, failure error) error {
	if failure == nil {
		return nil
	}

	if policy.Trace && logger != nil {
		logger.Error(
			bestEffortFailureMessageConstant,
			zap.String(operationLogFieldConstant, operationLabel),
			zap.Error(failure),
		)
	}

	if policy.Strict {
		return failure
	}

	return nil
}
