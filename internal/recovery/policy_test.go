package recovery_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/runcmd/internal/recovery"
)

const (
	testOperationLabelConstant = "close stream"
)

func TestPolicyHandle(testInstance *testing.T) {
	handledFailure := errors.New("stream already closed")

	testCases := []struct {
		name             string
		policy           recovery.Policy
		failure          error
		expectPropagated bool
		expectedLogCount int
	}{
		{
			name:    "lenient_swallows",
			policy:  recovery.LenientPolicy(),
			failure: handledFailure,
		},
		{
			name:             "strict_propagates",
			policy:           recovery.Policy{Strict: true},
			failure:          handledFailure,
			expectPropagated: true,
		},
		{
			name:             "trace_logs_detail",
			policy:           recovery.Policy{Trace: true},
			failure:          handledFailure,
			expectedLogCount: 1,
		},
		{
			name:             "strict_trace_logs_and_propagates",
			policy:           recovery.Policy{Strict: true, Trace: true},
			failure:          handledFailure,
			expectPropagated: true,
			expectedLogCount: 1,
		},
		{
			name:   "nil_failure_noop",
			policy: recovery.Policy{Strict: true, Trace: true},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zap.DebugLevel)
			logger := zap.New(observerCore)

			handledResult := testCase.policy.Handle(logger, testOperationLabelConstant, testCase.failure)

			if testCase.expectPropagated {
				require.ErrorIs(testInstance, handledResult, handledFailure)
			} else {
				require.NoError(testInstance, handledResult)
			}

			require.Len(testInstance, observedLogs.All(), testCase.expectedLogCount)
		})
	}
}

func TestPolicyHandleWithoutLogger(testInstance *testing.T) {
	policy := recovery.Policy{Trace: true}
	require.NoError(testInstance, policy.Handle(nil, testOperationLabelConstant, errors.New("ignored")))
}
