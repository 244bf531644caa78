package retry

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestVerifySettings(t *testing.T) {
	for _, tc := range []struct {
		desc          string
		settings      Settings
		expectedError string
	}{
		{
			desc:     "default settings",
			settings: DefaultSettings(),
		},
		{
			desc:          "initial backoff bad settings",
			settings:      Settings{},
			expectedError: "initial backoff must be set to >= 0, got 0s",
		},
		{
			desc:          "multiplier bad",
			settings:      Settings{InitialBackoff: time.Second},
			expectedError: "multiplier must be >= 1, got 0",
		},
		{
			desc:          "max backoff bad",
			settings:      Settings{InitialBackoff: time.Second, Multiplier: 5, MaxBackoff: time.Millisecond},
			expectedError: "initial backoff (1s) must be less than max backoff (1ms)",
		},
		{
			desc:     "everything valid",
			settings: Settings{InitialBackoff: time.Second, Multiplier: 5, MaxBackoff: time.Hour},
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			err := tc.settings.Verify()
			if tc.expectedError != "" {
				require.Error(t, err)
				require.EqualError(t, err, tc.expectedError)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRetry(t *testing.T) {
	startTime := time.Date(2020, 01, 01, 0, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		desc             string
		settings         Settings
		expectedNext     []time.Time
		expectedContinue bool
	}{
		{
			desc: "infinite retries",
			settings: Settings{
				InitialBackoff: time.Second,
				Multiplier:     2,
			},
			expectedNext: []time.Time{
				startTime.Add(time.Second),
				startTime.Add(time.Second * 3),
				startTime.Add(time.Second * 7),
				startTime.Add(time.Second * 15),
			},
			expectedContinue: true,
		},
		{
			desc: "max backoff",
			settings: Settings{
				InitialBackoff: time.Second,
				Multiplier:     2,
				MaxBackoff:     time.Second * 2,
			},
			expectedNext: []time.Time{
				startTime.Add(time.Second),
				startTime.Add(time.Second * 3),
				startTime.Add(time.Second * 5),
				startTime.Add(time.Second * 7),
			},
			expectedContinue: true,
		},
		{
			desc: "max retries",
			settings: Settings{
				InitialBackoff: time.Second,
				Multiplier:     2,
				MaxRetries:     3,
			},
			expectedNext: []time.Time{
				startTime.Add(time.Second),
				startTime.Add(time.Second * 3),
				startTime.Add(time.Second * 7),
			},
			expectedContinue: false,
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			r := mustRetryWithTime(t, startTime, tc.settings)
			for i, expectedNext := range tc.expectedNext {
				require.Equal(t, i+1, r.Iteration)
				require.Equal(t, r.NextRetry, expectedNext)
				if i < len(tc.expectedNext)-1 {
					require.True(t, r.ShouldContinue())
				}
				r.Next()
			}
			require.Equal(t, tc.expectedContinue, r.ShouldContinue())
		})
	}
}

func mustRetryWithTime(t *testing.T, ti time.Time, settings Settings) *Retry {
	ret, err := NewRetryWithTime(ti, settings)
	require.NoError(t, err)
	return ret
}

func TestDo(t *testing.T) {
	errRetryable := errors.New("retryable")
	errFatal := errors.New("fatal")
	isRetryable := func(err error) bool { return errors.Is(err, errRetryable) }
	settings := Settings{InitialBackoff: time.Millisecond, Multiplier: 1}

	for _, tc := range []struct {
		desc          string
		maxRetries    int
		errs          []error
		expectedCalls int
		expectedErr   error
	}{
		{desc: "success", maxRetries: 3, errs: nil, expectedCalls: 1},
		{desc: "eventual success", maxRetries: 3, errs: []error{errRetryable, errRetryable}, expectedCalls: 3},
		{desc: "not retryable", maxRetries: 3, errs: []error{errFatal}, expectedCalls: 1, expectedErr: errFatal},
		{desc: "exhausted", maxRetries: 2, errs: []error{errRetryable, errRetryable, errRetryable}, expectedCalls: 2, expectedErr: errRetryable},
		{desc: "single attempt", maxRetries: 1, errs: []error{errRetryable}, expectedCalls: 1, expectedErr: errRetryable},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			s := settings
			s.MaxRetries = tc.maxRetries
			calls := 0
			err := Do(context.Background(), s, isRetryable, func(ctx context.Context) error {
				calls++
				if calls <= len(tc.errs) {
					return tc.errs[calls-1]
				}
				return nil
			})
			require.Equal(t, tc.expectedCalls, calls)
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
			} else {
				require.NoError(t, err)
			}
		})
	}

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := Do(ctx, Settings{InitialBackoff: time.Hour, Multiplier: 1}, isRetryable, func(ctx context.Context) error {
			calls++
			cancel()
			return errRetryable
		})
		require.Equal(t, 1, calls)
		require.ErrorIs(t, err, errRetryable)
	})

	t.Run("invalid settings", func(t *testing.T) {
		err := Do(context.Background(), Settings{}, isRetryable, func(ctx context.Context) error {
			t.Fatal("must not be called")
			return nil
		})
		require.EqualError(t, err, "initial backoff must be set to >= 0, got 0s")
	})
}
