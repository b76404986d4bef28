package failure

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	testCases := []struct {
		err      error
		expected Kind
	}{
		{err: New(KindInvalidToken, "bad padding"), expected: KindInvalidToken},
		{err: fmt.Errorf("chapel: %w", New(KindExpiredSession, "empty iframe")), expected: KindExpiredSession},
		{err: WithKind(KindNetworkError, "get login page", io.EOF), expected: KindNetworkError},
		{err: io.ErrUnexpectedEOF, expected: KindUnexpectedResponse},
		{err: Wrap(io.EOF), expected: KindUnexpectedResponse},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, KindOf(test.err), test.err.Error())
	}
}

func TestSentinels(t *testing.T) {
	err := fmt.Errorf("homework: %w", New(KindClassDoesNotExist, "bad course code"))
	require.ErrorIs(t, err, ErrClassDoesNotExist)
	require.False(t, errors.Is(err, ErrStudentNotInClass))

	wrapped := WithKind(KindNetworkError, "fetch", io.EOF)
	require.ErrorIs(t, wrapped, ErrNetwork)
	require.ErrorIs(t, wrapped, io.EOF)
}

func TestWithKindKeepsExistingTag(t *testing.T) {
	inner := New(KindInvalidCredentials, "login rejected")
	err := WithKind(KindNetworkError, "login", fmt.Errorf("post: %w", inner))
	require.Equal(t, KindInvalidCredentials, KindOf(err))
	require.Nil(t, WithKind(KindNetworkError, "noop", nil))
}
