package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "chirp/pkg/domain-errors"
)

var codec = NewCodec("test-signing-key")

func Test_Issue_RoundTrip(t *testing.T) {
	userID := uuid.NewString()

	token, err := codec.Issue(userID, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, subject)
}

func Test_Issue_DefaultTTLRoundTrip(t *testing.T) {
	userID := uuid.NewString()

	token, err := codec.Issue(userID, DefaultTTL)
	require.NoError(t, err)

	subject, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, subject)
}

func Test_Verify_MalformedToken(t *testing.T) {
	_, err := codec.Verify("not-a-token")
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_Verify_ExpiredToken(t *testing.T) {
	token, err := codec.Issue(uuid.NewString(), -time.Hour)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
}

func Test_Verify_WrongSecret(t *testing.T) {
	other := NewCodec("a-different-signing-key")

	token, err := other.Issue(uuid.NewString(), time.Hour)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Verify_EmptySubjectRejected(t *testing.T) {
	token, err := codec.Issue("", time.Hour)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}
