package idp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"donorlink/internal/identity"
	"donorlink/internal/simulator"
)

func TestSignInWithRegisteredAccount(t *testing.T) {
	p := New()
	_, err := p.Register("sarah@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, p.SignInWithPassword(context.Background(), "sarah@example.com", "hunter22"))

	session, err := p.GetSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "sarah@example.com", session.User.Email)
	assert.NotEmpty(t, session.AccessToken)

	sub, err := p.VerifyAccessToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, sub)
}

func TestSignInWrongPasswordUsesExactUpstreamMessage(t *testing.T) {
	p := New()
	_, err := p.Register("sarah@example.com", "hunter22")
	require.NoError(t, err)

	err = p.SignInWithPassword(context.Background(), "sarah@example.com", "nope")
	require.Error(t, err)
	assert.Equal(t, "Invalid login credentials", err.Error())
	assert.Equal(t, identity.KindInvalidCredentials, identity.Classify(err))
}

func TestSignInUnknownAccount(t *testing.T) {
	p := New()
	err := p.SignInWithPassword(context.Background(), "ghost@example.com", "whatever")
	require.Error(t, err)
	assert.Equal(t, "Invalid login credentials", err.Error())
}

func TestSignInUnconfirmedEmail(t *testing.T) {
	p := New()
	require.NoError(t, p.SignUp(context.Background(), "new@example.com", "hunter22", "http://localhost"))

	err := p.SignInWithPassword(context.Background(), "new@example.com", "hunter22")
	require.Error(t, err)
	assert.Equal(t, "Email not confirmed", err.Error())
	assert.Equal(t, identity.KindEmailNotConfirmed, identity.Classify(err))

	require.NoError(t, p.ConfirmEmail("new@example.com"))
	assert.NoError(t, p.SignInWithPassword(context.Background(), "new@example.com", "hunter22"))
}

func TestSignUpWeakPassword(t *testing.T) {
	p := New()
	err := p.SignUp(context.Background(), "new@example.com", "abc", "http://localhost")
	require.Error(t, err)
	assert.Equal(t, "Password should be at least 6 characters", err.Error())
	assert.Equal(t, identity.KindWeakPassword, identity.Classify(err))
}

func TestSignUpDuplicate(t *testing.T) {
	p := New()
	require.NoError(t, p.SignUp(context.Background(), "new@example.com", "hunter22", "http://localhost"))

	err := p.SignUp(context.Background(), "New@Example.com", "hunter22", "http://localhost")
	require.Error(t, err)
	assert.Equal(t, "User already registered", err.Error())
}

func TestSignUpRecordsConfirmationMail(t *testing.T) {
	p := New()
	require.NoError(t, p.SignUp(context.Background(), "new@example.com", "hunter22", "http://localhost/welcome"))

	outbox := p.Outbox()
	require.Len(t, outbox, 1)
	assert.Equal(t, "confirmation", outbox[0].Kind)
	assert.Equal(t, "http://localhost/welcome", outbox[0].RedirectTo)
}

func TestSessionChangeNotifications(t *testing.T) {
	p := New()
	_, err := p.Register("sarah@example.com", "hunter22")
	require.NoError(t, err)

	var got []*identity.Session
	unsubscribe := p.OnSessionChange(func(s *identity.Session) {
		got = append(got, s)
	})
	defer unsubscribe()

	require.NoError(t, p.SignInWithPassword(context.Background(), "sarah@example.com", "hunter22"))
	require.NoError(t, p.SignOut(context.Background()))

	require.Len(t, got, 2)
	assert.NotNil(t, got[0])
	assert.Nil(t, got[1])
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	p := New()
	_, err := p.Register("sarah@example.com", "hunter22")
	require.NoError(t, err)

	calls := 0
	unsubscribe := p.OnSessionChange(func(*identity.Session) { calls++ })
	unsubscribe()

	require.NoError(t, p.SignInWithPassword(context.Background(), "sarah@example.com", "hunter22"))
	assert.Zero(t, calls)
}

func TestExpireSessionNotifiesNil(t *testing.T) {
	p := New()
	_, err := p.Register("sarah@example.com", "hunter22")
	require.NoError(t, err)
	require.NoError(t, p.SignInWithPassword(context.Background(), "sarah@example.com", "hunter22"))

	var last *identity.Session = &identity.Session{}
	unsubscribe := p.OnSessionChange(func(s *identity.Session) { last = s })
	defer unsubscribe()

	p.ExpireSession()
	assert.Nil(t, last)

	session, err := p.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestResetPasswordSucceedsForUnknownEmail(t *testing.T) {
	p := New()
	require.NoError(t, p.ResetPasswordForEmail(context.Background(), "ghost@example.com", "http://localhost/reset"))

	outbox := p.Outbox()
	require.Len(t, outbox, 1)
	assert.Equal(t, "reset", outbox[0].Kind)
}

func TestBackendFailureSurfacesAsFetchError(t *testing.T) {
	backend := simulator.New()
	p := New(WithBackend(backend))

	backend.FailNext(simulator.ErrBackendUnavailable)
	err := p.SignInWithPassword(context.Background(), "sarah@example.com", "hunter22")
	require.Error(t, err)
	assert.Equal(t, identity.KindNetworkError, identity.Classify(err))
}

func TestRateLimit(t *testing.T) {
	p := New(WithRateLimit(rate.Every(time.Hour), 1))
	_ = p.SignInWithPassword(context.Background(), "a@example.com", "x")

	err := p.SignInWithPassword(context.Background(), "a@example.com", "x")
	require.Error(t, err)
	assert.Equal(t, "Request rate limit reached", err.Error())
	assert.Equal(t, identity.KindUnknownError, identity.Classify(err))
}
