package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*Keycloak, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "Aegis-Intel", "aegis-console", "raven", "secret"), srv
}

func TestLogin_PasswordGrant(t *testing.T) {
	var gotGrant, gotUser string
	kc, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/realms/Aegis-Intel/protocol/openid-connect/token", r.URL.Path)
		gotGrant = r.Form.Get("grant_type")
		gotUser = r.Form.Get("username")
		w.Write([]byte(`{"access_token":"tok-1","refresh_token":"ref-1","expires_in":300}`))
	})

	cred, err := kc.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "password", gotGrant)
	assert.Equal(t, "raven", gotUser)
	assert.Equal(t, "tok-1", cred.AccessToken)
	assert.WithinDuration(t, time.Now().Add(300*time.Second), cred.ExpiresAt, 5*time.Second)
}

func TestLogin_ProviderRejection(t *testing.T) {
	kc, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	})

	_, err := kc.Login(context.Background())
	assert.Error(t, err)
}

func TestRefresh_SkipsWhenFarFromExpiry(t *testing.T) {
	calls := 0
	kc, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"access_token":"tok-1","refresh_token":"ref-1","expires_in":600}`))
	})

	_, err := kc.Login(context.Background())
	require.NoError(t, err)

	cred, renewed, err := kc.Refresh(context.Background(), 30*time.Second)
	require.NoError(t, err)
	assert.False(t, renewed)
	assert.Equal(t, "tok-1", cred.AccessToken)
	assert.Equal(t, 1, calls, "no token request when credential is still valid")
}

func TestRefresh_RenewsNearExpiry(t *testing.T) {
	var gotGrant, gotRefresh string
	kc, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("grant_type") == "refresh_token" {
			gotGrant = r.Form.Get("grant_type")
			gotRefresh = r.Form.Get("refresh_token")
			w.Write([]byte(`{"access_token":"tok-2","refresh_token":"ref-2","expires_in":300}`))
			return
		}
		w.Write([]byte(`{"access_token":"tok-1","refresh_token":"ref-1","expires_in":10}`))
	})

	_, err := kc.Login(context.Background())
	require.NoError(t, err)

	cred, renewed, err := kc.Refresh(context.Background(), 70*time.Second)
	require.NoError(t, err)
	assert.True(t, renewed)
	assert.Equal(t, "tok-2", cred.AccessToken)
	assert.Equal(t, "refresh_token", gotGrant)
	assert.Equal(t, "ref-1", gotRefresh)
}

func TestRefresh_FailsWhenSessionNotRenewable(t *testing.T) {
	kc, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("grant_type") == "refresh_token" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant","error_description":"Session not active"}`))
			return
		}
		w.Write([]byte(`{"access_token":"tok-1","refresh_token":"ref-1","expires_in":1}`))
	})

	_, err := kc.Login(context.Background())
	require.NoError(t, err)

	_, _, err = kc.Refresh(context.Background(), 70*time.Second)
	assert.Error(t, err)
}

func TestRefresh_WithoutLogin(t *testing.T) {
	kc, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {})

	_, _, err := kc.Refresh(context.Background(), time.Minute)
	assert.Error(t, err)
}

func TestLogout_InvalidatesProviderSession(t *testing.T) {
	var loggedOut bool
	kc, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/realms/Aegis-Intel/protocol/openid-connect/logout" {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "ref-1", r.Form.Get("refresh_token"))
			loggedOut = true
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Write([]byte(`{"access_token":"tok-1","refresh_token":"ref-1","expires_in":300}`))
	})

	_, err := kc.Login(context.Background())
	require.NoError(t, err)
	require.NoError(t, kc.Logout(context.Background()))
	assert.True(t, loggedOut)

	// The credential is gone: a later refresh cannot succeed.
	_, _, err = kc.Refresh(context.Background(), time.Minute)
	assert.Error(t, err)
}
