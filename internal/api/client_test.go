package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	return c, srv
}

func TestErrorTaxonomy(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "session expired"})
	}))

	_, err := c.AuthStatus(context.Background())
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "session expired", apiErr.Message)
	assert.True(t, IsAuthError(err))
}

func TestIsAuthErrorIgnoresOtherFailures(t *testing.T) {
	assert.False(t, IsAuthError(errors.New("dial tcp: refused")))
	assert.False(t, IsAuthError(&Error{Status: http.StatusInternalServerError}))
	assert.True(t, IsAuthError(&Error{Status: http.StatusForbidden}))
}

func TestRequestsCarryRequestID(t *testing.T) {
	var gotID atomic.Value
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID.Store(r.Header.Get("X-Request-Id"))
		json.NewEncoder(w).Encode(AuthStatus{})
	}))

	_, err := c.AuthStatus(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, gotID.Load())
}

func TestLoginStoresToken(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "marie", body["username"])
		json.NewEncoder(w).Encode(AuthStatus{Authenticated: true, Token: "tok-1"})
	}))

	status, err := c.Login(context.Background(), "marie", "secret")
	require.NoError(t, err)
	assert.True(t, status.Authenticated)
	assert.Equal(t, "tok-1", c.Token())
}

func TestBootstrapRetriesTransportFailures(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			// Hold past the per-attempt deadline to simulate a hang.
			time.Sleep(200 * time.Millisecond)
			return
		}
		json.NewEncoder(w).Encode(AuthStatus{Authenticated: true})
	}))

	status, err := c.bootstrap(context.Background(), 3, 50*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, status.Authenticated)
	assert.Equal(t, int32(3), calls.Load())
}

func TestBootstrapGivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(200 * time.Millisecond)
	}))

	_, err := c.bootstrap(context.Background(), 3, 50*time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestBootstrapDoesNotRetryAuthErrors(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))

	status, err := c.bootstrap(context.Background(), 3, time.Second)
	require.NoError(t, err, "a definitive 401 is an answer, not an outage")
	assert.False(t, status.Authenticated)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRegionsAcceptsBareArray(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"name":"Fredericton"},{"id":2,"name":"Moncton"}]`))
	}))

	regions, err := c.Regions(context.Background())
	require.NoError(t, err)
	require.Len(t, regions, 2)
	assert.Equal(t, "Fredericton", regions[0].Name)
}

func TestRegionsAcceptsWrappedObject(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"regions":[{"id":1,"name":"Fredericton"}]}`))
	}))

	regions, err := c.Regions(context.Background())
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, 1, regions[0].ID)
}

func TestRegionsRejectsUnknownShape(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	}))

	_, err := c.Regions(context.Background())
	require.Error(t, err)
}

func TestTranslateDecodesContent(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/messages/11/translate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		json.NewEncoder(w).Encode(map[string]string{"translatedContent": "hello"})
	}))

	out, err := c.Translate(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestWebSocketURLDerivation(t *testing.T) {
	c, err := NewClient("https://bilingua.example")
	require.NoError(t, err)
	assert.Equal(t, "wss://bilingua.example/ws", c.WebSocketURL())

	c, err = NewClient("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws", c.WebSocketURL())
}
