package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"spacegame-combat/internal/model"
	"spacegame-combat/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayers struct {
	mu      sync.Mutex
	byName  map[string]*model.Player
	logins  int
	counter int
}

func newFakePlayers() *fakePlayers {
	return &fakePlayers{byName: make(map[string]*model.Player)}
}

func (f *fakePlayers) Create(_ context.Context, username, email, hash string) (*model.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byName[username]; ok {
		return nil, repository.ErrDuplicate
	}
	f.counter++
	p := &model.Player{ID: "id-" + username, Username: username, Email: email, PasswordHash: hash, Level: 1}
	f.byName[username] = p
	return p, nil
}

func (f *fakePlayers) GetByUsername(_ context.Context, username string) (*model.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byName[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakePlayers) UpdateLoginTime(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	return nil
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := NewAuthService(newFakePlayers(), "secret")
	ctx := context.Background()

	tests := []struct {
		name string
		req  model.RegisterRequest
		want error
	}{
		{"short username", model.RegisterRequest{Username: "ab", Password: "hunter22"}, ErrInvalidUsername},
		{"padded short username", model.RegisterRequest{Username: "  ab  ", Password: "hunter22"}, ErrInvalidUsername},
		{"weak password", model.RegisterRequest{Username: "ace", Password: "123"}, ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := svc.Register(ctx, &req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	players := newFakePlayers()
	svc := NewAuthService(players, "secret")
	ctx := context.Background()

	resp, err := svc.Register(ctx, &model.RegisterRequest{Username: " ace ", Email: "ACE@Example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "ace", resp.Player.Username)
	assert.Equal(t, "ace@example.com", resp.Player.Email)
	assert.NotEmpty(t, resp.AccessToken)

	id, name, err := svc.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "id-ace", id)
	assert.Equal(t, "ace", name)

	_, err = svc.Register(ctx, &model.RegisterRequest{Username: "ace", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = svc.Login(ctx, &model.LoginRequest{Username: "ace", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, &model.LoginRequest{Username: "ghost", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := svc.Login(ctx, &model.LoginRequest{Username: "ace", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)
	assert.Equal(t, 2, players.logins)

	players.byName["ace"].IsBanned = true
	_, err = svc.Login(ctx, &model.LoginRequest{Username: "ace", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrBanned)
}

func TestParseAccessToken_Rejects(t *testing.T) {
	svc := NewAuthService(newFakePlayers(), "secret")
	svc.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expired, _, err := svc.signAccessToken("p1", "ace")
	require.NoError(t, err)

	other := NewAuthService(newFakePlayers(), "other-secret")
	foreign, _, err := other.signAccessToken("p1", "ace")
	require.NoError(t, err)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": "ace",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"expired":      expired,
		"wrong secret": foreign,
		"missing sub":  noSub,
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseAccessToken([]byte("secret"), token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
