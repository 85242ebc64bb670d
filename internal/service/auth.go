package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"spacegame-combat/internal/model"
	"spacegame-combat/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("username or email already exists")
	ErrBanned             = errors.New("account is banned")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidUsername    = errors.New("username must be 3-32 characters")
)

const accessTokenDuration = 24 * time.Hour

// PlayerStore is the subset of the player repository auth needs.
type PlayerStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (*model.Player, error)
	GetByUsername(ctx context.Context, username string) (*model.Player, error)
	UpdateLoginTime(ctx context.Context, id string) error
}

type AuthService struct {
	players   PlayerStore
	jwtSecret []byte
	now       func() time.Time
}

func NewAuthService(players PlayerStore, jwtSecret string) *AuthService {
	return &AuthService{
		players:   players,
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if len(req.Username) < 3 || len(req.Username) > 32 {
		return nil, ErrInvalidUsername
	}
	if len(req.Password) < 6 {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	player, err := s.players.Create(ctx, req.Username, req.Email, string(hash))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create player: %w", err)
	}

	return s.issue(ctx, player)
}

func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	player, err := s.players.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if player.IsBanned {
		return nil, ErrBanned
	}

	if err := bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, player)
}

func (s *AuthService) issue(ctx context.Context, player *model.Player) (*model.AuthResponse, error) {
	token, expires, err := s.signAccessToken(player.ID, player.Username)
	if err != nil {
		return nil, err
	}
	_ = s.players.UpdateLoginTime(ctx, player.ID)
	return &model.AuthResponse{AccessToken: token, ExpiresAt: expires, Player: player}, nil
}

// ValidateAccessToken returns the player id and username carried by a token.
func (s *AuthService) ValidateAccessToken(tokenString string) (string, string, error) {
	return ParseAccessToken(s.jwtSecret, tokenString)
}

// ParseAccessToken checks an HS256 access token signed with secret.
func ParseAccessToken(secret []byte, tokenString string) (string, string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", ErrInvalidToken
	}

	playerID, _ := claims["sub"].(string)
	username, _ := claims["username"].(string)
	if playerID == "" {
		return "", "", ErrInvalidToken
	}

	return playerID, username, nil
}

func (s *AuthService) signAccessToken(playerID, username string) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(accessTokenDuration)
	claims := jwt.MapClaims{
		"sub":      playerID,
		"username": username,
		"iat":      now.Unix(),
		"exp":      expires.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expires, nil
}
