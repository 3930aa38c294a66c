package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bookstore-service/internal/models"
	"bookstore-service/internal/store"
	"bookstore-service/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the persistence accounts need
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	EmailTaken(ctx context.Context, email string, exceptUserID int64) (bool, error)
	UpdateUserProfile(ctx context.Context, id int64, username, email string) (*models.User, error)
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
}

// TokenRevoker keeps the ids of logged out tokens until they expire
type TokenRevoker interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthConfig holds token settings
type AuthConfig struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
}

// Claims are the JWT claims issued at login
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller of a request
type Principal struct {
	UserID    int64
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

// IsAdmin reports whether the caller has the ADMIN role
func (p *Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// AuthService handles sign-up, login and bearer tokens
type AuthService struct {
	store   UserStore
	revoker TokenRevoker
	secret  []byte
	ttl     time.Duration
	cost    int
	logger  *zap.Logger
}

// NewAuthService creates a new auth service. revoker may be nil, which disables logout revocation.
func NewAuthService(store UserStore, revoker TokenRevoker, cfg AuthConfig) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		store:   store,
		revoker: revoker,
		secret:  []byte(cfg.Secret),
		ttl:     cfg.TokenTTL,
		cost:    cfg.BcryptCost,
		logger:  util.GetLogger(),
	}
}

// SignupRequest registers a customer account
type SignupRequest struct {
	Username string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest exchanges credentials for a token
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is a signed token and the user it was issued to
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Signup creates a USER account with a bcrypt-hashed password
func (s *AuthService) Signup(ctx context.Context, req *SignupRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Signup")
	defer span.End()

	email := strings.TrimSpace(req.Email)
	username := strings.TrimSpace(req.Username)
	if username == "" || email == "" || req.Password == "" {
		return nil, invalid("please fill all the fields")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Role:     models.RoleUser,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User signed up", zap.Int64("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and issues a token
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Login")
	defer span.End()

	if req.Email == "" || req.Password == "" {
		return nil, invalid("please provide both email and password")
	}

	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, store.ErrNotFound) {
		util.LoginsTotal.WithLabelValues("unknown_user").Inc()
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		util.LoginsTotal.WithLabelValues("bad_password").Inc()
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	util.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info("User logged in", zap.Int64("user_id", user.ID))
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) issueToken(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *AuthService) parseToken(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// Authenticate validates a bearer token and resolves the caller. The role is
// read from the user record, not the token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Authenticate")
	defer span.End()

	claims, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}

	if s.revoker != nil && claims.ID != "" {
		revoked, err := s.revoker.IsTokenRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return &Principal{
		UserID:    user.ID,
		Role:      user.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes token until it would have expired. Invalid or absent tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	ctx, span := util.StartSpan(ctx, "AuthService.Logout")
	defer span.End()

	if token == "" || s.revoker == nil {
		return nil
	}

	claims, err := s.parseToken(token)
	if err != nil || claims.ID == "" {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.RevokeToken(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	s.logger.Info("Token revoked", zap.Int64("user_id", claims.UserID), zap.String("token_id", claims.ID))
	return nil
}
