package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"bookstore-service/internal/models"
	"bookstore-service/internal/store/storetest"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type memRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newMemRevoker() *memRevoker {
	return &memRevoker{revoked: make(map[string]time.Duration)}
}

func (r *memRevoker) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[tokenID] = ttl
	return nil
}

func (r *memRevoker) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[tokenID]
	return ok, nil
}

type AuthServiceSuite struct {
	suite.Suite
	ctx     context.Context
	mem     *storetest.Memory
	revoker *memRevoker
	auth    *AuthService
	users   *UserService
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.mem = storetest.New()
	s.revoker = newMemRevoker()
	s.auth = NewAuthService(s.mem, s.revoker, AuthConfig{
		Secret:     testSecret,
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
	s.users = NewUserService(s.mem, bcrypt.MinCost)
}

func (s *AuthServiceSuite) signup(name, email, password string) *models.User {
	user, err := s.auth.Signup(s.ctx, &SignupRequest{Username: name, Email: email, Password: password})
	s.Require().NoError(err)
	return user
}

func (s *AuthServiceSuite) login(email, password string) *LoginResult {
	res, err := s.auth.Login(s.ctx, &LoginRequest{Email: email, Password: password})
	s.Require().NoError(err)
	return res
}

func (s *AuthServiceSuite) TestSignup() {
	user := s.signup("reader", "reader@example.com", "hunter2")
	s.Equal(models.RoleUser, user.Role)
	s.NotEqual("hunter2", user.Password)

	_, err := s.auth.Signup(s.ctx, &SignupRequest{Username: "again", Email: "reader@example.com", Password: "x"})
	s.ErrorIs(err, ErrEmailTaken)

	_, err = s.auth.Signup(s.ctx, &SignupRequest{Username: " ", Email: "a@example.com", Password: "x"})
	var verr *ValidationError
	s.ErrorAs(err, &verr)
}

func (s *AuthServiceSuite) TestLogin() {
	user := s.signup("reader", "reader@example.com", "hunter2")

	res := s.login("reader@example.com", "hunter2")
	s.NotEmpty(res.Token)
	s.Equal(user.ID, res.User.ID)
	s.WithinDuration(time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)

	_, err := s.auth.Login(s.ctx, &LoginRequest{Email: "reader@example.com", Password: "wrong"})
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.auth.Login(s.ctx, &LoginRequest{Email: "nobody@example.com", Password: "hunter2"})
	s.ErrorIs(err, ErrUserNotFound)

	_, err = s.auth.Login(s.ctx, &LoginRequest{Email: "reader@example.com"})
	var verr *ValidationError
	s.ErrorAs(err, &verr)
}

func (s *AuthServiceSuite) TestAuthenticateReadsRoleFromUserRecord() {
	admin := s.mem.AddUser(models.User{Username: "root", Email: "root@example.com", Role: models.RoleAdmin})
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	s.Require().NoError(err)
	s.Require().NoError(s.mem.UpdateUserPassword(s.ctx, admin, string(hash)))

	res := s.login("root@example.com", "pw")
	principal, err := s.auth.Authenticate(s.ctx, res.Token)
	s.Require().NoError(err)
	s.Equal(admin, principal.UserID)
	s.True(principal.IsAdmin())
	s.NotEmpty(principal.TokenID)
}

func (s *AuthServiceSuite) TestAuthenticateRejectsBadTokens() {
	user := s.signup("reader", "reader@example.com", "hunter2")

	_, err := s.auth.Authenticate(s.ctx, "not-a-token")
	s.ErrorIs(err, ErrInvalidToken)

	expired := s.signToken(testSecret, user.ID, time.Now().Add(-time.Minute))
	_, err = s.auth.Authenticate(s.ctx, expired)
	s.ErrorIs(err, ErrInvalidToken)

	forged := s.signToken("another-secret", user.ID, time.Now().Add(time.Hour))
	_, err = s.auth.Authenticate(s.ctx, forged)
	s.ErrorIs(err, ErrInvalidToken)

	orphan := s.signToken(testSecret, 999, time.Now().Add(time.Hour))
	_, err = s.auth.Authenticate(s.ctx, orphan)
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *AuthServiceSuite) TestLogoutRevokesToken() {
	s.signup("reader", "reader@example.com", "hunter2")
	res := s.login("reader@example.com", "hunter2")

	s.Require().NoError(s.auth.Logout(s.ctx, res.Token))
	s.Len(s.revoker.revoked, 1)
	for _, ttl := range s.revoker.revoked {
		s.True(ttl > 0 && ttl <= time.Hour)
	}

	_, err := s.auth.Authenticate(s.ctx, res.Token)
	s.ErrorIs(err, ErrTokenRevoked)

	// a fresh login is unaffected
	again := s.login("reader@example.com", "hunter2")
	_, err = s.auth.Authenticate(s.ctx, again.Token)
	s.NoError(err)

	s.NoError(s.auth.Logout(s.ctx, ""))
	s.NoError(s.auth.Logout(s.ctx, "garbage"))
}

func (s *AuthServiceSuite) TestProfile() {
	alice := s.signup("alice", "alice@example.com", "pw")
	s.signup("bob", "bob@example.com", "pw")

	profile, err := s.users.GetProfile(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal("alice", profile.Username)

	_, err = s.users.GetProfile(s.ctx, 999)
	s.ErrorIs(err, ErrUserNotFound)

	updated, err := s.users.UpdateProfile(s.ctx, alice.ID, &UpdateProfileRequest{Username: " alicia ", Email: "alice@example.com"})
	s.Require().NoError(err)
	s.Equal("alicia", updated.Username)

	_, err = s.users.UpdateProfile(s.ctx, alice.ID, &UpdateProfileRequest{Username: "alicia", Email: "bob@example.com"})
	s.ErrorIs(err, ErrEmailTaken)

	_, err = s.users.UpdateProfile(s.ctx, alice.ID, &UpdateProfileRequest{Username: "", Email: "x@example.com"})
	var verr *ValidationError
	s.ErrorAs(err, &verr)
}

func (s *AuthServiceSuite) TestChangePassword() {
	user := s.signup("reader", "reader@example.com", "old-pw")

	err := s.users.ChangePassword(s.ctx, user.ID, &ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "new-pw"})
	s.ErrorIs(err, ErrWrongPassword)

	s.Require().NoError(s.users.ChangePassword(s.ctx, user.ID, &ChangePasswordRequest{CurrentPassword: "old-pw", NewPassword: "new-pw"}))

	_, err = s.auth.Login(s.ctx, &LoginRequest{Email: "reader@example.com", Password: "old-pw"})
	s.ErrorIs(err, ErrInvalidCredentials)
	s.login("reader@example.com", "new-pw")

	err = s.users.ChangePassword(s.ctx, user.ID, &ChangePasswordRequest{CurrentPassword: "new-pw"})
	var verr *ValidationError
	s.ErrorAs(err, &verr)
}

func (s *AuthServiceSuite) signToken(secret string, userID int64, expiresAt time.Time) string {
	claims := &Claims{
		UserID: userID,
		Role:   models.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "test-" + strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	s.Require().NoError(err)
	return token
}
