package auth

import (
	"context"
	"testing"
	"time"

	"authapp/internal/domain/model"
	"authapp/internal/repository"
	"authapp/internal/token"
	"authapp/internal/usecase"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// =====================
// Mock: UserRepository
// =====================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// =====================
// Mock: SessionRepository
// =====================

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *model.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) FindByID(ctx context.Context, sessionID string) (*model.Session, error) {
	args := m.Called(ctx, sessionID)
	s, _ := args.Get(0).(*model.Session)
	return s, args.Error(1)
}

func (m *MockSessionRepository) FindByAccessToken(ctx context.Context, accessToken string) (*model.Session, error) {
	args := m.Called(ctx, accessToken)
	s, _ := args.Get(0).(*model.Session)
	return s, args.Error(1)
}

func (m *MockSessionRepository) FindByRefreshToken(ctx context.Context, refreshToken string) (*model.Session, error) {
	args := m.Called(ctx, refreshToken)
	s, _ := args.Get(0).(*model.Session)
	return s, args.Error(1)
}

func (m *MockSessionRepository) DeactivateAllByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockSessionRepository) Deactivate(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionRepository) Rotate(ctx context.Context, sessionID string, oldRefreshToken string, p repository.SessionRotateParams) error {
	args := m.Called(ctx, sessionID, oldRefreshToken, p)
	return args.Error(0)
}

func (m *MockSessionRepository) TouchActivity(ctx context.Context, sessionID string, at time.Time) error {
	args := m.Called(ctx, sessionID, at)
	return args.Error(0)
}

func (m *MockSessionRepository) ListActiveByUserID(ctx context.Context, userID string, now time.Time) ([]model.Session, error) {
	args := m.Called(ctx, userID, now)
	list, _ := args.Get(0).([]model.Session)
	return list, args.Error(1)
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// =====================
// Mock: LoginValidator
// =====================

type MockLoginValidator struct {
	mock.Mock
}

func (m *MockLoginValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

// =====================
// Stub: TransactionManager / IDGenerator / Clock
// =====================

type stubTxManager struct {
	sessions repository.SessionRepository
}

type stubTxRepos struct {
	sessions repository.SessionRepository
}

func (r *stubTxRepos) Sessions() repository.SessionRepository {
	return r.sessions
}

func (m *stubTxManager) WithinTx(ctx context.Context, fn func(r repository.TxRepos) error) error {
	return fn(&stubTxRepos{sessions: m.sessions})
}

type stubIDGenerator struct {
	next string
}

func (g *stubIDGenerator) NewID() string {
	return g.next
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

// =====================
// Helper
// =====================

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	return string(b)
}

// LoginUsecaseは本物のSessionUsecaseごと組む（repoだけモック）
func newLoginFixture(t *testing.T) (*LoginUsecase, *MockUserRepository, *MockSessionRepository, *MockLoginValidator) {
	t.Helper()

	userRepo := new(MockUserRepository)
	sessionRepo := new(MockSessionRepository)
	v := new(MockLoginValidator)
	clock := &testClock{now: testNow}

	tokens := token.NewService("test-secret", clock)
	sessions := usecase.NewSessionUsecase(sessionRepo, userRepo, nil, &stubTxManager{sessions: sessionRepo}, tokens, clock)

	uc := NewLoginUsecase(userRepo, sessions, NewBcryptPasswordVerifier(), v, clock)
	return uc, userRepo, sessionRepo, v
}

func testMeta() usecase.RequestMeta {
	return usecase.NewRequestMeta("203.0.113.10", "", "UA")
}
