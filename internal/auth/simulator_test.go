package auth

import (
	"context"
	"testing"
	"time"

	"aitool-hub/internal/adapter/repository"
	"aitool-hub/internal/domain"
	"aitool-hub/internal/logger"
	"aitool-hub/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMirror 记录会话是否被写入
type MockMirror struct {
	mock.Mock
}

func (m *MockMirror) Save(ctx context.Context, key string, value any) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *MockMirror) Load(ctx context.Context, key string, dst any) (bool, error) {
	args := m.Called(ctx, key, dst)
	return args.Bool(0), args.Error(1)
}

func (m *MockMirror) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newSim(t *testing.T) (*Simulator, *repository.MemoryMirror, *store.Table[domain.User]) {
	t.Helper()
	m := repository.NewMemoryMirror()
	users := store.NewTable[domain.User](store.KeyUsers, m, logger.NewNop())
	_, err := users.Add(context.Background(), domain.User{ID: "u-mod", Name: "Mina", Email: "mina@example.com", Role: domain.RoleModerator})
	require.NoError(t, err)

	s := NewSimulator(m, users, []string{" Admin@AIToolHub.dev "}, logger.NewNop())
	s.now = func() time.Time { return time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC) }
	return s, m, users
}

func TestLogin_ShortPasswordRejectsBeforeSession(t *testing.T) {
	m := new(MockMirror)
	s := NewSimulator(m, nil, nil, logger.NewNop())

	_, err := s.Login(context.Background(), "user@example.com", "1234567")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	assert.Equal(t, "Password must be at least 8 characters", err.Error())

	_, ok := s.Current()
	assert.False(t, ok)
	m.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_Validation(t *testing.T) {
	s, _, _ := newSim(t)

	_, err := s.Login(context.Background(), "not-an-email", "long-enough")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = s.Signup(context.Background(), "  ", "new@example.com", "long-enough")
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = s.Signup(context.Background(), "New", "new@example.com", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestLogin_AnyValidCredentialsAccepted(t *testing.T) {
	s, m, _ := newSim(t)

	sess, err := s.Login(context.Background(), "someone@example.com", "whatever-123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, sess.User.Role)
	assert.Equal(t, "someone", sess.User.Name)
	assert.NotEmpty(t, sess.Token)
	assert.False(t, s.IsAdmin())

	raw, ok := m.Raw(store.KeySession)
	require.True(t, ok, "会话被持久化")
	assert.Contains(t, string(raw), sess.Token)
}

func TestLogin_Roles(t *testing.T) {
	s, _, _ := newSim(t)

	sess, err := s.Login(context.Background(), "admin@aitoolhub.dev", "password1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, sess.User.Role)
	assert.True(t, s.IsAdmin())

	sess, err = s.Login(context.Background(), "MINA@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "u-mod", sess.User.ID, "已有用户沿用其记录")
	assert.Equal(t, domain.RoleModerator, sess.User.Role)
	assert.False(t, s.IsAdmin())
}

func TestSignup_AddsUser(t *testing.T) {
	s, _, users := newSim(t)

	sess, err := s.Signup(context.Background(), "Leo", "leo@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "Leo", sess.User.Name)
	assert.Equal(t, domain.UserActive, sess.User.Status)

	got, ok := users.Get(sess.User.ID)
	require.True(t, ok)
	assert.Equal(t, "leo@example.com", got.Email)
}

func TestRequireAuth_InvokedOnceAfterLogin(t *testing.T) {
	s, _, _ := newSim(t)
	calls := 0

	gate := s.RequireAuth(func() { calls++ })
	assert.Equal(t, PromptLogin, gate)
	assert.Equal(t, 0, calls, "没有会话时不执行")
	assert.True(t, s.HasPending())

	_, err := s.Login(context.Background(), "user@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	require.NoError(t, s.Logout(context.Background()))
	_, err = s.Login(context.Background(), "user@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "挂起的动作只执行一次")
}

func TestRequireAuth_WithSessionRunsImmediately(t *testing.T) {
	s, _, _ := newSim(t)
	_, err := s.Signup(context.Background(), "Leo", "leo@example.com", "password1")
	require.NoError(t, err)

	calls := 0
	assert.Equal(t, Invoked, s.RequireAuth(func() { calls++ }))
	assert.Equal(t, 1, calls)
	assert.False(t, s.HasPending())
}

func TestRequireAuth_DismissDiscards(t *testing.T) {
	s, _, _ := newSim(t)
	calls := 0

	s.RequireAuth(func() { calls++ })
	assert.True(t, s.Dismiss())
	assert.False(t, s.Dismiss())

	_, err := s.Login(context.Background(), "user@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
}

func TestRequireAuth_FailedLoginKeepsPending(t *testing.T) {
	s, _, _ := newSim(t)
	calls := 0
	s.RequireAuth(func() { calls++ })

	_, err := s.Login(context.Background(), "user@example.com", "short")
	require.Error(t, err)
	assert.Equal(t, 0, calls)
	assert.True(t, s.HasPending())

	_, err = s.Signup(context.Background(), "User", "user@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestLogoutAndRestore(t *testing.T) {
	s, m, users := newSim(t)
	sess, err := s.Login(context.Background(), "admin@aitoolhub.dev", "password1")
	require.NoError(t, err)

	// 新进程从镜像恢复会话
	restored := NewSimulator(m, users, nil, logger.NewNop())
	require.NoError(t, restored.Restore(context.Background()))
	got, ok := restored.Authorize(sess.Token)
	require.True(t, ok)
	assert.Equal(t, sess.User.Email, got.User.Email)

	_, ok = restored.Authorize("wrong")
	assert.False(t, ok)

	require.NoError(t, s.Logout(context.Background()))
	_, ok = s.Current()
	assert.False(t, ok)
	_, ok = m.Raw(store.KeySession)
	assert.False(t, ok, "持久化记录被删除")
}
