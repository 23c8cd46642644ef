// Package auth 模拟登录：任何通过格式校验的凭据都会被接受，没有真实的凭据校验
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"aitool-hub/internal/common"
	"aitool-hub/internal/domain"
	"aitool-hub/internal/logger"
	"aitool-hub/internal/port"
	"aitool-hub/internal/store"

	"github.com/google/uuid"
)

var (
	ErrPasswordTooShort = errors.New("Password must be at least 8 characters")
	ErrInvalidEmail     = errors.New("Please enter a valid email address")
	ErrNameRequired     = errors.New("Name is required")
)

// MinPasswordLength 密码最短长度
const MinPasswordLength = 8

// Gate RequireAuth 的结果
type Gate int

const (
	// Invoked 已有会话，动作已立即执行
	Invoked Gate = iota
	// PromptLogin 没有会话，动作已挂起，等待登录或注册
	PromptLogin
)

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8"`
}

type signupCredentials struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8"`
}

type Simulator struct {
	mirror port.Mirror
	users  *store.Table[domain.User]
	admins map[string]bool
	log    logger.Logger
	now    func() time.Time

	mu      sync.Mutex
	session *domain.Session
	pending func()
}

// NewSimulator adminEmails 中的邮箱登录后获得 admin 角色。users 可以为 nil。
func NewSimulator(mirror port.Mirror, users *store.Table[domain.User], adminEmails []string, log logger.Logger) *Simulator {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = true
	}
	return &Simulator{
		mirror: mirror,
		users:  users,
		admins: admins,
		log:    log,
		now:    time.Now,
	}
}

// Restore 恢复上次持久化的会话
func (s *Simulator) Restore(ctx context.Context) error {
	if s.mirror == nil {
		return nil
	}
	var sess domain.Session
	found, err := s.mirror.Load(ctx, store.KeySession, &sess)
	if err != nil {
		return err
	}
	if found && sess.Token != "" {
		s.mu.Lock()
		s.session = &sess
		s.mu.Unlock()
	}
	return nil
}

// Login 校验失败时在创建会话之前返回
func (s *Simulator) Login(ctx context.Context, email, password string) (domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := check(credentials{Email: email, Password: password}); err != nil {
		return domain.Session{}, err
	}

	user, ok := s.findUser(email)
	if !ok {
		user = domain.User{
			ID:       uuid.NewString(),
			Name:     strings.SplitN(email, "@", 2)[0],
			Email:    email,
			Status:   domain.UserActive,
			JoinedAt: s.now(),
		}
	}
	return s.startSession(ctx, user)
}

// Signup 同样接受任何合法输入，并把新用户加入用户表
func (s *Simulator) Signup(ctx context.Context, name, email, password string) (domain.Session, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if err := check(signupCredentials{Name: name, Email: email, Password: password}); err != nil {
		return domain.Session{}, err
	}

	user, ok := s.findUser(email)
	if !ok {
		user = domain.User{
			Name:     name,
			Email:    email,
			Role:     domain.RoleUser,
			Status:   domain.UserActive,
			JoinedAt: s.now(),
		}
		if s.users != nil {
			added, err := s.users.Add(ctx, user)
			if err != nil {
				return domain.Session{}, err
			}
			user = added
		} else {
			user.ID = uuid.NewString()
		}
	}
	return s.startSession(ctx, user)
}

// check 把校验错误映射成表单上显示的固定文案
func check(v any) error {
	err := common.ValidateStruct(v)
	if err == nil {
		return nil
	}
	var verr *common.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	switch {
	case verr.Has("name"):
		return ErrNameRequired
	case verr.Has("email"):
		return ErrInvalidEmail
	case verr.Has("password"):
		return ErrPasswordTooShort
	}
	return err
}

func (s *Simulator) findUser(email string) (domain.User, bool) {
	if s.users == nil {
		return domain.User{}, false
	}
	for _, u := range s.users.List() {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return domain.User{}, false
}

// startSession 创建并持久化会话，然后执行挂起的动作 (最多一次)
func (s *Simulator) startSession(ctx context.Context, user domain.User) (domain.Session, error) {
	if s.admins[strings.ToLower(user.Email)] {
		user.Role = domain.RoleAdmin
	} else if user.Role == "" {
		user.Role = domain.RoleUser
	}

	sess := domain.Session{User: user, Token: uuid.NewString(), IssuedAt: s.now()}
	if s.mirror != nil {
		if err := s.mirror.Save(ctx, store.KeySession, sess); err != nil {
			s.log.Warn("persist session failed", logger.Error(err))
		}
	}

	s.mu.Lock()
	s.session = &sess
	action := s.pending
	s.pending = nil
	s.mu.Unlock()

	s.log.Info("session started", logger.String("email", user.Email), logger.String("role", string(user.Role)))
	if action != nil {
		action()
	}
	return sess, nil
}

// Logout 清除会话和持久化记录
func (s *Simulator) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()

	if s.mirror == nil {
		return nil
	}
	return s.mirror.Delete(ctx, store.KeySession)
}

// RequireAuth 有会话时立即执行；否则挂起 action，等待登录或注册后执行一次
// 新的挂起动作会替换旧的
func (s *Simulator) RequireAuth(action func()) Gate {
	s.mu.Lock()
	if s.session != nil {
		s.mu.Unlock()
		action()
		return Invoked
	}
	s.pending = action
	s.mu.Unlock()
	return PromptLogin
}

// Defer 不检查会话，直接挂起动作等待下一次登录或注册 (请求未携带有效 token 时使用)
func (s *Simulator) Defer(action func()) {
	s.mu.Lock()
	s.pending = action
	s.mu.Unlock()
}

// Dismiss 取消登录提示，丢弃挂起的动作且不执行。返回是否有被丢弃的动作。
func (s *Simulator) Dismiss() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	had := s.pending != nil
	s.pending = nil
	return had
}

// HasPending 是否有等待登录的动作
func (s *Simulator) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

func (s *Simulator) Current() (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return domain.Session{}, false
	}
	return *s.session, true
}

// Authorize 请求携带的 token 是否属于当前会话
func (s *Simulator) Authorize(token string) (domain.Session, bool) {
	sess, ok := s.Current()
	if !ok || token == "" || token != sess.Token {
		return domain.Session{}, false
	}
	return sess, true
}

func (s *Simulator) IsAdmin() bool {
	sess, ok := s.Current()
	return ok && sess.User.IsAdmin()
}
