package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"neontrade/internal/model"
	"neontrade/internal/store"
	"neontrade/pkg/idgen"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid mobile number or password")
	ErrMissingCredentials = errors.New("mobile number and password are required")
)

type AuthService struct {
	store *store.Store
}

func NewAuthService(st *store.Store) *AuthService {
	return &AuthService{store: st}
}

// Register 注册：校验邀请码有效性和手机号唯一性，成功后立即成为当前会话用户
// 密码只存 bcrypt 哈希
func (s *AuthService) Register(ctx context.Context, mobile, password, invitationCode string) (*model.User, error) {
	mobile = strings.TrimSpace(mobile)
	password = strings.TrimSpace(password)
	invitationCode = strings.TrimSpace(invitationCode)

	if mobile == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           idgen.GenerateUserID(),
		Mobile:       mobile,
		Username:     mobile,
		PasswordHash: string(hash),
		Balance:      decimal.Zero,
		CreditScore:  100,
		VIPLevel:     1,
		ReferralCode: invitationCode,
		CreatedAt:    time.Now(),
	}

	if err := s.store.Register(user, invitationCode); err != nil {
		return nil, err
	}
	return user.Clone(), nil
}

// Login 登录：手机号 + 密码匹配后记录为当前会话用户
func (s *AuthService) Login(ctx context.Context, mobile, password string) (*model.User, error) {
	mobile = strings.TrimSpace(mobile)
	password = strings.TrimSpace(password)

	user := s.store.UserByMobile(mobile)
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.store.SetCurrentUser(user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context) {
	s.store.ClearCurrentUser()
}

// CurrentUser 当前会话用户，未登录返回 nil
func (s *AuthService) CurrentUser(ctx context.Context) *model.User {
	return s.store.CurrentUser()
}
