package service

import (
	"context"
	"errors"
	"time"

	"neontrade/internal/config"
	"neontrade/internal/model"
	"neontrade/internal/session"
	"neontrade/internal/store"
	"neontrade/pkg/idgen"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidAdminCredentials = errors.New("invalid admin credentials")

const adminTokenTTL = 24 * time.Hour

type AdminService struct {
	store   *store.Store
	session session.Store
	cfg     *config.AdminConfig
}

func NewAdminService(st *store.Store, sess session.Store, cfg *config.AdminConfig) *AdminService {
	return &AdminService{
		store:   st,
		session: sess,
		cfg:     cfg,
	}
}

// Login 管理员登录，凭据来自配置（bcrypt 哈希），通过后签发会话令牌
func (s *AdminService) Login(ctx context.Context, username, password string) (string, error) {
	if username != s.cfg.Username {
		return "", ErrInvalidAdminCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidAdminCredentials
	}

	token := idgen.GenerateAdminToken()
	s.session.SetAdminToken(token, adminTokenTTL)
	return token, nil
}

func (s *AdminService) CheckToken(token string) bool {
	return s.session.CheckAdminToken(token)
}

// GenerateInvitationCode 生成新邀请码并加入有效集合
func (s *AdminService) GenerateInvitationCode(ctx context.Context) string {
	code := idgen.GenerateInvitationCode()
	s.store.AddInvitationCode(code)
	return code
}

// RevokeInvitationCode 吊销邀请码，已注册用户不受影响
func (s *AdminService) RevokeInvitationCode(ctx context.Context, code string) bool {
	return s.store.RemoveInvitationCode(code)
}

func (s *AdminService) InvitationCodes(ctx context.Context) []string {
	return s.store.InvitationCodes()
}

// Broadcast 广播通知，追加到通知日志，所有用户可见
func (s *AdminService) Broadcast(ctx context.Context, title, content string) *model.Notification {
	n := &model.Notification{
		ID:        idgen.GenerateNotificationID(),
		Title:     title,
		Content:   content,
		Timestamp: time.Now(),
	}
	s.store.AddNotification(n)
	return n
}

func (s *AdminService) Users(ctx context.Context) []*model.User {
	return s.store.Users()
}
