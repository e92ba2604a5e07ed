package handler

import (
	"errors"

	"neontrade/internal/model"
	"neontrade/internal/pricefeed"
	"neontrade/internal/service"
	"neontrade/internal/store"
	"neontrade/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Handler 统一处理器，包含所有服务依赖
type Handler struct {
	authService        *service.AuthService
	tradeService       *service.TradeService
	transactionService *service.TransactionService
	adminService       *service.AdminService
	prices             *pricefeed.Service
	store              *store.Store
}

func NewHandler(
	authService *service.AuthService,
	tradeService *service.TradeService,
	transactionService *service.TransactionService,
	adminService *service.AdminService,
	prices *pricefeed.Service,
	st *store.Store,
) *Handler {
	return &Handler{
		authService:        authService,
		tradeService:       tradeService,
		transactionService: transactionService,
		adminService:       adminService,
		prices:             prices,
		store:              st,
	}
}

// fail 按错误类型映射业务码，保证被拒绝的意图带着可读原因返回而不是裸 500
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidInvitationCode):
		response.BusinessError(c, response.CodeInvalidInvitationCode, err.Error())
	case errors.Is(err, store.ErrMobileRegistered):
		response.BusinessError(c, response.CodeMobileRegistered, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrMissingCredentials):
		response.BusinessError(c, response.CodeInvalidCredentials, err.Error())
	case errors.Is(err, service.ErrInsufficientBalance):
		response.BusinessError(c, response.CodeBalanceNotEnough, err.Error())
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidDirection),
		errors.Is(err, service.ErrInvalidDuration),
		errors.Is(err, service.ErrInvalidTransactionType):
		response.BusinessError(c, response.CodeInvalidAmount, err.Error())
	case errors.Is(err, store.ErrUserNotFound):
		response.BusinessError(c, response.CodeUserNotFound, err.Error())
	default:
		response.ServerError(c, err.Error())
	}
}

// currentUser 取会话用户，auth 中间件保证存在
func currentUser(c *gin.Context) *model.User {
	u, _ := c.Get("user")
	user, _ := u.(*model.User)
	return user
}

// ============================================================
// 认证相关接口
// ============================================================

type RegisterRequest struct {
	Mobile         string `json:"mobile" binding:"required"`
	Password       string `json:"password" binding:"required"`
	InvitationCode string `json:"invitation_code" binding:"required"`
}

// Register 注册
// POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Mobile, req.Password, req.InvitationCode)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, gin.H{
		"message": "Registration successful",
		"user":    userView(user),
	})
}

type LoginRequest struct {
	Mobile   string `json:"mobile" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录
// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.authService.Login(c.Request.Context(), req.Mobile, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, gin.H{"user": userView(user)})
}

// Logout 登出
// POST /api/v1/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	h.authService.Logout(c.Request.Context())
	response.Success(c, gin.H{"message": "Logged out"})
}

// userView 对外的用户视图，不携带密码哈希
func userView(u *model.User) gin.H {
	if u == nil {
		return nil
	}
	return gin.H{
		"id":             u.ID,
		"mobile":         u.Mobile,
		"username":       u.Username,
		"balance":        u.Balance,
		"frozen_balance": u.FrozenBalance,
		"credit_score":   u.CreditScore,
		"vip_level":      u.VIPLevel,
		"bank_account":   u.BankAccount,
		"referral_code":  u.ReferralCode,
		"created_at":     u.CreatedAt,
	}
}

// ============================================================
// 用户相关接口
// ============================================================

// Profile 当前会话用户信息
// GET /api/v1/user/profile
func (h *Handler) Profile(c *gin.Context) {
	response.Success(c, gin.H{"user": userView(currentUser(c))})
}

type BankAccountRequest struct {
	HolderName    string `json:"holder_name" binding:"required"`
	BankName      string `json:"bank_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	IFSC          string `json:"ifsc" binding:"required"`
}

// UpdateBankAccount 绑定收款银行账户
// POST /api/v1/user/bank
func (h *Handler) UpdateBankAccount(c *gin.Context) {
	var req BankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	err := h.store.UpdateBankAccount(currentUser(c).ID, model.BankAccount{
		HolderName:    req.HolderName,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		IFSC:          req.IFSC,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Bank account updated"})
}

type LanguageRequest struct {
	Language string `json:"language" binding:"required,oneof=en hi"`
}

// SetLanguage 切换界面语言
// POST /api/v1/user/language
func (h *Handler) SetLanguage(c *gin.Context) {
	var req LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}
	h.store.SetLanguage(req.Language)
	response.Success(c, gin.H{"language": req.Language})
}

// ============================================================
// 行情相关接口
// ============================================================

// Prices 全部币种当前报价
// GET /api/v1/market/prices
func (h *Handler) Prices(c *gin.Context) {
	response.Success(c, gin.H{"list": h.prices.Quotes()})
}

// ============================================================
// 交易相关接口
// ============================================================

type StartTradeRequest struct {
	CoinID     string          `json:"coin_id" binding:"required"`
	CoinSymbol string          `json:"coin_symbol" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Direction  string          `json:"direction" binding:"required"`
	Duration   int             `json:"duration" binding:"required"`
}

// StartTrade 下单
// POST /api/v1/trade/start
// 收益率由服务端按周期档位决定，本金立即从余额中托管扣除
func (h *Handler) StartTrade(c *gin.Context) {
	var req StartTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	trade, err := h.tradeService.Start(
		c.Request.Context(),
		currentUser(c).ID,
		req.CoinID,
		req.CoinSymbol,
		req.Amount,
		req.Direction,
		req.Duration,
	)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, gin.H{"trade": trade})
}

// ActiveTrades 进行中的交易
// GET /api/v1/trade/active
func (h *Handler) ActiveTrades(c *gin.Context) {
	response.Success(c, gin.H{"list": h.tradeService.ActiveTrades(c.Request.Context())})
}

// TradeHistory 已结算的历史，最新在前
// GET /api/v1/trade/history
func (h *Handler) TradeHistory(c *gin.Context) {
	response.Success(c, gin.H{"list": h.tradeService.History(c.Request.Context())})
}

// ProfitRates 周期档位表
// GET /api/v1/trade/rates
func (h *Handler) ProfitRates(c *gin.Context) {
	response.Success(c, gin.H{"list": h.tradeService.ProfitRates()})
}

// ============================================================
// 充值 / 提现相关接口
// ============================================================

type SubmitTransactionRequest struct {
	Type   string          `json:"type" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// SubmitTransaction 提交充值/提现申请
// POST /api/v1/transaction/submit
func (h *Handler) SubmitTransaction(c *gin.Context) {
	var req SubmitTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	tx, err := h.transactionService.Submit(c.Request.Context(), currentUser(c).ID, req.Type, req.Amount)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, gin.H{"transaction": tx})
}

// ListTransactions 当前用户的充值/提现记录
// GET /api/v1/transaction/list
func (h *Handler) ListTransactions(c *gin.Context) {
	txs := h.transactionService.List(c.Request.Context(), currentUser(c).ID)
	response.Success(c, gin.H{"list": txs})
}

// ============================================================
// 通知相关接口
// ============================================================

// Notifications 通知列表，最新在前
// GET /api/v1/notification/list
func (h *Handler) Notifications(c *gin.Context) {
	response.Success(c, gin.H{"list": h.store.Notifications()})
}

// MarkNotificationsRead 全部标记已读
// POST /api/v1/notification/read
func (h *Handler) MarkNotificationsRead(c *gin.Context) {
	h.store.MarkNotificationsRead()
	response.Success(c, gin.H{"message": "ok"})
}
