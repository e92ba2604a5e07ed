package handler

import (
	"neontrade/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ============================================================
// 管理端接口
// ============================================================

type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin 管理员登录，签发 X-Admin-Token
// POST /api/v1/admin/login
func (h *Handler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	token, err := h.adminService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Unauthorized(c, "invalid admin credentials")
		return
	}

	response.Success(c, gin.H{"token": token})
}

type ResolveTransactionRequest struct {
	ID       string `json:"id" binding:"required"`
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
}

// ResolveTransaction 审批充值/提现申请
// POST /api/v1/admin/transaction/resolve
// 非 Pending 的流水重复审批是无操作，按未找到返回
func (h *Handler) ResolveTransaction(c *gin.Context) {
	var req ResolveTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	tx, ok := h.transactionService.Resolve(c.Request.Context(), req.ID, req.Decision == "approve")
	if !ok {
		response.BusinessError(c, response.CodeTransactionNotFound, "transaction not found or already resolved")
		return
	}

	response.Success(c, gin.H{"transaction": tx})
}

type ManualAdjustRequest struct {
	UserID string          `json:"user_id" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// ManualAdjust 管理员直接调整用户余额（带符号金额）
// POST /api/v1/admin/balance/adjust
func (h *Handler) ManualAdjust(c *gin.Context) {
	var req ManualAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	tx, err := h.transactionService.ManualAdjust(c.Request.Context(), req.UserID, req.Amount)
	if err != nil {
		fail(c, err)
		return
	}

	user := h.store.UserByID(req.UserID)
	response.Success(c, gin.H{
		"transaction": tx,
		"balance":     user.Balance,
	})
}

// GenerateInvitationCode 生成邀请码
// POST /api/v1/admin/invitation/generate
func (h *Handler) GenerateInvitationCode(c *gin.Context) {
	code := h.adminService.GenerateInvitationCode(c.Request.Context())
	response.Success(c, gin.H{"code": code})
}

type RevokeInvitationCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// RevokeInvitationCode 吊销邀请码
// POST /api/v1/admin/invitation/revoke
func (h *Handler) RevokeInvitationCode(c *gin.Context) {
	var req RevokeInvitationCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	if !h.adminService.RevokeInvitationCode(c.Request.Context(), req.Code) {
		response.BusinessError(c, response.CodeNotFound, "invitation code not found")
		return
	}
	response.Success(c, gin.H{"message": "Invitation code revoked"})
}

// ListInvitationCodes 有效邀请码列表
// GET /api/v1/admin/invitation/list
func (h *Handler) ListInvitationCodes(c *gin.Context) {
	response.Success(c, gin.H{"list": h.adminService.InvitationCodes(c.Request.Context())})
}

type BroadcastRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// Broadcast 广播通知
// POST /api/v1/admin/notification/broadcast
func (h *Handler) Broadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	n := h.adminService.Broadcast(c.Request.Context(), req.Title, req.Content)
	response.Success(c, gin.H{"notification": n})
}

// ListUsers 全部注册用户
// GET /api/v1/admin/users
func (h *Handler) ListUsers(c *gin.Context) {
	users := h.adminService.Users(c.Request.Context())
	views := make([]gin.H, 0, len(users))
	for _, u := range users {
		views = append(views, userView(u))
	}
	response.Success(c, gin.H{"list": views})
}

// ListAllTransactions 全部充值/提现流水
// GET /api/v1/admin/transactions
func (h *Handler) ListAllTransactions(c *gin.Context) {
	response.Success(c, gin.H{"list": h.transactionService.ListAll(c.Request.Context())})
}
