// Package httpapi is the thin HTTP surface over the ledger core. It
// only binds request bodies and translates the ledger's typed errors
// into status codes; authentication and command parsing live in the
// platform services that call this API.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/communityhq/coin-ledger/internal/ledger"
	"github.com/communityhq/coin-ledger/internal/penalty"
	"github.com/communityhq/coin-ledger/internal/ranking"
)

type Handler struct {
	ledger  *ledger.Ledger
	ranking *ranking.Index
	penalty *penalty.Engine
	log     *zap.Logger
}

func NewRouter(l *ledger.Ledger, rk *ranking.Index, pe *penalty.Engine, log *zap.Logger) *gin.Engine {
	h := &Handler{ledger: l, ranking: rk, penalty: pe, log: log}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	accounts := r.Group("/accounts/:id")
	{
		accounts.GET("/balance", h.getBalance)
		accounts.POST("/credit", h.credit)
		accounts.POST("/debit", h.debit)
		accounts.PUT("/balance", h.setBalance)
		accounts.POST("/adjustments", h.adjustToTarget)
		accounts.POST("/penalties", h.applyPenalty)
	}
	r.POST("/transfers", h.transfer)
	r.GET("/ranking", h.topByBalance)

	return r
}

type amountRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
}

type targetRequest struct {
	Target    decimal.Decimal `json:"target"`
	Reference string          `json:"reference"`
}

type transferRequest struct {
	FromAccount string          `json:"from_account" binding:"required"`
	ToAccount   string          `json:"to_account" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
}

type penaltyRequest struct {
	SeverityPoints int    `json:"severity_points"`
	Reason         string `json:"reason"`
}

func (h *Handler) getBalance(c *gin.Context) {
	accountID := c.Param("id")

	balance, err := h.ledger.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account_id": accountID, "balance": balance})
}

func (h *Handler) credit(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := h.ledger.Credit(c.Request.Context(), c.Param("id"), req.Amount, req.Reference)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) debit(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := h.ledger.Debit(c.Request.Context(), c.Param("id"), req.Amount, req.Reference)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) setBalance(c *gin.Context) {
	var req targetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := h.ledger.SetBalance(c.Request.Context(), c.Param("id"), req.Target, req.Reference)
	if err != nil {
		h.fail(c, err)
		return
	}
	if entry == nil {
		// Balance already at target; nothing was written.
		c.JSON(http.StatusOK, gin.H{"status": "unchanged"})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) adjustToTarget(c *gin.Context) {
	var req targetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := h.ledger.AdjustToTarget(c.Request.Context(), c.Param("id"), req.Target, req.Reference)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	transfer, err := h.ledger.Transfer(c.Request.Context(), req.FromAccount, req.ToAccount, req.Amount)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, transfer)
}

func (h *Handler) applyPenalty(c *gin.Context) {
	var req penaltyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.penalty.ApplyInfractionPenalty(c.Request.Context(), c.Param("id"), req.SeverityPoints, req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) topByBalance(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	standings, err := h.ranking.TopByBalance(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, standings)
}

// fail maps the ledger's error taxonomy onto status codes. Anything
// unrecognized is a storage-level failure: logged, returned as 500 and
// retryable by the caller.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrSameAccountTransfer),
		errors.Is(err, penalty.ErrZeroSeverity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrNoopAdjustment):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error("ledger operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
