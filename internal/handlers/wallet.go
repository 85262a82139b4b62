package handlers

import (
	"errors"

	"ledgerpay/internal/models"
	"ledgerpay/internal/services/ledger"
	"ledgerpay/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	ledgerService ledger.Service
}

func NewWalletHandler(ledgerService ledger.Service) *WalletHandler {
	return &WalletHandler{
		ledgerService: ledgerService,
	}
}

// extractUserClaims is a helper function to reduce duplication
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

// mapLedgerError maps service errors to HTTP responses. Validation and
// business-rule rejections left no durable trace, so 400 is accurate.
func mapLedgerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrUserNotFound), errors.Is(err, ledger.ErrWalletNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidScale),
		errors.Is(err, ledger.ErrAmountTooLarge),
		errors.Is(err, ledger.ErrInvalidIdempotencyKey),
		errors.Is(err, ledger.ErrInvalidSource),
		errors.Is(err, ledger.ErrInvalidCurrency),
		errors.Is(err, ledger.ErrInvalidPagination),
		errors.Is(err, ledger.ErrSelfTransfer),
		errors.Is(err, ledger.ErrInsufficientFunds):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, ledger.ErrConflictRetryExhausted):
		return response.Conflict(c, err.Error())
	default:
		return response.ServerError(c, "internal server error")
	}
}

// transactionResponse returns 409 for the duplicate replay, 200 otherwise,
// always with the full result body.
func transactionResponse(c *fiber.Ctx, result *ledger.TransactionResult) error {
	if result.Status == ledger.StatusDuplicate {
		return c.Status(fiber.StatusConflict).JSON(result)
	}
	return response.Success(c, result)
}

func (h *WalletHandler) CreateWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Currency string `json:"currency"`
	}
	if err := c.BodyParser(&input); err != nil && len(c.Body()) > 0 {
		return response.BadRequest(c, "Invalid request format")
	}

	descriptor, err := h.ledgerService.ProvisionWallet(c.Context(), claims.UserID, input.Currency)
	if err != nil {
		return mapLedgerError(c, err)
	}
	return response.Success(c, descriptor)
}

func (h *WalletHandler) Credit(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	var input ledger.CreditRequest
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	result, err := h.ledgerService.Credit(c.Context(), claims.UserID, input)
	if err != nil {
		return mapLedgerError(c, err)
	}
	return transactionResponse(c, result)
}

func (h *WalletHandler) Debit(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	var input ledger.DebitRequest
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	result, err := h.ledgerService.Debit(c.Context(), claims.UserID, input)
	if err != nil {
		return mapLedgerError(c, err)
	}
	return transactionResponse(c, result)
}

func (h *WalletHandler) Transfer(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	var input struct {
		ToUserID       uint            `json:"to_user_id"`
		Amount         decimal.Decimal `json:"amount"`
		IdempotencyKey string          `json:"idempotency_key"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.ToUserID == 0 {
		return response.BadRequest(c, "to_user_id is required")
	}

	result, err := h.ledgerService.Transfer(c.Context(), claims.UserID, input.ToUserID, input.Amount, input.IdempotencyKey)
	if err != nil {
		return mapLedgerError(c, err)
	}
	return transactionResponse(c, result)
}

func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	balance, err := h.ledgerService.GetBalance(c.Context(), claims.UserID)
	if err != nil {
		return mapLedgerError(c, err)
	}
	return response.Success(c, balance)
}

func (h *WalletHandler) ListEntries(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}

	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 20)

	entries, err := h.ledgerService.ListEntries(c.Context(), claims.UserID, page, size)
	if err != nil {
		return mapLedgerError(c, err)
	}
	return response.Success(c, entries)
}
