package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/chapunchi/ledger-service/internal/application/usecase"
	"github.com/chapunchi/ledger-service/internal/domain/entity"
	"github.com/chapunchi/ledger-service/internal/domain/port"
	"github.com/chapunchi/ledger-service/internal/infrastructure/logger"
)

// Handler holds HTTP handlers and their dependencies
type Handler struct {
	getBalanceUseCase *usecase.GetBalanceUseCase
	depositUseCase    *usecase.DepositUseCase
	withdrawUseCase   *usecase.WithdrawUseCase
	logger            logger.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	getBalanceUseCase *usecase.GetBalanceUseCase,
	depositUseCase *usecase.DepositUseCase,
	withdrawUseCase *usecase.WithdrawUseCase,
	logger logger.Logger,
) *Handler {
	return &Handler{
		getBalanceUseCase: getBalanceUseCase,
		depositUseCase:    depositUseCase,
		withdrawUseCase:   withdrawUseCase,
		logger:            logger,
	}
}

// HandleHealth handles GET / requests. Exempt from auth; the load balancer
// probes it.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// HandleBalance handles GET /balance/{account_id} requests
func (h *Handler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := loggerFrom(ctx, h.logger)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID := strings.TrimPrefix(r.URL.Path, "/balance/")
	if accountID == r.URL.Path {
		accountID = ""
	}

	balance, err := h.getBalanceUseCase.Execute(ctx, accountID)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidAccountID):
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid account id : %s", accountID))
		case errors.Is(err, entity.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, fmt.Sprintf("Account %s not found", accountID))
		default:
			requestLogger.LogError(ctx, "Failed to get balance", err, "account_id", accountID)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{CurrentBalance: jsonNumber(balance)})

	requestLogger.LogInfo(ctx, "Balance retrieved", "account_id", accountID)
}

// HandleDeposit handles POST /deposit requests
func (h *Handler) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := loggerFrom(ctx, h.logger)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := decodeMutationRequest(r)
	if err != nil {
		h.writeMutationError(ctx, w, "", err)
		return
	}

	account, err := h.depositUseCase.Execute(ctx, req)
	if err != nil {
		h.writeMutationError(ctx, w, string(req.AccountID), err)
		return
	}

	writeJSON(w, http.StatusOK, depositResponse{
		AccountID:      account.AccountID,
		CurrentBalance: jsonNumber(account.CurrentBalance),
	})

	requestLogger.LogInfo(ctx, "Deposit completed",
		"account_id", account.AccountID,
		"new_balance", account.CurrentBalance.String())
}

// HandleWithdraw handles POST /withdraw requests
func (h *Handler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := loggerFrom(ctx, h.logger)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := decodeMutationRequest(r)
	if err != nil {
		h.writeMutationError(ctx, w, "", err)
		return
	}

	account, err := h.withdrawUseCase.Execute(ctx, req)
	if err != nil {
		h.writeMutationError(ctx, w, string(req.AccountID), err)
		return
	}

	writeJSON(w, http.StatusOK, withdrawResponse{
		AccountID:            account.AccountID,
		CurrentBalance:       jsonNumber(account.CurrentBalance),
		DailyAmountWithdrawn: jsonNumber(account.DailyAmountWithdrawn),
	})

	requestLogger.LogInfo(ctx, "Withdrawal completed",
		"account_id", account.AccountID,
		"new_balance", account.CurrentBalance.String(),
		"daily_amount_withdrawn", account.DailyAmountWithdrawn.String())
}

// decodeMutationRequest parses a deposit/withdraw body. Unparseable JSON is a
// malformed payload; a parseable but field-less body is an empty request.
func decodeMutationRequest(r *http.Request) (entity.MutationRequest, error) {
	var req entity.MutationRequest

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return req, entity.ErrMalformedPayload
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return req, entity.ErrMalformedPayload
	}
	if len(probe) == 0 {
		return req, entity.ErrEmptyRequest
	}

	if err := json.Unmarshal(body, &req); err != nil {
		return req, entity.ErrMalformedPayload
	}
	return req, nil
}

// writeMutationError maps a deposit/withdraw failure to its HTTP shape.
// Store-level rejections collapse into one message; the cause only goes to
// the log.
func (h *Handler) writeMutationError(ctx context.Context, w http.ResponseWriter, accountID string, err error) {
	requestLogger := loggerFrom(ctx, h.logger)

	switch {
	case errors.Is(err, entity.ErrMalformedPayload):
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
	case errors.Is(err, entity.ErrEmptyRequest):
		writeError(w, http.StatusBadRequest, "Empty request body")
	case errors.Is(err, entity.ErrInvalidAccountID):
		writeError(w, http.StatusBadRequest, "Invalid account_id")
	case errors.Is(err, entity.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "Invalid amount")
	case errors.Is(err, entity.ErrDailyLimitExceeded):
		writeError(w, http.StatusBadRequest, "Daily limit exceeded")
	case errors.Is(err, entity.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Account %s not found", accountID))
	case errors.Is(err, entity.ErrUpdateRejected):
		requestLogger.LogWarning(ctx, "Conditional update rejected", "account_id", accountID, "detail", err.Error())
		writeError(w, http.StatusNotFound, "Insufficient balance or account not found or daily limit exceeded")
	default:
		requestLogger.LogError(ctx, "Store operation failed", err, "account_id", accountID)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// SetupRoutes sets up all HTTP routes. Every route except health sits behind
// the basic-auth middleware.
func (h *Handler) SetupRoutes(authenticator port.Authenticator) *http.ServeMux {
	mux := http.NewServeMux()

	chain := func(handler http.HandlerFunc) http.HandlerFunc {
		return RequestIDMiddleware(
			LoggingMiddleware(
				BasicAuthMiddleware(handler, authenticator, h.logger),
				h.logger,
			),
			h.logger,
		)
	}

	mux.HandleFunc("/", RequestIDMiddleware(LoggingMiddleware(h.handleRoot, h.logger), h.logger))
	mux.HandleFunc("/balance/", chain(h.HandleBalance))
	mux.HandleFunc("/deposit", chain(h.HandleDeposit))
	mux.HandleFunc("/withdraw", chain(h.HandleWithdraw))

	return mux
}

// handleRoot serves the health check on exactly "/" and 404s anything else
// that falls through the mux.
func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.HandleHealth(w, r)
}
