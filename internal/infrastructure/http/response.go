package http

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
)

// balanceResponse carries the balance as a raw JSON number so the decimal
// value crosses the wire without precision loss.
type balanceResponse struct {
	CurrentBalance json.Number `json:"current_balance"`
}

type depositResponse struct {
	AccountID      string      `json:"account_id"`
	CurrentBalance json.Number `json:"current_balance"`
}

type withdrawResponse struct {
	AccountID            string      `json:"account_id"`
	CurrentBalance       json.Number `json:"current_balance"`
	DailyAmountWithdrawn json.Number `json:"daily_amount_withdrawn"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func jsonNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
