package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/chapunchi/ledger-service/internal/domain/entity"
	"github.com/chapunchi/ledger-service/internal/domain/port"
)

func mutationRequest(accountID, rawAmount string) entity.MutationRequest {
	req := entity.MutationRequest{AccountID: entity.FlexString(accountID)}
	if rawAmount != "" {
		req.Amount = json.RawMessage(rawAmount)
	}
	return req
}

func TestDepositUseCase_Execute(t *testing.T) {
	tests := []struct {
		name            string
		request         entity.MutationRequest
		storeAccount    *entity.Account
		storeErr        error
		wantErr         error
		wantBalance     string
		wantStoreUpdate bool
	}{
		{
			name:    "successful deposit",
			request: mutationRequest("12345", `500`),
			storeAccount: &entity.Account{
				AccountID:      "12345",
				CurrentBalance: decimal.RequireFromString("2500.00"),
			},
			wantBalance:     "2500.00",
			wantStoreUpdate: true,
		},
		{
			name:    "string amount accepted",
			request: mutationRequest("12345", `"500.25"`),
			storeAccount: &entity.Account{
				AccountID:      "12345",
				CurrentBalance: decimal.RequireFromString("2500.25"),
			},
			wantBalance:     "2500.25",
			wantStoreUpdate: true,
		},
		{
			name:    "missing account id",
			request: mutationRequest("", `500`),
			wantErr: entity.ErrInvalidAccountID,
		},
		{
			name:    "negative amount",
			request: mutationRequest("12345", `-1500`),
			wantErr: entity.ErrInvalidAmount,
		},
		{
			name:    "non-numeric amount",
			request: mutationRequest("12345", `"32432f4242"`),
			wantErr: entity.ErrInvalidAmount,
		},
		{
			name:    "missing amount",
			request: mutationRequest("12345", ""),
			wantErr: entity.ErrInvalidAmount,
		},
		{
			name:            "condition failure maps to account not found",
			request:         mutationRequest("67899", `500`),
			storeErr:        &port.ConditionFailedError{Cause: port.CauseAccountMissing},
			wantErr:         entity.ErrAccountNotFound,
			wantStoreUpdate: true,
		},
		{
			name:            "store failure propagates",
			request:         mutationRequest("12345", `500`),
			storeErr:        errors.New("store unavailable"),
			wantStoreUpdate: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockAccountStore{
				conditionalUpdateFunc: func(ctx context.Context, accountID string, m port.BalanceMutation) (*entity.Account, error) {
					if m.Delta.IsNegative() || m.Delta.IsZero() {
						t.Errorf("deposit delta = %v, want positive", m.Delta)
					}
					if m.TrackWithdrawal || m.RequireSufficientBalance || m.RequireDailyHeadroom {
						t.Errorf("deposit mutation carries withdrawal flags: %+v", m)
					}
					return tt.storeAccount, tt.storeErr
				},
			}

			useCase := NewDepositUseCase(store)
			account, err := useCase.Execute(context.Background(), tt.request)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Execute() error = %v, want %v", err, tt.wantErr)
				}
			} else if tt.storeErr != nil {
				if !errors.Is(err, tt.storeErr) {
					t.Fatalf("Execute() error = %v, want %v", err, tt.storeErr)
				}
			} else {
				if err != nil {
					t.Fatalf("Execute() unexpected error = %v", err)
				}
				if account.CurrentBalance.String() != tt.wantBalance {
					t.Errorf("balance = %v, want %v", account.CurrentBalance.String(), tt.wantBalance)
				}
			}

			gotStoreUpdate := store.updateCalls > 0
			if gotStoreUpdate != tt.wantStoreUpdate {
				t.Errorf("store updates = %d, wantStoreUpdate %v", store.updateCalls, tt.wantStoreUpdate)
			}
		})
	}
}
