package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/chapunchi/ledger-service/internal/application/usecase"
	"github.com/chapunchi/ledger-service/internal/domain/entity"
	"github.com/chapunchi/ledger-service/internal/domain/port"
	"github.com/chapunchi/ledger-service/internal/infrastructure/auth"
	"github.com/chapunchi/ledger-service/internal/infrastructure/config"
	httphandler "github.com/chapunchi/ledger-service/internal/infrastructure/http"
	"github.com/chapunchi/ledger-service/internal/infrastructure/logger"
	"github.com/chapunchi/ledger-service/internal/infrastructure/repository"
	"github.com/chapunchi/ledger-service/internal/infrastructure/secrets"
)

const serverDir = "server"

var apiServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Run API Server.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		// Initialize logger
		appLogger := logger.NewLogger()

		// Get config directory (relative to where the binary is run from)
		configDir := filepath.Join("cmd", "config", serverDir)
		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			// Try absolute path from project root
			configDir = filepath.Join(".", "cmd", "config", serverDir)
		}

		// Load configuration
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			appLogger.LogError(ctx, "Failed to load config", err)
			return fmt.Errorf("failed to load config: %w", err)
		}

		appLogger.LogInfo(ctx, "Configuration loaded",
			"port", cfg.Server.Port,
			"store_driver", cfg.Store.Driver)

		// Resolve caller credentials once at startup; SIGHUP reloads them.
		credentialSource := secrets.NewFileSource(cfg.Auth.CredentialsFile, appLogger)
		verifier, err := auth.NewBasicVerifier(ctx, credentialSource, appLogger)
		if err != nil {
			appLogger.LogError(ctx, "Failed to load credentials", err)
			return fmt.Errorf("failed to load credentials: %w", err)
		}

		// Initialize the account store
		store, cleanup, err := buildStore(ctx, cfg, appLogger)
		if err != nil {
			appLogger.LogError(ctx, "Failed to initialize account store", err)
			return fmt.Errorf("failed to initialize account store: %w", err)
		}
		defer cleanup()

		// Initialize use cases
		getBalanceUseCase := usecase.NewGetBalanceUseCase(store)
		depositUseCase := usecase.NewDepositUseCase(store)
		withdrawUseCase := usecase.NewWithdrawUseCase(store)

		// Initialize HTTP handler
		handler := httphandler.NewHandler(
			getBalanceUseCase,
			depositUseCase,
			withdrawUseCase,
			appLogger,
		)

		// Setup routes
		mux := handler.SetupRoutes(verifier)

		// Create HTTP server
		addr := ":" + cfg.Server.Port
		server := &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Channel to capture termination signals; SIGHUP is reserved for
		// credential rotation.
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, os.Interrupt, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

		reloadChan := make(chan os.Signal, 1)
		signal.Notify(reloadChan, syscall.SIGHUP)

		// Error channel to capture errors from server
		errChan := make(chan error, 1)

		// Start server in a goroutine
		go func() {
			appLogger.LogInfo(ctx, "Starting server",
				"address", addr,
				"store_driver", cfg.Store.Driver)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		for {
			select {
			case <-reloadChan:
				if err := verifier.Reload(ctx); err != nil {
					appLogger.LogError(ctx, "Credential reload failed", err)
				} else {
					appLogger.LogInfo(ctx, "Credentials reloaded")
				}
			case <-signalChan:
				appLogger.LogInfo(ctx, "Received termination signal. Initiating graceful shutdown...")

				// Create shutdown context with timeout
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					appLogger.LogError(ctx, "Server forced to shutdown", err)
					return err
				}

				appLogger.LogInfo(ctx, "Server stopped gracefully")
				return nil
			case err := <-errChan:
				appLogger.LogError(ctx, "Server error", err)
				return err
			}
		}
	},
}

// buildStore selects the AccountStore adapter for the configured driver. The
// memory store is seeded from config so a local run has accounts to operate
// on; account provisioning is otherwise out of band.
func buildStore(ctx context.Context, cfg *config.Config, appLogger logger.Logger) (port.AccountStore, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		store, err := repository.OpenPostgresStore(ctx, cfg.Store.DSN, cfg.Store.OpTimeout, appLogger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		store := repository.NewMemoryStore(appLogger)
		for _, seed := range cfg.Store.Seed {
			account, err := seedAccount(seed)
			if err != nil {
				return nil, nil, err
			}
			store.Seed(account)
		}
		return store, func() {}, nil
	}
}

func seedAccount(seed config.SeedAccount) (entity.Account, error) {
	if seed.AccountID == "" {
		return entity.Account{}, fmt.Errorf("seed account without accountId")
	}

	account := entity.Account{AccountID: seed.AccountID}
	fields := []struct {
		value  string
		target *decimal.Decimal
		name   string
	}{
		{seed.CurrentBalance, &account.CurrentBalance, "currentBalance"},
		{seed.DailyLimit, &account.DailyLimit, "dailyLimit"},
		{seed.DailyAmountWithdrawn, &account.DailyAmountWithdrawn, "dailyAmountWithdrawn"},
	}
	for _, f := range fields {
		if f.value == "" {
			*f.target = decimal.Zero
			continue
		}
		parsed, err := decimal.NewFromString(f.value)
		if err != nil {
			return entity.Account{}, fmt.Errorf("seed account %s: invalid %s: %w", seed.AccountID, f.name, err)
		}
		*f.target = parsed
	}

	return account, nil
}

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(apiServerCmd)
}
