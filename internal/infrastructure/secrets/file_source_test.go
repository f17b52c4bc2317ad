package secrets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/chapunchi/ledger-service/internal/infrastructure/logger"
)

func writeCredentialFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestFileSource_Fetch(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		wantUser string
		wantPass string
		wantErr  bool
	}{
		{
			name:     "valid file",
			contents: `{"username":"svc","password":"secret"}`,
			wantUser: "svc",
			wantPass: "secret",
		},
		{
			name:     "missing username",
			contents: `{"password":"secret"}`,
			wantErr:  true,
		},
		{
			name:     "missing password",
			contents: `{"username":"svc"}`,
			wantErr:  true,
		},
		{
			name:     "not JSON",
			contents: `username=svc`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := NewFileSource(writeCredentialFile(t, tt.contents), logger.NewLogger())
			creds, err := source.Fetch(context.Background())

			if (err != nil) != tt.wantErr {
				t.Fatalf("Fetch() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if creds.Username != tt.wantUser || creds.Password != tt.wantPass {
				t.Errorf("Fetch() = %q/%q, want %q/%q", creds.Username, creds.Password, tt.wantUser, tt.wantPass)
			}
		})
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	source := NewFileSource(filepath.Join(t.TempDir(), "absent.json"), logger.NewLogger())
	if _, err := source.Fetch(context.Background()); err == nil {
		t.Fatal("Fetch() expected error for a missing file")
	}
}
