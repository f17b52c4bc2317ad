package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/chapunchi/ledger-service/internal/domain/entity"
	"github.com/chapunchi/ledger-service/internal/infrastructure/logger"
)

// FileSource implements the CredentialSource port by reading a JSON document
// {"username": "...", "password": "..."} from disk. This is the local stand-in
// for an external secret manager; the file is typically mounted by the
// deployment environment.
type FileSource struct {
	path   string
	logger logger.Logger
}

// NewFileSource creates a credential source backed by the given file
func NewFileSource(path string, log logger.Logger) *FileSource {
	return &FileSource{
		path:   path,
		logger: log.WithComponent("credential_file"),
	}
}

// Fetch reads and decodes the credential file
func (s *FileSource) Fetch(ctx context.Context) (entity.Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return entity.Credentials{}, fmt.Errorf("read credential file %s: %w", s.path, err)
	}

	var creds entity.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return entity.Credentials{}, fmt.Errorf("decode credential file %s: %w", s.path, err)
	}
	if creds.Username == "" {
		return entity.Credentials{}, fmt.Errorf("credential file %s: missing username", s.path)
	}
	if creds.Password == "" {
		return entity.Credentials{}, fmt.Errorf("credential file %s: missing password", s.path)
	}

	s.logger.LogInfo(ctx, "credentials fetched", "path", s.path)
	return creds, nil
}
