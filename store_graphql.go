package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// GraphQL documents for the remote credential type. The remote schema keys
// credentials by a client-supplied uuid and a username declared @id, so the
// graph side enforces uniqueness the same way the SQL indexes do.
const (
	queryCredentialDoc = `
  query QueryCredential($filter: CredentialFilter) {
    queryCredential(filter: $filter) {
      id
      username
      email
      avatarURL
      passwordHash
    }
  }
`

	addCredentialDoc = `
  mutation AddCredential($input: [AddCredentialInput!]!) {
    addCredential(input: $input) {
      credential {
        id
        username
        email
        avatarURL
      }
    }
  }
`

	updateCredentialDoc = `
  mutation UpdateCredential($patch: UpdateCredentialInput!) {
    updateCredential(input: $patch) {
      credential {
        id
      }
    }
  }
`
)

// GraphQLStore fronts a GraphQL-served graph database. Every request carries
// a fresh short-lived admin token in the configured auth header, which is the
// whole reason admin tokens exist.
type GraphQLStore struct {
	endpoint string
	header   string
	client   *http.Client
	tokens   TokenIssuer
	logger   Logger
}

var _ CredentialStore = (*GraphQLStore)(nil)

func NewGraphQLStore(cfg *Config, tokens TokenIssuer, logger Logger) *GraphQLStore {
	if logger == nil {
		logger = defLogger{}
	}

	return &GraphQLStore{
		endpoint: cfg.GraphQLEndpoint,
		header:   cfg.AuthHeader,
		client:   &http.Client{Timeout: 30 * time.Second},
		tokens:   tokens,
		logger:   logger,
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors,omitempty"`
}

type gqlCredential struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	AvatarURL    string `json:"avatarURL,omitempty"`
	PasswordHash string `json:"passwordHash,omitempty"`
}

func (g gqlCredential) record() (*Credential, error) {
	uid, err := uuid.Parse(g.ID)
	if err != nil {
		return nil, WrapStoreError(err, "store returned a malformed credential id")
	}

	return &Credential{
		ID:           uid,
		Username:     g.Username,
		Email:        g.Email,
		AvatarURL:    g.AvatarURL,
		PasswordHash: g.PasswordHash,
	}, nil
}

func (s *GraphQLStore) FindByUsername(ctx context.Context, username string) (*Credential, error) {
	return s.findOne(ctx, map[string]any{
		"username": map[string]any{"eq": strings.TrimSpace(username)},
	})
}

func (s *GraphQLStore) FindByID(ctx context.Context, id string) (*Credential, error) {
	return s.findOne(ctx, map[string]any{
		"id": []string{id},
	})
}

func (s *GraphQLStore) findOne(ctx context.Context, filter map[string]any) (*Credential, error) {
	data, err := s.post(ctx, queryCredentialDoc, map[string]any{"filter": filter})
	if err != nil {
		return nil, err
	}

	out := struct {
		QueryCredential []gqlCredential `json:"queryCredential"`
	}{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, WrapStoreError(err, "failed to decode credential query response")
	}

	if len(out.QueryCredential) == 0 {
		return nil, ErrIdentityNotFound
	}

	return out.QueryCredential[0].record()
}

func (s *GraphQLStore) Create(ctx context.Context, record *Credential) (*Credential, error) {
	prepareCredentialDefaults(record)

	input := []map[string]any{{
		"id":           record.ID.String(),
		"username":     record.Username,
		"email":        record.Email,
		"avatarURL":    record.AvatarURL,
		"passwordHash": record.PasswordHash,
	}}

	if _, err := s.post(ctx, addCredentialDoc, map[string]any{"input": input}); err != nil {
		return nil, err
	}

	return record, nil
}

func (s *GraphQLStore) Update(ctx context.Context, id string, changes *CredentialUpdate) (*Credential, error) {
	if changes.IsZero() {
		return s.FindByID(ctx, id)
	}

	set := map[string]any{}
	if changes.Email != "" {
		set["email"] = changes.Email
	}
	if changes.AvatarURL != "" {
		set["avatarURL"] = changes.AvatarURL
	}
	if changes.PasswordHash != "" {
		set["passwordHash"] = changes.PasswordHash
	}

	patch := map[string]any{
		"filter": map[string]any{"id": []string{id}},
		"set":    set,
	}

	if _, err := s.post(ctx, updateCredentialDoc, map[string]any{"patch": patch}); err != nil {
		return nil, err
	}

	return s.FindByID(ctx, id)
}

// post executes one GraphQL document, authenticated with a freshly minted
// admin token.
func (s *GraphQLStore) post(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	adminToken, err := s.tokens.IssueAdmin()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint admin token for store call").
			WithCode(http.StatusInternalServerError)
	}

	body, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, WrapStoreError(err, "failed to encode store request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, WrapStoreError(err, "failed to build store request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(s.header, "Bearer "+adminToken)

	res, err := s.client.Do(req)
	if err != nil {
		return nil, WrapStoreError(err, "store request failed")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, WrapStoreError(fmt.Errorf("unexpected status %d", res.StatusCode), "store request failed")
	}

	out := gqlResponse{}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, WrapStoreError(err, "failed to decode store response")
	}

	if len(out.Errors) > 0 {
		msg := out.Errors[0].Message
		s.logger.Error("GraphQL store returned errors", "error", msg)

		if strings.Contains(strings.ToLower(msg), "already exists") {
			return nil, ErrAlreadyRegistered
		}
		return nil, WrapStoreError(fmt.Errorf("graphql: %s", msg), "store rejected the operation")
	}

	return out.Data, nil
}
