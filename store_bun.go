package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// OpenDatabase opens the configured sqlite DSN through the bun shim driver.
func OpenDatabase(cfg *Config) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		return nil, WrapStoreError(err, "failed to open database")
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// BunStore persists credentials in SQL. Uniqueness is enforced by the unique
// indexes on username and email, not by the caller's pre-lookup: a racing
// duplicate insert loses at the constraint and comes back as
// ErrAlreadyRegistered.
type BunStore struct {
	repo repository.Repository[*Credential]
	db   *bun.DB
}

var _ CredentialStore = (*BunStore)(nil)

func NewBunStore(db *bun.DB) *BunStore {
	repo := repository.NewRepository[*Credential](db, repository.ModelHandlers[*Credential]{
		NewRecord: func() *Credential { return &Credential{} },
		GetID: func(c *Credential) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Credential, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
	})

	return &BunStore{
		repo: repo,
		db:   db,
	}
}

// Init creates the credentials table when it does not exist yet.
func (s *BunStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*Credential)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return WrapStoreError(err, "failed to create credentials table")
	}
	return nil
}

func (s *BunStore) FindByUsername(ctx context.Context, username string) (*Credential, error) {
	record := &Credential{}

	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.username = ?", strings.TrimSpace(username)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, WrapStoreError(err, "credential lookup failed")
	}

	return record, nil
}

func (s *BunStore) FindByID(ctx context.Context, id string) (*Credential, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrIdentityNotFound
	}

	record := &Credential{}

	err = s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", uid).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, WrapStoreError(err, "credential lookup failed")
	}

	return record, nil
}

func (s *BunStore) Create(ctx context.Context, record *Credential) (*Credential, error) {
	prepareCredentialDefaults(record)

	created, err := s.repo.CreateTx(ctx, s.db, record)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyRegistered
		}
		return nil, WrapStoreError(err, "failed to create credential")
	}

	return created, nil
}

func (s *BunStore) Update(ctx context.Context, id string, changes *CredentialUpdate) (*Credential, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrIdentityNotFound
	}

	record, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if changes.IsZero() {
		return record, nil
	}

	if changes.Email != "" {
		record.Email = changes.Email
	}
	if changes.AvatarURL != "" {
		record.AvatarURL = changes.AvatarURL
	}
	if changes.PasswordHash != "" {
		record.PasswordHash = changes.PasswordHash
	}
	now := time.Now()
	record.UpdatedAt = &now

	if _, err := s.repo.UpdateTx(ctx, s.db, record, repository.UpdateByID(uid.String())); err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrAlreadyRegistered
		}
		return nil, WrapStoreError(err, "failed to update credential")
	}

	return record, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}
