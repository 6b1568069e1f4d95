package auth

import (
	"time"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Credential is the stored representation of one registered principal.
// The profile attributes (username, avatar) are carried through verbatim;
// the core only interprets the unique keys and the password hash.
type Credential struct {
	bun.BaseModel `bun:"table:credentials,alias:crd"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	AvatarURL     string     `bun:"avatar_url" json:"avatarURL,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

// Profile is the public representation of a credential record. It is what
// signin/signup/current-user hand back; the password hash never leaves the
// store layer in any response shape.
type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarURL,omitempty"`
}

// Public strips the credential down to its response representation.
func (c *Credential) Public() *Profile {
	return &Profile{
		ID:        c.ID.String(),
		Username:  c.Username,
		Email:     c.Email,
		AvatarURL: c.AvatarURL,
	}
}

// CredentialUpdate carries the mutable fields of a modify operation. Zero
// values mean "leave unchanged"; the store applies only what is set.
type CredentialUpdate struct {
	Email        string
	AvatarURL    string
	PasswordHash string
}

// IsZero reports whether the update would change nothing.
func (u *CredentialUpdate) IsZero() bool {
	return u == nil || (u.Email == "" && u.AvatarURL == "" && u.PasswordHash == "")
}

// prepareCredentialDefaults assigns the record id before insert. IDs derive
// deterministically from the email so re-registration attempts collide on
// the primary key as well as the unique index.
func prepareCredentialDefaults(record *Credential) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		if id, err := hashid.NewUUID(record.Email); err == nil {
			record.ID = id
		} else {
			record.ID = uuid.New()
		}
	}
}
