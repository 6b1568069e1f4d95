package auth_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	auth "github.com/toccatech/raspiauth"
)

func TestSchemaValidate(t *testing.T) {
	schema := auth.Schema{
		"email": {
			Type:     auth.TypeString,
			Required: true,
			Email:    true,
			Message:  "email is required and must be valid",
		},
		"password": {
			Type:      auth.TypeString,
			Required:  true,
			MinLength: 6,
			Message:   "password is required with at least 6 characters",
		},
		"nickname": {
			Type:      auth.TypeString,
			MaxLength: 10,
			Message:   "nickname is too long",
		},
		"plan": {
			Type:    auth.TypeString,
			In:      []any{"free", "pro"},
			Message: "unknown plan",
		},
		"age": {
			Type:    auth.TypeNumber,
			Message: "age must be a number",
		},
	}

	tests := []struct {
		name    string
		payload map[string]any
		want    auth.FieldErrors
	}{
		{
			name: "conforming payload is valid",
			payload: map[string]any{
				"email":    "alice@example.com",
				"password": "secret1",
				"nickname": "alice",
				"plan":     "pro",
				"age":      float64(30),
			},
			want: auth.FieldErrors{},
		},
		{
			name: "optional fields may be absent",
			payload: map[string]any{
				"email":    "alice@example.com",
				"password": "secret1",
			},
			want: auth.FieldErrors{},
		},
		{
			name: "unknown field yields exactly one error for that key",
			payload: map[string]any{
				"email":    "alice@example.com",
				"password": "secret1",
				"admin":    true,
			},
			want: auth.FieldErrors{
				"admin": "This field is not accepted for this route!",
			},
		},
		{
			name: "missing required field",
			payload: map[string]any{
				"email": "alice@example.com",
			},
			want: auth.FieldErrors{
				"password": "password is required with at least 6 characters",
			},
		},
		{
			name: "empty string counts as missing for required",
			payload: map[string]any{
				"email":    "",
				"password": "secret1",
			},
			want: auth.FieldErrors{
				"email": "email is required and must be valid",
			},
		},
		{
			name: "type mismatch is reported, not coerced",
			payload: map[string]any{
				"email":    "alice@example.com",
				"password": "secret1",
				"age":      "thirty",
			},
			want: auth.FieldErrors{
				"age": "age must be a number",
			},
		},
		{
			name: "min length",
			payload: map[string]any{
				"email":    "alice@example.com",
				"password": "short",
			},
			want: auth.FieldErrors{
				"password": "password is required with at least 6 characters",
			},
		},
		{
			name: "max length",
			payload: map[string]any{
				"email":    "alice@example.com",
				"password": "secret1",
				"nickname": "much-too-long-nickname",
			},
			want: auth.FieldErrors{
				"nickname": "nickname is too long",
			},
		},
		{
			name: "email syntax",
			payload: map[string]any{
				"email":    "not-an-email",
				"password": "secret1",
			},
			want: auth.FieldErrors{
				"email": "email is required and must be valid",
			},
		},
		{
			name: "allowed value set",
			payload: map[string]any{
				"email":    "alice@example.com",
				"password": "secret1",
				"plan":     "enterprise",
			},
			want: auth.FieldErrors{
				"plan": "unknown plan",
			},
		},
		{
			name: "one message per field, multiple failing fields accumulate",
			payload: map[string]any{
				"password": "short",
				"plan":     "enterprise",
				"extra":    "nope",
			},
			want: auth.FieldErrors{
				"email":    "email is required and must be valid",
				"password": "password is required with at least 6 characters",
				"plan":     "unknown plan",
				"extra":    "This field is not accepted for this route!",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, schema.Validate(tt.payload))
		})
	}
}

func TestSchemaValidatePattern(t *testing.T) {
	schema := auth.Schema{
		"code": {
			Type:    auth.TypeString,
			Pattern: regexp.MustCompile(`^[A-Z]{3}-[0-9]{4}$`),
			Message: "code must look like ABC-1234",
		},
	}

	assert.Empty(t, schema.Validate(map[string]any{"code": "ABC-1234"}))
	assert.Equal(t,
		auth.FieldErrors{"code": "code must look like ABC-1234"},
		schema.Validate(map[string]any{"code": "abc-1234"}),
	)
}

func TestSchemaValidateFirstFailingRuleWins(t *testing.T) {
	schema := auth.Schema{
		"handle": {
			Type:      auth.TypeString,
			Required:  true,
			MinLength: 4,
			Pattern:   regexp.MustCompile(`^[a-z]+$`),
			Message:   "invalid handle",
		},
	}

	// Fails both length and pattern, still one error with the one message.
	errs := schema.Validate(map[string]any{"handle": "A!"})
	assert.Len(t, errs, 1)
	assert.Equal(t, "invalid handle", errs["handle"])
}
