package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "secret1"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("wrongpass", hash)
	req.NoError(err)
	req.False(match)
}

func TestComparePassword_MalformedHash(t *testing.T) {
	req := require.New(t)

	_, err := ComparePassword("secret1", "not-a-hash")
	req.Error(err)
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{"alice", "secret1"}, false},
		{"Username too short", RegisterRequest{"al", "secret1"}, true},
		{"Username with space", RegisterRequest{"al ice", "secret1"}, true},
		{"Password too short", RegisterRequest{"alice", "short"}, true},
		{"Missing username", RegisterRequest{"", "secret1"}, true},
		{"Missing password", RegisterRequest{"alice", ""}, true},
		{"Password too long", RegisterRequest{"alice", strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestProfileValidation(t *testing.T) {
	req := require.New(t)

	// A 100-character bio is the documented maximum
	req.NoError(ValidateProfile(ProfileRequest{DisplayName: "Alice", Bio: strings.Repeat("x", 100)}))

	// One character over is rejected, never truncated
	req.Error(ValidateProfile(ProfileRequest{DisplayName: "Alice", Bio: strings.Repeat("x", 101)}))

	// Display name is required
	req.Error(ValidateProfile(ProfileRequest{DisplayName: "", Bio: "hello"}))
}

// BenchmarkHashPassword measures the CPU/RAM impact of a login attempt.
func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("a-long-enough-password")
	}
}
