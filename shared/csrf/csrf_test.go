package csrf

import (
	"encoding/hex"
	"testing"
)

func TestGenerateToken(t *testing.T) {
	token1, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	token2, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	// Tokens should be different
	if token1 == token2 {
		t.Error("Expected different tokens, got same")
	}

	raw, err := hex.DecodeString(token1)
	if err != nil {
		t.Fatalf("Token is not hex: %v", err)
	}
	if len(raw) < 24 {
		t.Errorf("Token carries too little entropy: %d bytes", len(raw))
	}
}

func TestValidateToken(t *testing.T) {
	token := "test-token-123"

	tests := []struct {
		name        string
		cookieToken string
		headerToken string
		want        bool
	}{
		{"matching tokens", token, token, true},
		{"different tokens", token, "different", false},
		{"prefix only", token, token[:4], false},
		{"empty cookie", "", token, false},
		{"empty header", token, "", false},
		{"both empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateToken(tt.cookieToken, tt.headerToken)
			if got != tt.want {
				t.Errorf("ValidateToken() = %v, want %v", got, tt.want)
			}
		})
	}
}
