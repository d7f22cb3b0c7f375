package token

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestDecode_ValidToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	raw := signed(t, jwt.MapClaims{"exp": exp, "user_id": 7})

	claims := Decode(raw)
	require.NotNil(t, claims)
	assert.EqualValues(t, 7, claims["user_id"])

	got, ok := ExpiresAt(claims)
	require.True(t, ok)
	assert.Equal(t, exp, got.Unix())
}

// Подпись не проверяется: токен, подписанный чужим ключом, тоже декодируется
func TestDecode_IgnoresSignature(t *testing.T) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"exp":9999999999,"sub":"123"}`))
	claims := Decode("header." + payload + ".signature")
	require.NotNil(t, claims)
	assert.Equal(t, "123", claims["sub"])
}

func TestDecode_PaddedStandardBase64(t *testing.T) {
	// 10 байт кодируются с padding
	payload := base64.StdEncoding.EncodeToString([]byte(`{"exp":10}`))
	require.Contains(t, payload, "=")

	claims := Decode("a." + payload + ".c")
	require.NotNil(t, claims)
	exp, ok := ExpiresAt(claims)
	require.True(t, ok)
	assert.Equal(t, int64(10), exp.Unix())
}

func TestDecode_WrongSegmentCount(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "single segment", token: "abc"},
		{name: "two segments", token: "part1.part2"},
		{name: "four segments", token: "part1.part2.part3.part4"},
		{name: "only dots", token: "...."},
		{name: "trailing dot on valid token", token: "a.eyJleHAiOjF9.c."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Decode(tt.token))
		})
	}
}

func TestDecode_InvalidPayload(t *testing.T) {
	enc := base64.RawURLEncoding.EncodeToString

	tests := []struct {
		name  string
		token string
	}{
		{name: "invalid base64", token: "part1.!!!invalid!!!.part3"},
		{name: "empty payload", token: "part1..part3"},
		{name: "not json", token: "part1." + enc([]byte("not json")) + ".part3"},
		{name: "json array", token: "part1." + enc([]byte(`[1,2,3]`)) + ".part3"},
		{name: "json string", token: "part1." + enc([]byte(`"claims"`)) + ".part3"},
		{name: "json number", token: "part1." + enc([]byte(`42`)) + ".part3"},
		{name: "json null", token: "part1." + enc([]byte(`null`)) + ".part3"},
		{name: "truncated json", token: "part1." + enc([]byte(`{"exp":`)) + ".part3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Nil(t, Decode(tt.token))
			})
		})
	}
}

func TestExpiresAt(t *testing.T) {
	tests := []struct {
		claims jwt.MapClaims
		name   string
		want   int64
		ok     bool
	}{
		{name: "nil claims", claims: nil},
		{name: "missing exp", claims: jwt.MapClaims{"sub": "1"}},
		{name: "string exp", claims: jwt.MapClaims{"exp": "tomorrow"}},
		{name: "float exp", claims: jwt.MapClaims{"exp": float64(1700000000)}, want: 1700000000, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExpiresAt(tt.claims)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.Unix())
			}
		})
	}
}

func TestExpiry(t *testing.T) {
	exp := time.Now().Add(-10 * time.Minute).Unix()
	got, ok := Expiry(signed(t, jwt.MapClaims{"exp": exp}))
	require.True(t, ok)
	assert.Equal(t, exp, got.Unix())

	_, ok = Expiry("garbage")
	assert.False(t, ok)
}
