// Package token разбирает claims bearer-токена без проверки подписи.
// Проверка подписи остается задачей сервера; клиенту нужен только срок действия.
package token

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// segmentEncodings перечисляет допустимые варианты base64 для сегмента claims.
// JWT использует URL-алфавит без padding, но токены из старых версий клиента
// могли быть сохранены со стандартным алфавитом.
var segmentEncodings = []*base64.Encoding{
	base64.RawURLEncoding,
	base64.URLEncoding,
	base64.RawStdEncoding,
	base64.StdEncoding,
}

// Decode возвращает claims токена или nil, если токен структурно некорректен:
// пустая строка, число сегментов не равно трем, средний сегмент не base64
// или не JSON объект.
func Decode(raw string) jwt.MapClaims {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil
	}

	payload, ok := decodeSegment(parts[1])
	if !ok {
		return nil
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil
	}
	// json "null" дает nil map без ошибки
	if claims == nil {
		return nil
	}

	return claims
}

// ExpiresAt возвращает момент истечения из claim "exp".
// false, если claim отсутствует или имеет нечисловой тип.
func ExpiresAt(claims jwt.MapClaims) (time.Time, bool) {
	if claims == nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}

	return exp.Time, true
}

// Expiry декодирует токен и сразу возвращает срок его действия
func Expiry(raw string) (time.Time, bool) {
	return ExpiresAt(Decode(raw))
}

func decodeSegment(seg string) ([]byte, bool) {
	if seg == "" {
		return nil, false
	}
	for _, enc := range segmentEncodings {
		if b, err := enc.DecodeString(seg); err == nil {
			return b, true
		}
	}
	return nil, false
}
