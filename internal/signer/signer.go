// Package signer реализует подпись запросов к приемнику событий:
// HMAC-SHA256 поверх конкатенации тела запроса и метки времени.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Header-ы, сопровождающие подписанный запрос.
const (
	SignatureHeader = "X-Signature"
	TimestampHeader = "X-Timestamp"
	SignaturePrefix = "sha256="
)

type HMACSigner struct {
	key []byte
}

func NewHMACSigner(key string) *HMACSigner {
	return &HMACSigner{key: []byte(key)}
}

// Sign вычисляет подпись вида "sha256=<hex>" над body || ts.
func (s *HMACSigner) Sign(body []byte, ts string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(body)
	mac.Write([]byte(ts))
	return SignaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify сравнивает подпись с ожидаемой за константное время.
func (s *HMACSigner) Verify(body []byte, ts, signature string) bool {
	expected := s.Sign(body, ts)
	return hmac.Equal([]byte(expected), []byte(signature))
}
