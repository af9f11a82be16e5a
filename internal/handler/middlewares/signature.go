package middlewares

import (
	"bytes"
	"io"
	"net/http"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/signer"
)

// SignatureValidation проверяет HMAC-подпись входящего запроса:
// подпись пересчитывается по тем же байтам тела плюс метка времени
// из заголовка. При nil-подписанте проверка отключена.
func SignatureValidation(s *signer.HMACSigner) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s == nil {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			defer r.Body.Close()

			// Восстанавливаем body для следующего обработчика
			r.Body = io.NopCloser(bytes.NewBuffer(body))

			givenSignature := r.Header.Get(signer.SignatureHeader)
			ts := r.Header.Get(signer.TimestampHeader)
			if givenSignature == "" || ts == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			if !s.Verify(body, ts, givenSignature) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
