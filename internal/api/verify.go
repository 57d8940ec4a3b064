package api

import (
	"bytes"
	"io"
	"log"
	"net/http"

	"github.com/slack-go/slack"
)

const maxSlackBodyBytes = 1 << 20

func verifySlackSignature(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxSlackBodyBytes))
			if err != nil {
				writeError(w, http.StatusBadRequest, "failed to read request body")
				return
			}

			sv, err := slack.NewSecretsVerifier(r.Header, secret)
			if err != nil {
				log.Printf("slack signature rejected path=%s: %v", r.URL.Path, err)
				writeError(w, http.StatusUnauthorized, "invalid slack signature")
				return
			}
			if _, err := sv.Write(body); err != nil {
				writeError(w, http.StatusInternalServerError, "failed to verify slack signature")
				return
			}
			if err := sv.Ensure(); err != nil {
				log.Printf("slack signature rejected path=%s: %v", r.URL.Path, err)
				writeError(w, http.StatusUnauthorized, "invalid slack signature")
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
