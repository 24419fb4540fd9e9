// Package gqlrequest provides request-scoped GraphQL plumbing shared by the
// middleware stack: payload normalization for logging and metrics labels,
// and the cache-hint channel resolvers use to advertise response freshness.
package gqlrequest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// Envelope is the normalized GraphQL payload of an HTTP request.
type Envelope struct {
	Query             string
	OperationName     string
	DocumentSizeBytes int
}

// DecodeEnvelope extracts the GraphQL payload from a request and rewinds the
// body so the GraphQL handler can read it again.
func DecodeEnvelope(r *http.Request) (Envelope, error) {
	var env Envelope

	if r.Method == http.MethodGet {
		env.Query = r.URL.Query().Get("query")
		env.OperationName = r.URL.Query().Get("operationName")
		env.DocumentSizeBytes = len(env.Query)
		return env, nil
	}
	if r.Method != http.MethodPost || r.Body == nil {
		return env, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return env, err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	contentType := r.Header.Get("Content-Type")
	mediaType, _, parseErr := mime.ParseMediaType(contentType)
	if parseErr != nil || mediaType == "" {
		mediaType = strings.TrimSpace(contentType)
	}

	if mediaType == "application/graphql" {
		env.Query = string(body)
	} else if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 {
		var payload struct {
			Query         string `json:"query"`
			OperationName string `json:"operationName"`
		}
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return env, err
		}
		env.Query = payload.Query
		env.OperationName = payload.OperationName
	}

	env.DocumentSizeBytes = len(env.Query)
	return env, nil
}

// DocumentHash is a stable fingerprint of the query document and operation
// name, used to label logs and metrics without embedding full documents.
func (e Envelope) DocumentHash() string {
	h := sha256.New()
	for _, part := range []string{e.Query, e.OperationName} {
		fmt.Fprintf(h, "%d:%s|", len(part), part)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
