package gqlrequest

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope_JSONPost(t *testing.T) {
	body := `{"query":"query Employees { employees { edges { cursor } } }","operationName":"Employees"}`
	r := httptest.NewRequest("POST", "/graphql", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")

	env, err := DecodeEnvelope(r)
	require.NoError(t, err)
	assert.Equal(t, "Employees", env.OperationName)
	assert.Contains(t, env.Query, "employees")

	// Body must be readable again by the GraphQL handler.
	replay, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(replay))
}

func TestDecodeEnvelope_RawGraphQLPost(t *testing.T) {
	r := httptest.NewRequest("POST", "/graphql", strings.NewReader("{ payRuns { totalCount } }"))
	r.Header.Set("Content-Type", "application/graphql")

	env, err := DecodeEnvelope(r)
	require.NoError(t, err)
	assert.Equal(t, "{ payRuns { totalCount } }", env.Query)
	assert.Empty(t, env.OperationName)
}

func TestDecodeEnvelope_Get(t *testing.T) {
	r := httptest.NewRequest("GET", "/graphql?query={health}&operationName=Health", nil)

	env, err := DecodeEnvelope(r)
	require.NoError(t, err)
	assert.Equal(t, "{health}", env.Query)
	assert.Equal(t, "Health", env.OperationName)
	assert.Equal(t, len("{health}"), env.DocumentSizeBytes)
}

func TestDecodeEnvelope_BadJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/graphql", strings.NewReader("{not json"))
	r.Header.Set("Content-Type", "application/json")

	_, err := DecodeEnvelope(r)
	require.Error(t, err)
}

func TestDocumentHash_Stable(t *testing.T) {
	a := Envelope{Query: "{ employees }", OperationName: "A"}
	b := Envelope{Query: "{ employees }", OperationName: "A"}
	c := Envelope{Query: "{ employees }", OperationName: "B"}

	assert.Equal(t, a.DocumentHash(), b.DocumentHash())
	assert.NotEqual(t, a.DocumentHash(), c.DocumentHash())
	assert.Len(t, a.DocumentHash(), 16)
}

func TestCacheHint_MinimumWins(t *testing.T) {
	_, hint := WithCacheHint(t.Context())

	_, ok := hint.MaxAge()
	assert.False(t, ok)

	hint.Record(5 * time.Minute)
	hint.Record(30 * time.Second)
	hint.Record(10 * time.Minute)

	age, ok := hint.MaxAge()
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, age)
}
