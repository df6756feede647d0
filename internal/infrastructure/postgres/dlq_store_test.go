package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/finbooks/pkg/testutil"
)

func TestDLQStoreRecordRawAcceptsNonJSON(t *testing.T) {
	q := &fakeQuerier{}
	store := NewDLQStore(q)

	payload := []byte("this is not json")
	decodeErr := errors.New("envelope: decode: invalid character 't' looking for beginning of value")
	require.NoError(t, store.RecordRaw(context.Background(), "gl.events.posting.requested", payload, decodeErr))

	require.Len(t, q.execCalls, 1)
	call := q.execCalls[0]
	assert.Equal(t, "gl.events.posting.requested", call.args[0])

	stored, ok := call.args[1].(json.RawMessage)
	require.True(t, ok)
	require.True(t, json.Valid(stored), "stored payload must be valid jsonb input")

	var text string
	require.NoError(t, json.Unmarshal(stored, &text))
	assert.Equal(t, "this is not json", text)
}

func TestDLQStoreRecordRawKeepsJSONVerbatim(t *testing.T) {
	q := &fakeQuerier{}
	store := NewDLQStore(q)

	payload := []byte(`{"event_type":"gl.posting.requested","schema_version":1}`)
	require.NoError(t, store.RecordRaw(context.Background(), "gl.events.posting.requested", payload, errors.New("envelope: missing event_id")))

	require.Len(t, q.execCalls, 1)
	assert.Equal(t, json.RawMessage(payload), q.execCalls[0].args[1])
}

func TestDLQStoreRecordAccumulatesRetryCountOnRedelivery(t *testing.T) {
	q := &fakeQuerier{}
	store := NewDLQStore(q)

	env := testutil.NewEnvelope("gl.posting.requested", testutil.TestTenantID, map[string]string{"k": "v"})
	require.NoError(t, store.Record(context.Background(), env, "gl.events.posting.requested", errors.New("connection reset"), 2))

	require.Len(t, q.execCalls, 1)
	call := q.execCalls[0]
	assert.Equal(t, env.EventID, call.args[0])
	assert.Equal(t, 2, call.args[5])

	// The conflict clause adds this delivery's retries to the stored total
	// instead of replacing it.
	assert.Contains(t, call.sql, "retry_count = failed_events.retry_count + EXCLUDED.retry_count + 1")
}
