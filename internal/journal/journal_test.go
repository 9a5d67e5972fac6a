package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1njure/mpit25-NetJaggers/internal/post"
)

// createTestJournal creates a new in-memory journal for testing.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpen_Memory(t *testing.T) {
	j := createTestJournal(t)

	n, err := j.Count(context.Background(), "any")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestOpen_FileIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j1.Append(ctx, Entry{SessionID: "s", Seq: 1, Op: OpFetch, RecordID: NoRecord, Outcome: OutcomeApplied}))
	require.NoError(t, j1.Close())

	j2, err := Open(path)
	require.NoError(t, err)
	defer j2.Close()

	n, err := j2.Count(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var mode string
	require.NoError(t, j2.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestClose_Nil(t *testing.T) {
	var j *Journal
	assert.NoError(t, j.Close())
}

func TestAppend_RoundTrip(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	entries := []Entry{
		{SessionID: "s1", Seq: 1, Op: OpFetch, RecordID: NoRecord, Outcome: OutcomeApplied, Generation: 1,
			Detail: map[string]string{"source": "https://example.com/news", "resolved": "https://example.com/news"}},
		{SessionID: "s1", Seq: 2, Op: OpEditBody, RecordID: 0, Outcome: OutcomeOK},
		{SessionID: "s1", Seq: 3, Op: OpEditSerialized, RecordID: 1, Outcome: OutcomeDirty,
			Detail: map[string]string{"cause": "unexpected EOF <&>"}},
	}
	for _, e := range entries {
		require.NoError(t, j.Append(ctx, e))
	}

	got, err := j.Entries(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, entries, got)
	assert.False(t, got[0].HasRecord())
	assert.True(t, got[1].HasRecord())
}

func TestAppend_DuplicateSeqIgnored(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	first := Entry{SessionID: "s", Seq: 1, Op: OpReset, RecordID: 0, Outcome: OutcomeOK}
	second := Entry{SessionID: "s", Seq: 1, Op: OpPublish, RecordID: 0, Outcome: string(post.KindValidation)}

	require.NoError(t, j.Append(ctx, first))
	require.NoError(t, j.Append(ctx, second))

	got, err := j.Entries(ctx, "s")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, OpReset, got[0].Op)
}

func TestEntries_OrderedBySeqAndScopedBySession(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	for _, seq := range []int64{3, 1, 2} {
		require.NoError(t, j.Append(ctx, Entry{SessionID: "a", Seq: seq, Op: OpEditTags, RecordID: 0, Outcome: OutcomeOK}))
	}
	require.NoError(t, j.Append(ctx, Entry{SessionID: "b", Seq: 1, Op: OpCopy, RecordID: 0, Outcome: OutcomeOK}))

	got, err := j.Entries(ctx, "a")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, e := range got {
		assert.Equal(t, int64(i+1), e.Seq)
	}

	empty, err := j.Entries(ctx, "missing")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRecordEntries(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Append(ctx, Entry{SessionID: "s", Seq: 1, Op: OpFetch, RecordID: NoRecord, Outcome: OutcomeApplied}))
	require.NoError(t, j.Append(ctx, Entry{SessionID: "s", Seq: 2, Op: OpEditBody, RecordID: 0, Outcome: OutcomeOK}))
	require.NoError(t, j.Append(ctx, Entry{SessionID: "s", Seq: 3, Op: OpEditBody, RecordID: 1, Outcome: OutcomeOK}))
	require.NoError(t, j.Append(ctx, Entry{SessionID: "s", Seq: 4, Op: OpReset, RecordID: 0, Outcome: OutcomeOK}))

	got, err := j.RecordEntries(ctx, "s", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, OpEditBody, got[0].Op)
	assert.Equal(t, OpReset, got[1].Op)
}

func TestMarshalDetail(t *testing.T) {
	out, err := marshalDetail(map[string]string{"b": "2", "a": "<1>"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"<1>","b":"2"}`, out)

	out, err = marshalDetail(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", out)

	d, err := unmarshalDetail("{}")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = unmarshalDetail("{broken")
	assert.Error(t, err)
}
