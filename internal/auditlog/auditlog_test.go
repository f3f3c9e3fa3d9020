package auditlog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp:  testTime,
		Channel:    "C012ABCDEF",
		BlockCount: 3,
		Note:       "*Coffee Co* — -4.5",
	}
}

func newTestLog(t *testing.T) *Log {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "logs", "notifications.csv"))
}

func TestAppend_NewFile(t *testing.T) {
	l := newTestLog(t)
	require.NoError(t, l.Append([]Entry{testEntry()}))

	entries, err := l.Read()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "C012ABCDEF", entries[0].Channel)
	assert.Equal(t, 3, entries[0].BlockCount)
}

func TestAppend_ExistingFile(t *testing.T) {
	l := newTestLog(t)
	require.NoError(t, l.Append([]Entry{testEntry()}))

	e2 := testEntry()
	e2.Channel = "C0FFEE0000"
	require.NoError(t, l.Append([]Entry{e2}))

	entries, err := l.Read()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "C012ABCDEF", entries[0].Channel)
	assert.Equal(t, "C0FFEE0000", entries[1].Channel)
}

func TestRead_RoundTrip(t *testing.T) {
	l := newTestLog(t)
	original := testEntry()
	require.NoError(t, l.Append([]Entry{original}))

	entries, err := l.Read()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, original.Timestamp, entries[0].Timestamp)
	assert.Equal(t, original.Note, entries[0].Note)
}

func TestRead_NoFile(t *testing.T) {
	l := newTestLog(t)
	entries, err := l.Read()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUnmarshalEntry_BadFieldCount(t *testing.T) {
	_, err := UnmarshalEntry([]string{"too", "few"})
	require.Error(t, err)
}
