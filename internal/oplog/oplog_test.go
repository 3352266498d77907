package oplog

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_Append(t *testing.T) {
	buf := NewBuffer(4)

	entry := buf.Append("INIT", "secure connection established")

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "INIT", entry.Action)
	assert.Equal(t, "secure connection established", entry.Detail)
	assert.Equal(t, 1, buf.Len())
}

func TestBuffer_EvictsOldestAtCapacity(t *testing.T) {
	buf := NewBuffer(3)

	for i := 0; i < 5; i++ {
		buf.Append("STEP", fmt.Sprintf("detail-%d", i))
	}

	entries := buf.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "detail-2", entries[0].Detail)
	assert.Equal(t, "detail-4", entries[2].Detail)
}

func TestBuffer_Replace(t *testing.T) {
	buf := NewBuffer(3)
	buf.Append("LOCAL", "will be discarded")

	history := []Entry{
		{ID: "a", Action: "ADMIN", Detail: "first"},
		{ID: "b", Action: "ADMIN", Detail: "second"},
		{ID: "c", Action: "ADMIN", Detail: "third"},
		{ID: "d", Action: "ADMIN", Detail: "fourth"},
	}
	buf.Replace(history)

	entries := buf.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].ID)
	assert.Equal(t, "c", entries[2].ID)
}

func TestBuffer_DefaultCapacity(t *testing.T) {
	buf := NewBuffer(0)

	for i := 0; i < DefaultCapacity+5; i++ {
		buf.Append("STEP", "x")
	}

	assert.Equal(t, DefaultCapacity, buf.Len())
}

func TestToast_Expiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	toast := NewToast("access granted", SeveritySuccess, now)

	assert.False(t, toast.Expired(now))
	assert.False(t, toast.Expired(now.Add(ToastDuration-time.Millisecond)))
	assert.True(t, toast.Expired(now.Add(ToastDuration)))
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "success", SeveritySuccess.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
}

func TestBuffer_ConcurrentWriters(t *testing.T) {
	buf := NewBuffer(DefaultCapacity)

	// The session refresher appends from a command goroutine while the
	// update loop appends and replaces; the buffer must stay coherent.
	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				buf.Append("AUTH", fmt.Sprintf("writer-%d-%d", w, i))
			}
		}(w)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			buf.Replace([]Entry{{ID: "a1", Action: "SYNC", Detail: "audit import"}})
			buf.Entries()
		}
	}()
	wg.Wait()

	assert.LessOrEqual(t, buf.Len(), DefaultCapacity)
	for _, entry := range buf.Entries() {
		assert.NotEmpty(t, entry.Action)
	}
}
