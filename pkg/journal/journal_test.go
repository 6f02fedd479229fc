package journal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWriteCycle(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	w.nowFn = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	path, err := w.WriteCycle(&CycleRecord{
		Symbols: []string{"BTC", "ETH"},
		Sells:   []map[string]any{{"symbol": "BTC", "rsi": 82.1}},
		Success: true,
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "cycle_20260301_120000_00001.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rec CycleRecord
	require.NoError(t, json.Unmarshal(data, &rec))
	require.Equal(t, 1, rec.CycleNumber)
	require.Equal(t, []string{"BTC", "ETH"}, rec.Symbols)
	require.True(t, rec.Success)
}

func TestWriteCycleSequencesFiles(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	_, err := w.WriteCycle(&CycleRecord{Success: true})
	require.NoError(t, err)
	_, err = w.WriteCycle(&CycleRecord{Success: false, ErrorMessage: "venue unreachable"})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestWriteCycleNilRecord(t *testing.T) {
	w := NewWriter(t.TempDir())
	_, err := w.WriteCycle(nil)
	require.Error(t, err)
}
