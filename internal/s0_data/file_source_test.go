package s0_data

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource_YAML(t *testing.T) {
	src := NewFileSource("testdata/snapshots.yaml")
	assert.Equal(t, "file:snapshots.yaml", src.Name())

	snaps, err := src.ListByDate(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Len(t, snaps, 3)

	leader := snaps[0]
	assert.Equal(t, "000660", leader.Symbol)
	assert.Equal(t, "2025-01-15", leader.Date.Format(DateLayout))
	require.NotNil(t, leader.MA240)
	assert.Equal(t, 40.0, *leader.MA240)
	assert.Nil(t, leader.NPLRatio, "absent stays nil")

	bank := snaps[1]
	assert.True(t, bank.IsFinancial)
	assert.Nil(t, bank.NPLRatio)
	assert.Nil(t, bank.OPMTTM)
}

func TestFileSource_DateMismatch(t *testing.T) {
	src := NewFileSource("testdata/snapshots.yaml")

	_, err := src.ListByDate(context.Background(), time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)

	_, err = src.ListByDate(context.Background(), time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}

func TestFileSource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileSource("testdata/snapshots.yaml").ListByDate(ctx, time.Time{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseDocument_JSON(t *testing.T) {
	data := []byte(`{"date":"2025-01-15","snapshots":[{"symbol":"A","close":10,"rs60":50,"roe_ttm":0.12}]}`)

	doc, err := ParseDocument(data, "json")
	require.NoError(t, err)
	require.Len(t, doc.Snapshots, 1)

	snap := doc.Snapshots[0]
	assert.Equal(t, "A", snap.Symbol)
	require.NotNil(t, snap.ROETTM)
	assert.Equal(t, 0.12, *snap.ROETTM)
	assert.Nil(t, snap.OPMTTM)
	assert.Equal(t, 15, snap.Date.Day())
}

func TestParseDocument_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
	}{
		{"unknown json field", `{"date":"2025-01-15","snapshots":[{"symbol":"A","roe":0.1}]}`, "json"},
		{"unknown yaml field", "date: \"2025-01-15\"\nsnapshots:\n  - symbol: A\n    roe: 0.1\n", "yaml"},
		{"missing date", `{"snapshots":[]}`, "json"},
		{"bad date", `{"date":"15/01/2025","snapshots":[]}`, "json"},
		{"unsupported format", `date,symbol`, "csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.data), tt.format)
			assert.Error(t, err)
		})
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "none.yaml")).ListByDate(context.Background(), time.Time{})
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, "yaml", FormatFromPath("a/b/snapshots.YAML"))
	assert.Equal(t, "json", FormatFromPath("x.json"))
	assert.Equal(t, "", FormatFromPath("noext"))
}

func TestFileSource_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "day.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"date":"2025-02-03","snapshots":[{"symbol":"B","close":5}]}`), 0o644))

	snaps, err := NewFileSource(path).ListByDate(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "2025-02-03", snaps[0].Date.Format(DateLayout))
}

func TestDocumentSource(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"date":"2025-01-15","snapshots":[{"symbol":"A","close":10}]}`), "json")
	require.NoError(t, err)

	src := NewDocumentSource("request", doc)
	assert.Equal(t, "request", src.Name())

	snaps, err := src.ListByDate(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Len(t, snaps, 1)

	_, err = src.ListByDate(context.Background(), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}
