package postgres

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/weights"
)

func TestWeightsRowRoundtrip(t *testing.T) {
	snap := weights.DefaultSnapshot()

	row := snapshotToRow(*snap)

	// Rows are keyed by component name so a stored version survives any
	// reordering of the component list.
	for class, vals := range row.Sets {
		for _, c := range weights.Components() {
			_, ok := vals[string(c)]
			assert.True(t, ok, "class %s missing %s", class, c)
		}
	}

	body, err := json.Marshal(row)
	require.NoError(t, err)
	var decoded weightsRow
	require.NoError(t, json.Unmarshal(body, &decoded))

	got, err := rowToSnapshot(snap.Version, decoded)
	require.NoError(t, err)
	require.NoError(t, got.Validate())
	assert.Equal(t, snap.Sets, got.Sets)
	assert.Equal(t, snap.Thresholds, got.Thresholds)
}

func TestRowToSnapshotRejectsMissingComponent(t *testing.T) {
	row := snapshotToRow(*weights.DefaultSnapshot())
	delete(row.Sets[string(domain.ClassDividendStock)], string(weights.Valuation))

	_, err := rowToSnapshot("v2026q1", row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valuation")
	assert.Contains(t, err.Error(), string(domain.ClassDividendStock))
}
