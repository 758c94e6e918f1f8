package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientKey(t *testing.T) {
	assert.Equal(t, "clients/ACC00000001.json", ClientKey("ACC00000001"))
}

func TestWorkloadKeyNormalizesCoordinates(t *testing.T) {
	tests := []struct {
		year, month string
		want        string
	}{
		{"2025", "03", "workloads/ACC1/2025/03/w1.json"},
		{"2025", "3", "workloads/ACC1/2025/03/w1.json"},
		{"2025", "11", "workloads/ACC1/2025/11/w1.json"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WorkloadKey("ACC1", tt.year, tt.month, "w1"))
	}
}

func TestWorkloadPrefixLevels(t *testing.T) {
	assert.Equal(t, "workloads/ACC1/", WorkloadPrefix("ACC1"))
	assert.Equal(t, "workloads/ACC1/2025/", WorkloadPrefix("ACC1", "2025"))
	assert.Equal(t, "workloads/ACC1/2025/04/", WorkloadPrefix("ACC1", "2025", "4"))
}

func TestPeriodOf(t *testing.T) {
	year, month, err := PeriodOf("10-03-2025")
	require.NoError(t, err)
	assert.Equal(t, "2025", year)
	assert.Equal(t, "03", month)
}

func TestPeriodOfRejectsMalformedDates(t *testing.T) {
	for _, bad := range []string{"2025-03-10", "31-02-2025", "banana", ""} {
		_, _, err := PeriodOf(bad)
		assert.Error(t, err, bad)
	}
}

func TestPeriodRoundTrip(t *testing.T) {
	// The coordinates derived from a start date must reproduce the same
	// partition used at write time.
	year, month, err := PeriodOf("05-11-2025")
	require.NoError(t, err)

	period := Period(year, month)
	assert.Equal(t, "2025-11", period)

	y2, m2, err := SplitPeriod(period)
	require.NoError(t, err)
	assert.Equal(t, year, y2)
	assert.Equal(t, month, m2)
	assert.Equal(t,
		WorkloadKey("ACC1", year, month, "w9"),
		WorkloadKey("ACC1", y2, m2, "w9"))
}

func TestSplitPeriodRejectsMalformed(t *testing.T) {
	for _, bad := range []string{"2025", "25-03", "2025/03", "aaaa-bb", ""} {
		_, _, err := SplitPeriod(bad)
		assert.Error(t, err, bad)
	}
}

func TestIsDocumentAndIsMarker(t *testing.T) {
	assert.True(t, IsDocument("workloads/A/2025/03/w1.json"))
	assert.False(t, IsDocument("workloads/A/2025/03/"))
	assert.True(t, IsMarker("workloads/A/2025/03/"))
	assert.False(t, IsMarker("workloads/A/2025/03/w1.json"))
}
