package usecase

import (
	"testing"

	"ratebridge-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchZonesByName(t *testing.T) {
	remote := []domain.RemoteZone{
		{ID: "gid://1", Name: "Europe"},
		{ID: "gid://2", Name: "Asia"},
		{ID: "gid://3", Name: "Oceania"},
	}
	local := []domain.ZoneRateCount{
		{ZoneName: "Europe", RateCount: 52},
		{ZoneName: "asia", RateCount: 30}, // case mismatch is a non-match
		{ZoneName: "Africa", RateCount: 12},
	}

	result := MatchZonesByName(remote, local)

	require.Len(t, result.Matched, 1)
	assert.Equal(t, "gid://1", result.Matched[0].RemoteID)
	assert.Equal(t, 52, result.Matched[0].RateCount)

	require.Len(t, result.RemoteOnly, 2)
	assert.Equal(t, "Asia", result.RemoteOnly[0].Name)
	assert.Equal(t, "Oceania", result.RemoteOnly[1].Name)

	require.Len(t, result.LocalOnly, 2)
	assert.Equal(t, "asia", result.LocalOnly[0].ZoneName)
	assert.Equal(t, "Africa", result.LocalOnly[1].ZoneName)

	// Every input zone lands in exactly one partition
	assert.Equal(t, len(remote), len(result.Matched)+len(result.RemoteOnly))
	assert.Equal(t, len(local), len(result.Matched)+len(result.LocalOnly))
}

func TestMatchZonesByNameEmptyInputs(t *testing.T) {
	result := MatchZonesByName(nil, nil)
	assert.Empty(t, result.Matched)
	assert.Empty(t, result.RemoteOnly)
	assert.Empty(t, result.LocalOnly)
}
