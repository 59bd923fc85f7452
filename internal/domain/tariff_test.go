package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTariffsForZoneReplicatesUniversalCarriers(t *testing.T) {
	set := &TariffSet{
		Carriers: []CarrierInfo{
			{ID: "rm", ZoneScope: ZoneScopeSpecific},
			{ID: "dhl", ZoneScope: ZoneScopeUniversal},
		},
		Zones: []ZoneRef{{ID: 1, Name: "Europe"}, {ID: 2, Name: "Asia"}},
		ZoneTariffs: []ZoneTariff{
			{ZoneID: 1, ZoneName: "Europe", CarrierID: "rm", WeightKg: 1.0, TariffAmount: 3.0},
		},
		UniversalTariffs: map[string][]Tariff{
			"dhl": {{WeightKg: 1.0, TariffAmount: 9.0}},
		},
	}

	europe := set.TariffsForZone("Europe")
	require.Len(t, europe["rm"], 1)
	require.Len(t, europe["dhl"], 1)
	assert.Equal(t, 9.0, europe["dhl"][0].TariffAmount)

	// A zone with no zone-specific rows still sees the universal carrier
	asia := set.TariffsForZone("Asia")
	assert.Empty(t, asia["rm"])
	require.Len(t, asia["dhl"], 1)
}

func TestTariffsForZoneSortsBreakpoints(t *testing.T) {
	set := &TariffSet{
		ZoneTariffs: []ZoneTariff{
			{ZoneName: "Europe", CarrierID: "rm", WeightKg: 2.0, TariffAmount: 5.0},
			{ZoneName: "Europe", CarrierID: "rm", WeightKg: 0.5, TariffAmount: 2.0},
			{ZoneName: "Europe", CarrierID: "rm", WeightKg: 1.0, TariffAmount: 3.0},
		},
		UniversalTariffs: map[string][]Tariff{},
	}

	tariffs := set.TariffsForZone("Europe")["rm"]
	require.Len(t, tariffs, 3)
	assert.Equal(t, 0.5, tariffs[0].WeightKg)
	assert.Equal(t, 1.0, tariffs[1].WeightKg)
	assert.Equal(t, 2.0, tariffs[2].WeightKg)
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, (&TariffSet{UniversalTariffs: map[string][]Tariff{}}).IsEmpty())
	assert.False(t, (&TariffSet{
		UniversalTariffs: map[string][]Tariff{"dhl": {{WeightKg: 1, TariffAmount: 1}}},
	}).IsEmpty())
}
