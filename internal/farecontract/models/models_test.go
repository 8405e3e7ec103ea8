package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webshop/pkg/domain"
)

func at(ms int64) *domain.NormalizedTime {
	return &domain.NormalizedTime{Timestamp: ms}
}

func TestValidityWindow(t *testing.T) {
	tests := []struct {
		name     string
		rights   []TravelRight
		wantFrom int64
		wantTo   int64
	}{
		{
			name: "min start and max end",
			rights: []TravelRight{
				{StartDateTime: at(10), EndDateTime: at(20)},
				{StartDateTime: at(5), EndDateTime: at(30)},
			},
			wantFrom: 5,
			wantTo:   30,
		},
		{
			name:     "empty list",
			rights:   nil,
			wantFrom: 0,
			wantTo:   0,
		},
		{
			name: "all ends missing gives an all-zero upper bound",
			rights: []TravelRight{
				{StartDateTime: at(10)},
				{StartDateTime: at(5)},
			},
			wantFrom: 5,
			wantTo:   0,
		},
		{
			name: "missing start counts as zero",
			rights: []TravelRight{
				{StartDateTime: at(10), EndDateTime: at(20)},
				{EndDateTime: at(15)},
			},
			wantFrom: 0,
			wantTo:   20,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := ValidityWindow(tt.rights)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantTo, to)
		})
	}
}

func TestToFareContract(t *testing.T) {
	raw := json.RawMessage(`{
		"orderId": "ORDER1",
		"created": {"seconds": 1600000000, "nanoseconds": 500000000},
		"state": 2,
		"totalAmount": "40.00",
		"currency": "NOK",
		"paymentType": [1],
		"travelRights": [
			{
				"id": "TR1",
				"type": "PreactivatedSingleTicket",
				"fareProductRef": "ATB:PreassignedFareProduct:8808c360",
				"startDateTime": {"seconds": 1600000000, "nanoseconds": 0},
				"endDateTime": {"seconds": 1600005400, "nanoseconds": 0}
			},
			{
				"id": "TR2",
				"type": "CarnetTicket",
				"startDateTime": {"seconds": 1599990000, "nanoseconds": 0},
				"endDateTime": {"seconds": 1600003600, "nanoseconds": 0},
				"usedAccesses": [{"startDateTime": {"seconds": 1599990000, "nanoseconds": 0}}]
			}
		]
	}`)

	doc, err := DecodeDocument(raw)
	require.NoError(t, err)
	fc := doc.ToFareContract("FC1", time.UTC)

	assert.Equal(t, "FC1", fc.ID)
	require.NotNil(t, fc.Created)
	assert.Equal(t, int64(1600000000500), fc.Created.Timestamp)
	assert.Equal(t, domain.CalendarParts{Year: 2020, Month: 9, Day: 13, Hour: 12, Minute: 26, Second: 40}, fc.Created.Parts)
	require.Len(t, fc.TravelRights, 2)
	require.Len(t, fc.TravelRights[1].UsedAccesses, 1)
	assert.Nil(t, fc.TravelRights[1].UsedAccesses[0].EndDateTime)
	assert.Equal(t, int64(1599990000000), fc.ValidFrom)
	assert.Equal(t, int64(1600005400000), fc.ValidTo)
}

func TestStateAt(t *testing.T) {
	fc := FareContract{ValidFrom: 1000, ValidTo: 2000}

	assert.Equal(t, StateWaiting, fc.StateAt(time.UnixMilli(999)))
	assert.Equal(t, StateValid, fc.StateAt(time.UnixMilli(1000)))
	assert.Equal(t, StateValid, fc.StateAt(time.UnixMilli(2000)))
	assert.Equal(t, StateExpired, fc.StateAt(time.UnixMilli(2001)))

	// The all-zero window is never valid.
	assert.Equal(t, StateExpired, FareContract{}.StateAt(time.UnixMilli(1)))
}

func TestSortNewestFirst(t *testing.T) {
	contracts := []FareContract{
		{ID: "a", Created: at(100)},
		{ID: "b"},
		{ID: "c", Created: at(300)},
		{ID: "d", Created: at(100)},
	}
	SortNewestFirst(contracts)

	ids := make([]string, len(contracts))
	for i, c := range contracts {
		ids[i] = c.ID
	}
	assert.Equal(t, []string{"c", "a", "d", "b"}, ids)
}
