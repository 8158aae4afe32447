package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress_String(t *testing.T) {
	testCases := []struct {
		name        string
		addr        *Address
		expectedStr string
	}{
		{
			name: "simple path",
			addr: &Address{
				Path: []Segment{NewSegment("task"), NewSegment("compile")},
			},
			expectedStr: "task.compile",
		},
		{
			name: "path with index",
			addr: &Address{
				Path: []Segment{NewSegment("task"), NewSegmentWithIndex("shard", 3)},
			},
			expectedStr: "task.shard[3]",
		},
		{
			name:        "nil address",
			addr:        nil,
			expectedStr: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedStr, tc.addr.String())
		})
	}
}

func TestAddress_RoundTrip(t *testing.T) {
	testIDs := []string{
		"task.compile",
		"task.shard[3]",
		"build-step.jar[0]",
	}

	for _, id := range testIDs {
		t.Run(id, func(t *testing.T) {
			addr, err := ParseAddress(id)
			require.NoError(t, err)

			roundTripID := addr.String()
			assert.Equal(t, id, roundTripID)
			assert.EqualValues(t, id, addr.ID())

			roundTripAddr, err := ParseAddress(roundTripID)
			require.NoError(t, err)
			assert.True(t, addr.Equal(roundTripAddr))
		})
	}
}

func TestParseAddress_Invalid(t *testing.T) {
	testCases := []struct {
		name  string
		rawID string
	}{
		{name: "empty", rawID: ""},
		{name: "empty segment", rawID: "task..compile"},
		{name: "trailing dot", rawID: "task."},
		{name: "bad characters", rawID: "task.comp ile"},
		{name: "negative index", rawID: "task.shard[-1]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAddress(tc.rawID)
			assert.Error(t, err)
		})
	}
}

func TestAddress_Equal(t *testing.T) {
	addr1, _ := ParseAddress("task.a[0]")
	addr2, _ := ParseAddress("task.a[0]")
	addr3, _ := ParseAddress("task.a[1]")
	addr4, _ := ParseAddress("task.b[0]")

	assert.True(t, addr1.Equal(addr2))
	assert.False(t, addr1.Equal(addr3))
	assert.False(t, addr1.Equal(addr4))
	assert.False(t, addr1.Equal(nil))
	assert.False(t, (*Address)(nil).Equal(addr1))
	assert.True(t, (*Address)(nil).Equal(nil))
}
