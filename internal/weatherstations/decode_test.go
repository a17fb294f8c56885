package weatherstations

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/wxcore/internal/errcode"
	"github.com/chrissnell/wxcore/internal/weatherstations/davis"
	"github.com/chrissnell/wxcore/pkg/units"
)

func TestDecodeDavis(t *testing.T) {
	frame := davis.EncodeLoopFrame(davis.LoopValues{OutTemp: 320, OutHumidity: 80})

	r, err := Decode(frame, units.Davis)
	require.NoError(t, err)
	assert.InDelta(t, 0, r.OutTemp, 1e-4)
	assert.Equal(t, float32(80), r.OutHumidity)
	assert.False(t, r.Timestamp.IsZero())
}

func TestDecodeUnsupportedStationCheckedFirst(t *testing.T) {
	// a malformed frame still reports the station problem
	_, err := Decode([]byte("junk"), units.StationType("campbell"))
	assert.ErrorIs(t, err, errcode.UnsupportedStation)
}

func TestRegistryUsesInjectedDecoder(t *testing.T) {
	now := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	reg := NewRegistry(davis.NewLoopDecoder(clockwork.NewFakeClockAt(now)))

	r, err := reg.Decode(davis.EncodeLoopFrame(davis.LoopValues{}), units.Davis)
	require.NoError(t, err)
	assert.Equal(t, now, r.Timestamp)

	_, err = reg.Decode(make([]byte, 10), units.Davis)
	assert.ErrorIs(t, err, errcode.FrameTooShort)

	assert.Equal(t, []units.StationType{units.Davis}, reg.StationTypes())
}
