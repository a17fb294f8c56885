package davis

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chrissnell/wxcore/internal/errcode"
	"github.com/chrissnell/wxcore/internal/metrics"
	"github.com/chrissnell/wxcore/internal/types"
	"github.com/chrissnell/wxcore/pkg/config"
)

func newTestStation(t *testing.T, cfg config.DeviceData, out chan types.Reading) (*Station, *metrics.Metrics) {
	t.Helper()

	if cfg.Name == "" {
		cfg.Name = "vp2"
	}
	if cfg.Hostname == "" && cfg.SerialDevice == "" {
		cfg.Hostname, cfg.Port = "127.0.0.1", "22222"
	}

	m := metrics.New(prometheus.NewRegistry())
	s, err := NewStation(context.Background(), &sync.WaitGroup{}, cfg,
		NewLoopDecoder(clockwork.NewFakeClock()), out, m, zap.NewNop().Sugar())
	require.NoError(t, err)
	return s, m
}

func TestNewStationRequiresLink(t *testing.T) {
	_, err := NewStation(context.Background(), &sync.WaitGroup{}, config.DeviceData{Name: "vp2"},
		NewLoopDecoder(nil), nil, nil, zap.NewNop().Sugar())
	assert.ErrorIs(t, err, errcode.InvalidArgument)
}

func TestReadLoopFrame(t *testing.T) {
	f1 := EncodeLoopFrame(sampleValues)
	v := sampleValues
	v.OutTemp = 650
	f2 := EncodeLoopFrame(v)

	var stream bytes.Buffer
	stream.WriteString("\n\r garbage LO")
	stream.Write(f1)
	stream.Write(f2)
	stream.Write(f1[:40])

	br := bufio.NewReader(&stream)

	var frames [][]byte
	for {
		f, err := readLoopFrame(br)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		frames = append(frames, f)
	}
	require.Len(t, frames, 3)

	assert.Equal(t, f1, frames[0])
	assert.Equal(t, f2, frames[1])
	assert.Equal(t, f1[:40], frames[2])
}

func TestHandleFrameForwardsReading(t *testing.T) {
	out := make(chan types.Reading, 1)
	s, m := newTestStation(t, config.DeviceData{}, out)

	s.handleFrame(EncodeLoopFrame(sampleValues))

	require.Len(t, out, 1)
	r := <-out
	assert.Equal(t, "vp2", r.StationName)
	assert.Equal(t, "davis", r.StationType)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FramesReceived.WithLabelValues("vp2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FramesDecoded.WithLabelValues("vp2")))
}

func TestHandleFrameRejects(t *testing.T) {
	corrupt := EncodeLoopFrame(sampleValues)
	corrupt[20] ^= 0x01

	badHeader := EncodeLoopFrame(sampleValues)
	badHeader[0] = 'X'

	tests := []struct {
		name      string
		verifyCRC bool
		frame     []byte
		kind      errcode.Code
	}{
		{"short", false, EncodeLoopFrame(sampleValues)[:60], errcode.FrameTooShort},
		{"header", false, badHeader, errcode.InvalidHeader},
		{"crc", true, corrupt, errcode.CRCMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := make(chan types.Reading, 1)
			s, m := newTestStation(t, config.DeviceData{VerifyCRC: tt.verifyCRC}, out)

			s.handleFrame(tt.frame)

			assert.Empty(t, out)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.FramesRejected.WithLabelValues("vp2", string(tt.kind))))
		})
	}
}

func TestHandleFrameWithoutCRCCheckAcceptsCorruptFrame(t *testing.T) {
	frame := EncodeLoopFrame(sampleValues)
	frame[20] ^= 0x01

	out := make(chan types.Reading, 1)
	s, _ := newTestStation(t, config.DeviceData{}, out)
	s.handleFrame(frame)

	assert.Len(t, out, 1)
}

// fakeConsole answers one wake and one LOOP request on conn
func fakeConsole(t *testing.T, conn net.Conn, frames ...[]byte) {
	r := bufio.NewReader(conn)

	line, err := r.ReadString('\n')
	if !assert.NoError(t, err) || !assert.Equal(t, "\n", line) {
		return
	}
	conn.Write([]byte("\n\r"))

	line, err = r.ReadString('\n')
	if !assert.NoError(t, err) || !assert.Equal(t, "LOOP 2\n", line) {
		return
	}
	conn.Write([]byte{ACK})

	var payload []byte
	for _, f := range frames {
		payload = append(payload, f...)
	}
	conn.Write(payload)
}

func TestWakeAndGetLoopPackets(t *testing.T) {
	client, console := net.Pipe()
	defer client.Close()
	defer console.Close()

	out := make(chan types.Reading, 2)
	s, m := newTestStation(t, config.DeviceData{LoopCount: 2, VerifyCRC: true}, out)
	s.attach(client)

	v := sampleValues
	v.WindDir = 90
	done := make(chan struct{})
	go func() {
		defer close(done)
		fakeConsole(t, console, EncodeLoopFrame(sampleValues), EncodeLoopFrame(v))
	}()

	require.NoError(t, s.wake())
	require.NoError(t, s.getLoopPackets(2))
	<-done

	require.Len(t, out, 2)
	assert.Equal(t, uint16(270), (<-out).WindDir)
	assert.Equal(t, uint16(90), (<-out).WindDir)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FramesDecoded.WithLabelValues("vp2")))
}

func TestGetLoopPacketsKeepsReadAhead(t *testing.T) {
	client, console := net.Pipe()
	defer client.Close()
	defer console.Close()

	out := make(chan types.Reading, 2)
	s, _ := newTestStation(t, config.DeviceData{}, out)
	s.attach(client)

	v := sampleValues
	v.WindDir = 90

	// the console answers the first request with both batches in one write
	done := make(chan struct{})
	go func() {
		defer close(done)
		r := bufio.NewReader(console)
		for i := 0; i < 2; i++ {
			line, err := r.ReadString('\n')
			if !assert.NoError(t, err) || !assert.Equal(t, "LOOP 1\n", line) {
				return
			}
			if i == 0 {
				var payload []byte
				payload = append(payload, ACK)
				payload = append(payload, EncodeLoopFrame(sampleValues)...)
				payload = append(payload, ACK)
				payload = append(payload, EncodeLoopFrame(v)...)
				console.Write(payload)
			}
		}
	}()

	require.NoError(t, s.getLoopPackets(1))
	require.NoError(t, s.getLoopPackets(1))
	<-done

	require.Len(t, out, 2)
	assert.Equal(t, uint16(270), (<-out).WindDir)
	assert.Equal(t, uint16(90), (<-out).WindDir)
}
