package davis

// Console protocol details follow Davis' "Vantage Serial Communication
// Reference Manual" and the weewx vantage driver.

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	serial "github.com/tarm/goserial"
	"go.uber.org/zap"

	"github.com/chrissnell/wxcore/internal/errcode"
	"github.com/chrissnell/wxcore/internal/metrics"
	"github.com/chrissnell/wxcore/internal/types"
	"github.com/chrissnell/wxcore/pkg/capture"
	"github.com/chrissnell/wxcore/pkg/config"
	"github.com/chrissnell/wxcore/pkg/crc16"
)

const (
	// ACK - Acknowledge packet
	ACK = '\x06'

	wakeAttempts  = 3
	wakeDelay     = 1200 * time.Millisecond
	readTimeout   = 30 * time.Second
	dialTimeout   = 10 * time.Second
	retryInterval = 5 * time.Second
)

// Station holds our Davis weather station connection
type Station struct {
	ctx                context.Context
	wg                 *sync.WaitGroup
	config             config.DeviceData
	decoder            *LoopDecoder
	ReadingDistributor chan<- types.Reading
	metrics            *metrics.Metrics
	capture            *capture.Writer
	logger             *zap.SugaredLogger

	rwc  io.ReadWriteCloser
	br   *bufio.Reader
	dial func() (io.ReadWriteCloser, error)
}

// NewStation creates a Davis station from its device configuration
func NewStation(ctx context.Context, wg *sync.WaitGroup, cfg config.DeviceData, decoder *LoopDecoder, distributor chan<- types.Reading, m *metrics.Metrics, logger *zap.SugaredLogger) (*Station, error) {
	s := &Station{
		ctx:                ctx,
		wg:                 wg,
		config:             cfg,
		decoder:            decoder,
		ReadingDistributor: distributor,
		metrics:            m,
		logger:             logger.With("station", cfg.Name),
	}

	switch {
	case cfg.SerialDevice != "":
		s.logger.Info("configuring Davis station via serial port...")
		s.dial = s.dialSerial
	case cfg.Hostname != "" && cfg.Port != "":
		s.logger.Info("configuring Davis station via TCP/IP")
		s.dial = s.dialNetwork
	default:
		return nil, errcode.New(errcode.InvalidArgument, "davis.NewStation",
			fmt.Sprintf("station [%s] must define either a serial device or hostname+port", cfg.Name))
	}

	return s, nil
}

// StationName returns the configured device name
func (s *Station) StationName() string {
	return s.config.Name
}

// StartWeatherStation launches the station-polling goroutine
func (s *Station) StartWeatherStation() error {
	s.logger.Infof("starting Davis weather station [%v]...", s.config.Name)

	if s.config.CaptureFile != "" {
		w, err := capture.Create(s.config.CaptureFile)
		if err != nil {
			return err
		}
		s.capture = w
	}

	s.wg.Add(1)
	go s.run()

	return nil
}

// run keeps a console connection alive and pulls LOOP packets until the
// context is cancelled
func (s *Station) run() {
	defer s.wg.Done()
	defer s.disconnect()
	defer func() {
		if s.capture != nil {
			s.capture.Close()
		}
	}()

	for {
		if s.ctx.Err() != nil {
			s.logger.Info("cancellation request received, stopping LOOP reader")
			return
		}

		if s.rwc == nil {
			if err := s.connect(); err != nil {
				return
			}
		}

		err := s.wake()
		if err == nil {
			err = s.getLoopPackets(s.config.LoopCount)
		}
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			s.logger.Errorf("station link error: %v", err)
			s.disconnect()
			s.logger.Info("attempting to reconnect...")
			if !s.sleep(retryInterval) {
				return
			}
		}
	}
}

// connect dials the console, retrying until it succeeds or the context ends
func (s *Station) connect() error {
	for {
		rwc, err := s.dial()
		if err == nil {
			s.attach(rwc)
			return nil
		}

		s.logger.Errorf("could not connect: %v", err)
		s.logger.Errorf("sleeping %v and trying again", retryInterval)
		if !s.sleep(retryInterval) {
			return s.ctx.Err()
		}
	}
}

func (s *Station) dialSerial() (io.ReadWriteCloser, error) {
	s.logger.Debugf("opening serial port %s at %d baud", s.config.SerialDevice, s.config.Baud)
	sc := &serial.Config{Name: s.config.SerialDevice, Baud: s.config.Baud}
	return serial.OpenPort(sc)
}

func (s *Station) dialNetwork() (io.ReadWriteCloser, error) {
	console := net.JoinHostPort(s.config.Hostname, s.config.Port)
	s.logger.Infof("connecting to %v", console)
	return net.DialTimeout("tcp", console, dialTimeout)
}

// attach makes rwc the console link. Every read goes through one buffered
// reader so bytes read ahead of one exchange are still there for the next.
func (s *Station) attach(rwc io.ReadWriteCloser) {
	s.rwc = rwc
	s.br = bufio.NewReader(rwc)
}

func (s *Station) disconnect() {
	if s.rwc != nil {
		s.rwc.Close()
		s.rwc = nil
		s.br = nil
	}
}

// sleep waits for d, returning false if the context ended first
func (s *Station) sleep(d time.Duration) bool {
	select {
	case <-s.ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// extendDeadline pushes out the read deadline on links that support one
func (s *Station) extendDeadline() {
	if dl, ok := s.rwc.(interface{ SetReadDeadline(time.Time) error }); ok {
		dl.SetReadDeadline(time.Now().Add(readTimeout))
	}
}

// Write writes data to the connection and logs it
func (s *Station) Write(p []byte) (int, error) {
	s.logger.Debugf("writing to Davis station: %s", hex.EncodeToString(p))

	n, err := s.rwc.Write(p)
	if err != nil {
		return n, fmt.Errorf("error writing to Davis station: %w", err)
	}
	return n, nil
}

// wake sends line feeds until the console answers with "\n\r"
func (s *Station) wake() error {
	s.logger.Debug("waking Davis station...")
	s.extendDeadline()

	resp := make([]byte, 16)
	for i := 0; i < wakeAttempts; i++ {
		if _, err := s.Write([]byte("\n")); err != nil {
			return fmt.Errorf("error sending wake command: %w", err)
		}

		n, err := s.br.Read(resp)
		if err != nil {
			return fmt.Errorf("error reading wake response: %w", err)
		}
		if bytes.Contains(resp[:n], []byte("\n\r")) {
			s.logger.Debug("Davis station is awake")
			return nil
		}

		if !s.sleep(wakeDelay) {
			return s.ctx.Err()
		}
	}

	return fmt.Errorf("console did not wake after %d attempts", wakeAttempts)
}

// getLoopPackets requests n LOOP packets and hands each one to handleFrame
func (s *Station) getLoopPackets(n int) error {
	s.logger.Debugf("requesting %d LOOP packets from Davis station", n)
	s.extendDeadline()

	if _, err := s.Write([]byte(fmt.Sprintf("LOOP %d\n", n))); err != nil {
		return fmt.Errorf("error sending LOOP command: %w", err)
	}

	ack, err := s.br.ReadByte()
	if err != nil {
		return fmt.Errorf("error reading LOOP ACK: %w", err)
	}
	if ack != ACK {
		return fmt.Errorf("expected ACK, got %x", ack)
	}

	for count := 0; count < n; count++ {
		frame, err := readLoopFrame(s.br)
		if err != nil {
			return fmt.Errorf("error reading LOOP packet: %w", err)
		}
		if s.ctx.Err() != nil {
			return nil
		}
		s.handleFrame(frame)
		s.extendDeadline()
	}

	return nil
}

// handleFrame checks and decodes one raw frame and forwards the reading.
// Rejected frames are logged and counted; they never reach the distributor.
func (s *Station) handleFrame(frame []byte) {
	s.metrics.FrameReceived(s.config.Name)

	if s.capture != nil {
		err := s.capture.Write(capture.Record{Time: s.decoder.clock.Now(), Station: s.config.Name, Frame: frame})
		if err != nil {
			s.logger.Warnf("could not write frame to capture file: %v", err)
		}
	}

	if s.config.VerifyCRC && len(frame) == FrameLength && !crc16.Valid(frame) {
		s.reject(errcode.New(errcode.CRCMismatch, "davis.handleFrame", fmt.Sprintf("crc %#04x", crc16.Crc16(frame[:FrameLength-2]))), frame)
		return
	}

	reading, err := s.decoder.Decode(frame)
	if err != nil {
		s.reject(err, frame)
		return
	}
	reading.StationName = s.config.Name

	s.metrics.FrameDecoded(s.config.Name)

	select {
	case s.ReadingDistributor <- reading:
	case <-s.ctx.Done():
	}
}

func (s *Station) reject(err error, frame []byte) {
	s.metrics.FrameRejected(s.config.Name, err)
	s.logger.Warnw("rejected LOOP frame",
		"station", s.config.Name,
		"kind", string(errcode.Of(err)),
		"len", len(frame),
		"error", err,
	)
}

// readLoopFrame reads the next LOOP packet from br. It resynchronises on the
// "LOO" header, discarding any bytes before it. A packet cut short by EOF is
// returned as-is so the decoder can reject it.
func readLoopFrame(br *bufio.Reader) ([]byte, error) {
	matched := 0
	for matched < len(frameHeader) {
		b, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		switch {
		case b == frameHeader[matched]:
			matched++
		case b == frameHeader[0]:
			matched = 1
		default:
			matched = 0
		}
	}

	frame := make([]byte, FrameLength)
	copy(frame, frameHeader)
	n, err := io.ReadFull(br, frame[len(frameHeader):])
	switch {
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		return frame[:len(frameHeader)+n], nil
	case err != nil:
		return nil, err
	}
	return frame, nil
}
