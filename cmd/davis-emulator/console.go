package main

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/panjf2000/gnet/v2"
	"go.uber.org/zap"

	"github.com/chrissnell/wxcore/pkg/capture"
)

const (
	ack     = 0x06
	nak     = 0x21
	maxLoop = 1000
)

// console emulates a Vantage console's command interface on a gnet engine
type console struct {
	gnet.BuiltinEventEngine

	eng      gnet.Engine
	weather  *WeatherEmulator
	interval time.Duration
	capture  *capture.Writer
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// connState buffers a partial command line between OnTraffic calls
type connState struct {
	line []byte
}

func (c *console) OnBoot(eng gnet.Engine) gnet.Action {
	c.eng = eng
	c.logger.Info("console emulator is listening")
	return gnet.None
}

func (c *console) OnOpen(conn gnet.Conn) ([]byte, gnet.Action) {
	c.logger.Infof("client connected from %v", conn.RemoteAddr())
	conn.SetContext(&connState{})
	return nil, gnet.None
}

func (c *console) OnClose(conn gnet.Conn, err error) gnet.Action {
	if err != nil {
		c.logger.Infof("client %v disconnected: %v", conn.RemoteAddr(), err)
	}
	return gnet.None
}

func (c *console) OnTraffic(conn gnet.Conn) gnet.Action {
	st, _ := conn.Context().(*connState)
	if st == nil {
		st = &connState{}
		conn.SetContext(st)
	}

	buf, err := conn.Next(-1)
	if err != nil {
		return gnet.Close
	}
	st.line = append(st.line, buf...)

	for {
		i := bytes.IndexByte(st.line, '\n')
		if i < 0 {
			break
		}
		cmd := strings.TrimRight(string(st.line[:i]), "\r")
		st.line = st.line[i+1:]

		reply, frames := c.handleCommand(cmd)
		if len(reply) > 0 {
			conn.Write(reply)
		}
		if len(frames) > 0 {
			c.sendFrames(conn, frames)
		}
	}

	return gnet.None
}

// handleCommand returns the immediate reply to one command line and any
// LOOP packets that should follow it
func (c *console) handleCommand(cmd string) ([]byte, [][]byte) {
	fields := strings.Fields(strings.ToUpper(cmd))
	if len(fields) == 0 {
		// wake-up
		return []byte("\n\r"), nil
	}

	switch fields[0] {
	case "TEST":
		return []byte("\n\rTEST\n\r"), nil
	case "LOOP":
		n := 1
		if len(fields) > 1 {
			v, err := strconv.Atoi(fields[1])
			if err != nil || v < 1 {
				return []byte{nak}, nil
			}
			n = min(v, maxLoop)
		}
		c.logger.Debugf("sending %d LOOP packets", n)

		frames := make([][]byte, n)
		for i := range frames {
			frames[i] = c.weather.Frame(c.now())
		}
		return []byte{ack}, frames
	default:
		c.logger.Debugf("unknown command %q", cmd)
		return []byte{nak}, nil
	}
}

// sendFrames writes frames immediately, or paced at the console's LOOP
// interval from a separate goroutine
func (c *console) sendFrames(conn gnet.Conn, frames [][]byte) {
	for _, f := range frames {
		c.record(f)
	}

	if c.interval <= 0 {
		for _, f := range frames {
			conn.Write(f)
		}
		return
	}

	go func() {
		for _, f := range frames {
			time.Sleep(c.interval)
			if err := conn.AsyncWrite(f, nil); err != nil {
				return
			}
		}
	}()
}

func (c *console) record(frame []byte) {
	if c.capture == nil {
		return
	}
	if err := c.capture.Write(capture.Record{Time: c.now(), Station: "emulator", Frame: frame}); err != nil {
		c.logger.Warnf("could not write capture record: %v", err)
	}
}
