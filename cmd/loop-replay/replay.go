package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/chrissnell/wxcore/internal/errcode"
	"github.com/chrissnell/wxcore/internal/history"
	"github.com/chrissnell/wxcore/internal/types"
	"github.com/chrissnell/wxcore/internal/weatherstations"
	"github.com/chrissnell/wxcore/pkg/capture"
	"github.com/chrissnell/wxcore/pkg/crc16"
	"github.com/chrissnell/wxcore/pkg/units"
)

type replayOptions struct {
	station   units.StationType
	verifyCRC bool
	locale    string
	labels    types.LabelResolver
}

type replayStats struct {
	Records  int
	Decoded  int
	Rejected map[errcode.Code]int
}

// replay decodes every record from r into h, printing one line per reading
// to out. Rejected frames are counted and logged but do not stop the replay.
func replay(r *capture.Reader, h *history.History, opts replayOptions, out io.Writer, logger *zap.SugaredLogger) (replayStats, error) {
	stats := replayStats{Rejected: make(map[errcode.Code]int)}
	dec, err := weatherstations.DefaultRegistry().Lookup(opts.station)
	if err != nil {
		return stats, err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSTATION\tTEMP °C\tRH %\tBARO hPa\tTREND\tWIND km/h\tDIR\tDAY RAIN mm")

	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, err
		}
		stats.Records++

		// a short frame is a length error, whatever its trailing bytes hold
		if opts.verifyCRC && len(rec.Frame) == dec.FrameLength() && !crc16.Valid(rec.Frame) {
			stats.Rejected[errcode.CRCMismatch]++
			logger.Warnw("rejected frame", "record", stats.Records, "kind", string(errcode.CRCMismatch))
			continue
		}

		reading, err := dec.Decode(rec.Frame)
		if err != nil {
			code := errcode.Of(err)
			stats.Rejected[code]++
			logger.Warnw("rejected frame", "record", stats.Records, "kind", string(code), "len", len(rec.Frame), "error", err)
			continue
		}
		reading.Timestamp = rec.Time
		reading.StationName = rec.Station

		h.Append(reading)
		stats.Decoded++

		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.0f\t%.1f\t%s\t%.1f\t%s\t%.1f\n",
			reading.Timestamp.Format("2006-01-02 15:04:05"),
			reading.StationName,
			reading.OutTemp,
			reading.OutHumidity,
			reading.Barometer,
			orDash(opts.labels.TrendLabel(reading.BarometerTrend, opts.locale)),
			reading.WindSpeed,
			orDash(opts.labels.CompassPoint(reading.WindDir, opts.locale)),
			reading.DayRain,
		)
	}

	return stats, tw.Flush()
}

func printSummary(out io.Writer, h *history.History, stats replayStats) {
	fmt.Fprintf(out, "\n%d records, %d decoded, %d kept in history (capacity %d)\n",
		stats.Records, stats.Decoded, h.Len(), h.Capacity())
	for code, n := range stats.Rejected {
		fmt.Fprintf(out, "  rejected %-16s %d\n", code, n)
	}

	s, ok := h.Summary()
	if !ok {
		return
	}
	fmt.Fprintf(out, "window %s .. %s\n", s.From.Format("15:04:05"), s.To.Format("15:04:05"))
	fmt.Fprintf(out, "temperature mean %.1f°C min %.1f°C max %.1f°C, humidity mean %.0f%%\n",
		s.MeanTemp, s.MinTemp, s.MaxTemp, s.MeanHumidity)
	fmt.Fprintf(out, "pressure tendency %+.2f hPa/h\n", s.PressureTendency)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
