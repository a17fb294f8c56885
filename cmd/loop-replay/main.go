// loop-replay decodes a frame capture file and prints the resulting readings
// along with a summary of the retained history window.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chrissnell/wxcore/internal/history"
	"github.com/chrissnell/wxcore/internal/labels"
	"github.com/chrissnell/wxcore/internal/log"
	"github.com/chrissnell/wxcore/pkg/capture"
	"github.com/chrissnell/wxcore/pkg/units"
)

func main() {
	captureFile := flag.String("capture", "", "Capture file to replay (required)")
	station := flag.String("station-type", string(units.Davis), "Station type the frames came from")
	capacity := flag.Int("capacity", history.DefaultCapacity, "History capacity")
	verifyCRC := flag.Bool("verify-crc", true, "Reject frames whose CRC does not check")
	locale := flag.String("locale", "en", "Locale for trend and compass labels")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if *captureFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	h, err := history.New(*capacity)
	if err != nil {
		log.Fatalf("%v", err)
	}

	f, err := capture.Open(*captureFile)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer f.Close()

	opts := replayOptions{
		station:   units.StationType(*station),
		verifyCRC: *verifyCRC,
		locale:    *locale,
		labels:    labels.English{},
	}

	stats, err := replay(f.Reader, h, opts, os.Stdout, log.Named("replay"))
	if err != nil {
		log.Errorf("replay stopped: %v", err)
	}
	printSummary(os.Stdout, h, stats)
}
