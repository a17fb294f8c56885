// davis-emulator serves a simulated Davis Vantage console over TCP so the
// station transport can be exercised without hardware.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/panjf2000/gnet/v2"

	"github.com/chrissnell/wxcore/internal/log"
	"github.com/chrissnell/wxcore/pkg/capture"
)

func main() {
	listen := flag.String("listen", "tcp://127.0.0.1:22222", "Address to listen on")
	interval := flag.Duration("interval", 2*time.Second, "Delay between LOOP packets (0 sends them back to back)")
	badCRC := flag.Float64("bad-crc-rate", 0, "Probability (0.0-1.0) of sending a packet with a corrupt CRC")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for generated weather")
	captureFile := flag.String("capture", "", "Append every sent packet to this capture file")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	c := &console{
		weather:  NewWeatherEmulator(*seed, *badCRC),
		interval: *interval,
		logger:   log.Named("davis-emulator"),
		now:      time.Now,
	}

	if *captureFile != "" {
		w, err := capture.Create(*captureFile)
		if err != nil {
			log.Fatalf("could not open capture file: %v", err)
		}
		defer w.Close()
		c.capture = w
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("shutdown signal received, stopping emulator...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.eng.Stop(ctx); err != nil {
			log.Errorf("error stopping engine: %v", err)
		}
	}()

	log.Infof("starting Davis console emulator on %s", *listen)
	if err := gnet.Run(c, *listen, gnet.WithMulticore(false), gnet.WithTCPNoDelay(gnet.TCPNoDelay)); err != nil {
		log.Fatalf("emulator error: %v", err)
	}
}
