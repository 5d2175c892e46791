// Command rf-engine is the acquisition and DSP engine's process
// entry point: it loads static configuration, brings up the
// control-plane link, the audio gateway streamer, Prometheus metrics,
// and the supervisor loop, then blocks until an OS signal asks it to
// stop.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cwsl/rf-engine/internal/audio"
	"github.com/cwsl/rf-engine/internal/config"
	"github.com/cwsl/rf-engine/internal/control"
	"github.com/cwsl/rf-engine/internal/metrics"
	"github.com/cwsl/rf-engine/internal/rfconfig"
	"github.com/cwsl/rf-engine/internal/sdr"
	"github.com/cwsl/rf-engine/internal/supervisor"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional, overrides Defaults())")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[main] config load failed: %v", err)
	}
	if cfg.Verbose {
		log.Printf("[main] starting with config: %+v", cfg)
	}

	m := metrics.New()
	mailbox := &control.Mailbox{}

	link := control.New(cfg.Control.Addr, cfg.Verbose, func(msg map[string]any) {
		desired := rfconfig.FromMessage(msg)
		if !desired.Valid() {
			log.Printf("[main] discarding invalid config message (both center_freq_hz and sample_rate_hz are zero): %v", msg)
			return
		}
		mailbox.Put(desired)
	}, m.ControlReconnects)
	link.Start()
	defer link.Stop()

	encoder, err := audio.NewOpusEncoder(cfg.Audio.Opus.Bitrate, cfg.Audio.Opus.Complexity, cfg.Audio.Opus.VBR)
	if err != nil {
		log.Fatalf("[main] audio encoder init failed: %v", err)
	}
	streamer := audio.NewStreamer(cfg.Audio.TCPHost, cfg.Audio.TCPPort, encoder)
	defer streamer.Close()

	// The real SDR driver is out of scope (spec.md §1/§6): this engine
	// ships driving a MockDriver so the binary starts and the supervisor
	// loop runs without attached hardware. The mock device delivers no
	// IQ bursts on its own, so each acquisition wait times out and goes
	// through recovery; no PSD is published. A production deployment
	// links in a real sdr.Driver implementation here instead.
	driver := &sdr.MockDriver{}
	if err := driver.Init(); err != nil {
		log.Fatalf("[main] driver init failed: %v", err)
	}

	sup := supervisor.New(driver, link, streamer, m, mailbox)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("[main] rf-engine running (control=%s, audio=%s:%d)", cfg.Control.Addr, cfg.Audio.TCPHost, cfg.Audio.TCPPort)
	sup.Run(ctx)
	log.Printf("[main] shutdown complete")
}
