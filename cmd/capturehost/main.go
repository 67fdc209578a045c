// Command capture_host is CH, the Anvil Forge out-of-process recording
// and encoding host (spec.md §6). It either runs standalone (-standalone)
// or attached to a Forge process, exiting once that parent exits.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/anvilforge/rig/internal/capture"
	"github.com/anvilforge/rig/internal/config"
	"github.com/anvilforge/rig/internal/display"
	"github.com/anvilforge/rig/internal/display/outputsink"
	"github.com/anvilforge/rig/internal/encoder"
	"github.com/anvilforge/rig/internal/forgeconn"
	"github.com/anvilforge/rig/internal/logging"
	"github.com/anvilforge/rig/internal/recording"
)

var log = logging.L("capturehost")

// cliArgs is the parsed form of spec.md §6's CLI contract.
type cliArgs struct {
	standalone       bool
	forgePID         int
	startEventHandle uintptr
}

func parseArgs(args []string) (cliArgs, int) {
	if len(args) == 0 {
		return cliArgs{}, -1
	}
	if args[0] == "-standalone" {
		return cliArgs{standalone: true}, 0
	}
	if len(args) < 2 {
		return cliArgs{}, -4
	}
	pid, err := strconv.Atoi(args[0])
	if err != nil {
		return cliArgs{}, -2
	}
	handle, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return cliArgs{}, -3
	}
	return cliArgs{forgePID: pid, startEventHandle: uintptr(handle)}, 0
}

func main() {
	args, code := parseArgs(os.Args[1:])
	if code != 0 {
		os.Exit(code)
	}

	cfg, err := config.LoadCaptureHostConfig(os.Getenv("CAPTUREHOST_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "capture_host: config:", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogFormat, cfg.LogLevel, nil)

	if !args.standalone {
		cfg.ForgePID = args.forgePID
	}
	cfg.Standalone = args.standalone

	clock := capture.NewHostClock()

	outputFactory := recording.NewFileOutputFactory(outputsink.LocalDisk{Dir: "recordings"})

	videoEncoder, frameEnc := buildVideoEncoder(cfg)
	encoderAdapter := recording.NewEncoderAdapter(videoEncoder)
	pipeline := recording.NewFramePipeline(frameEnc, outputFactory)

	gameCapture := recording.NewFramebufferGameCapture(clock.Now, pipeline.Forward)

	watchdog := &recording.Watchdog{}
	anvil := recording.NewAnvilClient()

	// channel is both Controller's EventSender and the source of inbound
	// CH commands; the dispatcher that handles those commands needs
	// controller to exist first, so route through a forwarding closure
	// rather than constructing the channel twice.
	var dispatcher *recording.Dispatcher
	channel := forgeconn.New(&forgeconn.Config{ServerURL: cfg.ForgeControlURL}, func(data []byte) {
		dispatcher.Handle(data)
	})

	controller := recording.NewController(
		anvil,
		channel,
		watchdog,
		gameCapture,
		encoderAdapter,
		recording.NewSoftwareMicSource(),
		recording.NewSoftwareVideoSubsystem(),
		outputFactory,
		uint32(cfg.DefaultTargetWidth),
	)
	dispatcher = recording.NewDispatcher(controller, recording.StaticMicEnumerator{})

	displayDone := startDisplayProvider(cfg, gameCapture)
	defer close(displayDone)

	go channel.Start()
	defer channel.Stop()

	forgeExited := make(chan struct{})
	if !cfg.Standalone {
		if err := recording.SignalStartEvent(args.startEventHandle); err != nil {
			log.Warn("failed to signal Forge's start event", "error", err)
		}
		go func() {
			recording.WaitForProcessExit(cfg.ForgePID)
			close(forgeExited)
		}()
	}

	log.Info("capture host is running", "standalone", cfg.Standalone, "forge_pid", cfg.ForgePID)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info("shutting down capture host on signal")
	case <-forgeExited:
		log.Info("forge process exited, shutting down capture host")
	}
}

// displayTickRate drives the Display provider's render tick; spec.md
// doesn't pin a rate, so this follows a conventional capture framerate.
const displayTickRate = 30 * time.Millisecond

// startDisplayProvider wires the §4.13 Display provider over the
// game_capture source when a consumer pipe is configured, driving its
// render tick on a background goroutine until the returned channel is
// closed.
func startDisplayProvider(cfg *config.CaptureHostConfig, source display.Source) chan struct{} {
	done := make(chan struct{})
	if cfg.DisplayConsumerPipe == "" {
		return done
	}

	registry := display.NewRegistry(display.NewSoftwareGraphicsContext())
	consumer := display.NewIPCConsumer(cfg.DisplayConsumerPipe)
	registry.Connect("game_capture", consumer)
	registry.SetSource("game_capture", source)
	registry.SetEnabled("game_capture", true)

	go func() {
		ticker := time.NewTicker(displayTickRate)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				registry.StopAll()
				return
			case <-ticker.C:
				registry.RenderTick()
			}
		}
	}()
	return done
}

// buildVideoEncoder picks the WebRTC-shaped adapter cfg.VideoEncoder
// names. encoder.NVENCAdapter's native session contract (nvencSession,
// nvencFactory) is deliberately unexported, so it can only ever be wired
// from inside the encoder package itself (its own tests do this with a
// fake session) - there is no real CUDA/NVENC binding anywhere in this
// stack for cmd/capturehost to hand it from outside, so "nvenc" falls
// back to the same X264Adapter path everything else uses, with a warning.
func buildVideoEncoder(cfg *config.CaptureHostConfig) (encoder.VideoEncoder, encoder.VideoEncoder) {
	if cfg.VideoEncoder == "nvenc" {
		log.Warn("nvenc has no wireable native session outside internal/encoder; using x264 instead")
	}
	adapter := encoder.NewX264Adapter()
	return adapter, adapter
}
