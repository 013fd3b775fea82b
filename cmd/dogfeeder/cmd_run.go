package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/AnnaPov19/DogFeeder/internal/config"
	"github.com/AnnaPov19/DogFeeder/internal/feeder"
	"github.com/AnnaPov19/DogFeeder/internal/metrics"
	"github.com/AnnaPov19/DogFeeder/internal/mqtt"
	"github.com/AnnaPov19/DogFeeder/internal/network"
	"github.com/AnnaPov19/DogFeeder/internal/notify"
	"github.com/AnnaPov19/DogFeeder/internal/status"
	"github.com/AnnaPov19/DogFeeder/internal/web"
)

// errFeederStopped is returned when the orchestrator exits without a signal.
var errFeederStopped = errors.New("feeder stopped unexpectedly")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the feeding schedule",
	Long: `Run the feeder daemon: wait for the network, then dispense at every
scheduled time, weigh the bowl and send notifications until interrupted.`,
	RunE: runDaemon,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSlice("schedule", nil, "Feeding times as HH:MM (repeatable)")
	f.String("broker", "", `MQTT broker address ("" in the config disables MQTT)`)
	f.Duration("heartbeat", 0, "MQTT heartbeat interval (0 to disable)")
	f.String("http", "", "HTTP status address (empty to disable)")
	f.String("pushcut-url", "", "Pushcut webhook URL (empty to disable)")
	f.Bool("no-rtc", false, "Use the host clock instead of the DS3231")
	f.Bool("no-led", false, "Disable the heartbeat LED")
	f.Bool("no-wait", false, "Skip the boot network wait")
}

// applyRunFlags copies explicitly set run flags over the loaded configuration.
func applyRunFlags(f flagSet, c *config.Config) error {
	var err error
	if f.Changed("schedule") {
		if c.Schedule, err = f.GetStringSlice("schedule"); err != nil {
			return err
		}
	}
	if f.Changed("broker") {
		if c.MQTT.Broker, err = f.GetString("broker"); err != nil {
			return err
		}
	}
	if f.Changed("heartbeat") {
		if c.MQTT.Heartbeat, err = f.GetDuration("heartbeat"); err != nil {
			return err
		}
	}
	if f.Changed("http") {
		if c.HTTP.Addr, err = f.GetString("http"); err != nil {
			return err
		}
	}
	if f.Changed("pushcut-url") {
		if c.Pushcut.URL, err = f.GetString("pushcut-url"); err != nil {
			return err
		}
	}
	for name, target := range map[string]*bool{
		"no-rtc":  &c.RTC.Enabled,
		"no-led":  &c.LED.Enabled,
		"no-wait": &c.Network.Wait,
	} {
		if !f.Changed(name) {
			continue
		}
		off, err := f.GetBool(name)
		if err != nil {
			return err
		}
		*target = !off
	}
	return nil
}

// flagSet is the part of pflag.FlagSet applyRunFlags reads.
type flagSet interface {
	Changed(name string) bool
	GetString(name string) (string, error)
	GetStringSlice(name string) ([]string, error)
	GetDuration(name string) (time.Duration, error)
	GetBool(name string) (bool, error)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if err := loadConfig(cmd); err != nil {
		return err
	}
	if err := applyRunFlags(cmd.Flags(), cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	fc, err := cfg.Feeder()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	var hw closers
	defer func() {
		if err := hw.Close(); err != nil {
			logger.Error().Err(err).Msg("hardware cleanup failed")
		}
	}()

	display, err := openDisplay(cfg.Display, &hw)
	if err != nil {
		return err
	}
	clk := openClock(cfg.RTC, loc, &hw, logger)

	// The boot wait is the only phase a signal cancels directly; afterwards
	// signals go through runLoop so SHUTDOWN is published.
	waitCtx, stopWait := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	if cfg.Network.Wait {
		err := network.Wait(waitCtx, network.Interface{Name: cfg.Network.Interface}, display, cfg.Display.Cols, cfg.Network.Step, logger)
		if err != nil {
			stopWait()
			return fmt.Errorf("network wait: %w", err)
		}
	}
	stopWait()

	sensor, err := openScale(cfg.Scale)
	if err != nil {
		return err
	}
	actuator, err := openServo(cfg.Dispenser, &hw)
	if err != nil {
		return err
	}
	led := openLED(cfg.LED, &hw, logger)

	met := metrics.New()
	tracker := status.NewTracker(clk.Now(), status.Config{
		Schedule:    fc.Schedule,
		PollMs:      fc.Timing.PollInterval.Milliseconds(),
		WindowMs:    fc.Timing.Window.Milliseconds(),
		MidpointMs:  fc.Timing.Midpoint.Milliseconds(),
		NoiseFloor:  fc.NoiseFloor,
		HeartbeatMs: cfg.MQTT.Heartbeat.Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		HTTPPort:    cfg.HTTP.Addr,
		Notifiers:   notifierNames(cfg),
	})
	tracker.SetClock(clk.Now)
	if net := network.ReadInfo(); net != nil {
		tracker.SetNetwork(net)
		logger.Info().Str("network", net.Describe()).Msg("network info")
	}

	var (
		publisher  mqtt.Publisher = nopPublisher{}
		mqttStatus mqtt.ConnectionStatus
		senders    []notify.Sender
	)
	if cfg.Pushcut.URL != "" {
		senders = append(senders, notify.NewPushcut(cfg.Pushcut.URL, cfg.Pushcut.Timeout))
	}
	if cfg.MQTT.Broker != "" {
		p := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, logger.With().Str("component", "mqtt").Logger())
		defer p.Close()
		publisher, mqttStatus = p, p
		senders = append(senders, notify.NewMQTT(p))
	}
	timeout := cfg.Pushcut.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dispatcher := notify.NewDispatcher(senders, timeout, met, logger.With().Str("component", "notify").Logger())

	orch, err := feeder.New(fc, feeder.Deps{
		Clock:      clk,
		Sensor:     sensor,
		Actuator:   actuator,
		Display:    display,
		Dispatcher: dispatcher,
		Indicator:  led,
		Observer:   feeder.Observers{tracker, met},
		Logger:     logger.With().Str("component", "feeder").Logger(),
	})
	if err != nil {
		return err
	}

	publishStartup(publisher, mqttStatus, tracker, logger)

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, met.Handler())
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("http server error")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn().Err(err).Msg("http server shutdown failed")
			}
		}()
		logger.Info().Str("addr", cfg.HTTP.Addr).Msg("http status server listening")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	var runErr error
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		runErr = orch.Run(ctx)
	}()

	var tick <-chan time.Time
	if cfg.MQTT.Heartbeat > 0 {
		ticker := time.NewTicker(cfg.MQTT.Heartbeat)
		defer ticker.Stop()
		tick = ticker.C
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	loopErr := runLoop(publisher, mqttStatus, tracker, clk.Now, tick, sigCh, finished, logger)
	cancel()
	<-finished
	dispatcher.Wait()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return loopErr
}

// runLoop publishes heartbeats until a signal arrives or the feeder stops,
// then publishes SHUTDOWN.
func runLoop(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal, finished <-chan struct{}, log zerolog.Logger) error {
	for {
		select {
		case s := <-sig:
			log.Info().Stringer("signal", s).Msg("shutting down")
			publishShutdown(publisher, mqttStatus, tracker, now, signalName(s), log)
			return nil

		case <-finished:
			publishShutdown(publisher, mqttStatus, tracker, now, "STOPPED", log)
			return errFeederStopped

		case <-tick:
			event := mqtt.SystemEvent{Timestamp: now(), Event: "HEARTBEAT"}
			if tracker != nil {
				refresh(tracker, mqttStatus)
				if net := network.ReadInfo(); net != nil {
					tracker.SetNetwork(net)
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				log.Debug().
					Dur("uptime", snap.Uptime()).
					Int("fired", snap.Counts.Fired).
					Int("missed", snap.Counts.Missed).
					Int("dispensed", snap.Counts.Dispensed).
					Msg("heartbeat")
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Warn().Err(err).Msg("heartbeat publish error")
			}
		}
	}
}

func publishStartup(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, log zerolog.Logger) {
	refresh(tracker, mqttStatus)
	snap := tracker.Snapshot()
	event := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(event); err != nil {
		log.Warn().Err(err).Msg("failed to publish startup event")
		return
	}
	log.Info().Msg("published startup event")
}

func publishShutdown(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, reason string, log zerolog.Logger) {
	event := mqtt.SystemEvent{
		Timestamp: now(),
		Event:     "SHUTDOWN",
		Reason:    reason,
		Retained:  true,
	}
	if tracker != nil {
		refresh(tracker, mqttStatus)
		event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", reason)
	}
	if err := publisher.PublishSystem(event); err != nil {
		log.Warn().Err(err).Msg("failed to publish shutdown event")
		return
	}
	log.Info().Str("reason", reason).Msg("published shutdown event")
}

func refresh(tracker *status.Tracker, mqttStatus mqtt.ConnectionStatus) {
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

func notifierNames(c *config.Config) []string {
	var names []string
	if c.Pushcut.URL != "" {
		names = append(names, "pushcut")
	}
	if c.MQTT.Broker != "" {
		names = append(names, "mqtt")
	}
	return names
}

// nopPublisher stands in when MQTT is disabled.
type nopPublisher struct{}

func (nopPublisher) PublishReading(feeder.Reading, string) error { return nil }
func (nopPublisher) PublishSystem(mqtt.SystemEvent) error        { return nil }
func (nopPublisher) Close() error                                { return nil }
