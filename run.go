package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"feedback-capture/auth"
	"feedback-capture/client"
	"feedback-capture/common"
	"feedback-capture/compression"
	"feedback-capture/config"
	"feedback-capture/connectivity"
	filemanagement "feedback-capture/file-management"
	"feedback-capture/keepawake"
	"feedback-capture/navigation"
	"feedback-capture/pending"
	"feedback-capture/permissions"
	"feedback-capture/recording"
	"feedback-capture/resolution"
	"feedback-capture/storage"
	"feedback-capture/sweep"
)

const logFileName = "feedback-capture.log"

func newRunCommand(loadConfig func() (*config.Config, error)) *cobra.Command {
	var testMode bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the interactive feedback capture session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runClient(cfg, testMode)
		},
	}

	cmd.Flags().BoolVar(&testMode, "test", false, "Run against a mock server with permissions granted")
	return cmd
}

func runClient(cfg *config.Config, testMode bool) error {
	logWriter := common.SetupFileLogging(cfg.LogDir, logFileName)
	defer logWriter.Close()

	// One client per data directory; a second instance would race the
	// pending list and the camera
	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire instance lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another feedback-capture instance is already running")
	}
	defer lock.Unlock()

	store, err := storage.OpenSQLiteKeyValueStore(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tokenStore := auth.NewTokenStore(store)
	if !testMode {
		_, ok, err := tokenStore.Token(ctx)
		if err != nil {
			return fmt.Errorf("failed to read access token: %w", err)
		}
		if !ok {
			return fmt.Errorf("not logged in; run 'feedback-capture login <token>' first")
		}
	}

	var serverClient client.FeedbackServerClient
	var permChecker permissions.Checker
	var wakeLock keepawake.Lock
	if testMode {
		serverClient = client.NewMockFeedbackServerClient()
		permChecker = &permissions.StaticChecker{Granted: true}
		wakeLock = keepawake.NopLock{}
	} else {
		serverClient = client.NewFeedbackServerClient(cfg.ServerURL, time.Duration(cfg.ServerTimeoutSeconds)*time.Second)
		permChecker = permissions.NewDeviceNodeChecker(cfg.CameraDevice)
		wakeLock = keepawake.NewInhibitLock()
	}

	queue := pending.NewQueue(store)
	fileTracker := filemanagement.NewLocalFileTracker(cfg.TempDir)
	sweeper := sweep.NewSweeper(queue, serverClient, fileTracker)

	prober := connectivity.NewTCPProber(cfg.ServerURL, time.Duration(cfg.ServerTimeoutSeconds)*time.Second)
	monitor := connectivity.NewProbeMonitor(prober, time.Duration(cfg.ProbeIntervalSeconds)*time.Second)

	recorder := recording.NewGoCVRecorder(cfg.CameraDevice, cfg.TempDir, recording.RecordingSettings{
		MaxDuration: time.Duration(cfg.MaxRecordingSeconds) * time.Second,
		Codec:       cfg.CaptureCodec,
		FrameRate:   cfg.CaptureFrameRate,
	}, func(remaining int) {
		fmt.Printf("\rRecording... %2ds remaining (Enter stops) ", remaining)
	})

	profile := compression.DeliveryProfile()
	if cfg.DownscaleResolution != "" {
		target, err := resolution.Parse(cfg.DownscaleResolution)
		if err != nil {
			return fmt.Errorf("invalid downscale_resolution: %w", err)
		}
		profile.DownscaleResolution = target
	}

	compressor, err := compression.NewFfmpegCompressor(profile, common.NewFFmpegCodecProvider())
	if err != nil {
		return fmt.Errorf("failed to initialize compressor: %w", err)
	}

	navigator := navigation.NewLogNavigator()

	feedback := NewFeedbackClient(
		recorder,
		compressor,
		serverClient,
		queue,
		sweeper,
		monitor,
		navigator,
		permChecker,
		wakeLock,
		fileTracker,
		newProgressIndicator(os.Stdout),
		func(message string) { fmt.Printf("\n%s\n", message) },
	)

	if err := feedback.Start(ctx); err != nil {
		return err
	}
	defer feedback.Stop()

	return interactiveLoop(ctx, feedback, navigator)
}

// interactiveLoop drives one record-deliver-consent cycle per iteration
// until the user quits or the process receives a signal
func interactiveLoop(ctx context.Context, feedback *FeedbackClient, navigator *navigation.LogNavigator) error {
	lines := readLines(os.Stdin)

	for {
		fmt.Println("\nPress Enter to start recording, or q to quit.")

		line, ok := waitForLine(ctx, lines)
		if !ok {
			return nil
		}
		if strings.EqualFold(strings.TrimSpace(line), "q") {
			return nil
		}

		if err := feedback.StartRecording(ctx); err != nil {
			fmt.Printf("Could not start recording: %v\n", err)
			continue
		}

		// Enter stops early; otherwise the countdown stops the session
		select {
		case <-ctx.Done():
			feedback.StopRecording()
			<-feedback.SessionDone()
			return nil
		case _, ok := <-lines:
			if !ok {
				feedback.StopRecording()
				<-feedback.SessionDone()
				return nil
			}
			feedback.StopRecording()
		case <-feedback.SessionDone():
		}
		<-feedback.SessionDone()
		fmt.Println()

		// The consent question only follows a confirmed live upload
		if navigator.Current() != navigation.ScreenThankYou {
			continue
		}

		fmt.Println("Thank you! May we share your video on social media? [y/N]")
		answer, ok := waitForLine(ctx, lines)
		if !ok {
			return nil
		}
		allow := strings.EqualFold(strings.TrimSpace(answer), "y")
		if err := feedback.SubmitConsent(ctx, allow); err != nil {
			fmt.Printf("Could not submit your answer: %v\n", err)
		}
	}
}

// readLines feeds stdin lines into a channel so reads can be multiplexed
// with the countdown and shutdown signals
func readLines(r *os.File) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

func waitForLine(ctx context.Context, lines <-chan string) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-lines:
		return line, ok
	}
}
