// Command monitor is the lobby display: it follows every counter's channel
// and speaks each newly called ticket.
// file: cmd/monitor/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go-loket-queue/announcer"
	"go-loket-queue/config"
	"go-loket-queue/logger"
	"go-loket-queue/observer"
)

func main() {
	cfg := config.LoadConfig()
	logger.SetLogLevel(cfg.AppEnv)
	defer logger.Close()

	serverURL := flag.String("server", cfg.WebsocketURL, "websocket base URL of the queue server")
	ttsCommand := flag.String("tts", os.Getenv("TTS_COMMAND"), "external text-to-speech command, e.g. \"espeak -v id\"")
	flag.Parse()

	counters, err := config.LoadCounters(cfg.CountersFile)
	if err != nil {
		logger.Error.Fatalf("[monitor] Failed to load counters: %v", err)
	}

	player, err := newPlayer(*ttsCommand)
	if err != nil {
		logger.Error.Fatalf("[monitor] %v", err)
	}
	seq := announcer.NewSequencer(player)
	defer seq.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go toggleSoundOnSignal(ctx, seq)

	var wg sync.WaitGroup
	for _, loket := range counters.Lokets() {
		sess := observer.NewSession(*serverURL, loket, observer.WebsocketDialer{}, seq)
		sess.OnView = logView
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sess.Run(ctx)
		}()
	}

	logger.Info.Printf("[monitor] Following lokets %v on %s (send SIGUSR1 to toggle sound)", counters.Lokets(), *serverURL)
	wg.Wait()
	logger.Info.Println("[monitor] Stopped")
}

func newPlayer(command string) (announcer.Player, error) {
	if command == "" {
		return announcer.LogPlayer{Duration: 2 * time.Second}, nil
	}
	return announcer.ParseCommandPlayer(command)
}

// toggleSoundOnSignal flips announcements on SIGUSR1.
func toggleSoundOnSignal(ctx context.Context, seq *announcer.Sequencer) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGUSR1)
	defer signal.Stop(sig)
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			if seq.Toggle() {
				logger.Info.Println("[monitor] Sound enabled")
			} else {
				logger.Info.Println("[monitor] Sound disabled")
			}
		}
	}
}

func logView(v observer.View) {
	current := "-"
	if v.Current != nil {
		current = v.Current.QueueNumber
	}
	next := "-"
	if v.Next != nil {
		next = v.Next.QueueNumber
	}
	logger.Info.Printf("[monitor] Loket %s: now %s, next %s, %d waiting", v.Loket, current, next, v.Waiting())
}
