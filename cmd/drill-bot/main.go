// Package main - drill-bot
// Load generator for the drill server: N WebSocket clients spamming intents
// and timing the round trip until each reply frame arrives.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/network"
)

// Config for the bot run
type Config struct {
	ServerURL      string
	NumClients     int
	ActionInterval time.Duration
	TestDuration   time.Duration
	OutPath        string
}

// Stats tracks performance metrics
type Stats struct {
	MessagesSent     int64
	MessagesReceived int64
	Rejections       int64
	Errors           int64
	Latencies        []time.Duration
	mu               sync.Mutex
}

func (s *Stats) addLatency(d time.Duration) {
	s.mu.Lock()
	s.Latencies = append(s.Latencies, d)
	s.mu.Unlock()
}

// Intents the bot picks from. Cheap ones are weighted up so most traffic
// exercises the thermal loop rather than bouncing off an empty wallet.
var intentPool = []network.Intent{
	{Type: "STRIKE"},
	{Type: "STRIKE"},
	{Type: "STRIKE"},
	{Type: "VENT"},
	{Type: "VENT"},
	{Type: "START_DRILLING"},
	{Type: "STOP_DRILLING"},
	{Type: "STATUS"},
	{Type: "STATS"},
	{Type: "START_CRAFT", PartID: "bit_2", Slot: "bit"},
	{Type: "STATUS"},
	{Type: "LAUNCH_EXPEDITION", Difficulty: "easy", Drones: 1, Target: "clay"},
	{Type: "HEAL"},
	{Type: "REPAIR"},
}

func main() {
	var cfg Config
	cmd := &cobra.Command{
		Use:          "drill-bot",
		Short:        "Stress the drill server over WebSocket",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.ServerURL, "url", "ws://localhost:8080/ws", "WebSocket server URL")
	cmd.Flags().IntVar(&cfg.NumClients, "clients", 20, "number of concurrent clients")
	cmd.Flags().DurationVar(&cfg.ActionInterval, "interval", 100*time.Millisecond, "action interval per client")
	cmd.Flags().DurationVar(&cfg.TestDuration, "duration", 30*time.Second, "test duration")
	cmd.Flags().StringVar(&cfg.OutPath, "out", "drill_bot_results.json", "where to write the JSON results")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg Config) error {
	fmt.Println("=========================================")
	fmt.Println("⛏️  DRILL-BOT - Load Test")
	fmt.Println("=========================================")
	fmt.Printf("Server: %s\n", cfg.ServerURL)
	fmt.Printf("Clients: %d\n", cfg.NumClients)
	fmt.Printf("Interval: %v\n", cfg.ActionInterval)
	fmt.Printf("Duration: %v\n", cfg.TestDuration)
	fmt.Println("=========================================")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.TestDuration)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		select {
		case <-sigChan:
			fmt.Println("\n⚠️ Interrupt received, stopping...")
			cancel()
		case <-ctx.Done():
		}
	}()

	started := time.Now()
	stats := runLoad(ctx, cfg)
	return writeResults(stats, cfg, time.Since(started))
}

func runLoad(ctx context.Context, cfg Config) *Stats {
	stats := &Stats{Latencies: make([]time.Duration, 0, 10000)}
	var wg sync.WaitGroup

	for i := 0; i < cfg.NumClients; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			runClient(ctx, clientID, cfg, stats)
		}(i)
		// Stagger so the hub does not see every register at once.
		time.Sleep(10 * time.Millisecond)
	}
	fmt.Printf("✅ All %d clients started\n\n", cfg.NumClients)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Printf("📊 Progress: Sent=%d Recv=%d Rejected=%d Errors=%d\n",
					atomic.LoadInt64(&stats.MessagesSent),
					atomic.LoadInt64(&stats.MessagesReceived),
					atomic.LoadInt64(&stats.Rejections),
					atomic.LoadInt64(&stats.Errors))
			}
		}
	}()

	wg.Wait()
	return stats
}

type frame struct {
	Type      string `json:"type"`
	OK        bool   `json:"ok"`
	Rejection bool   `json:"rejection"`
}

func runClient(ctx context.Context, clientID int, cfg Config, stats *Stats) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.ServerURL, nil)
	if err != nil {
		fmt.Printf("Client %d: connection failed: %v\n", clientID, err)
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	defer conn.Close()

	// Replies arrive in send order on one connection, so a FIFO of send times
	// pairs each result frame with its intent.
	pending := make(chan time.Time, 256)
	go func() {
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(&stats.MessagesReceived, 1)
			var f frame
			if json.Unmarshal(raw, &f) != nil || f.Type != "result" {
				continue
			}
			select {
			case sent := <-pending:
				stats.addLatency(time.Since(sent))
			default:
			}
			if f.Rejection {
				atomic.AddInt64(&stats.Rejections, 1)
			} else if !f.OK {
				atomic.AddInt64(&stats.Errors, 1)
			}
		}
	}()

	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(clientID)))
	ticker := time.NewTicker(cfg.ActionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			in := intentPool[rng.Intn(len(intentPool))]
			select {
			case pending <- time.Now():
			default:
				// Server is far behind; skip rather than skew latencies.
				continue
			}
			if err := conn.WriteJSON(in); err != nil {
				atomic.AddInt64(&stats.Errors, 1)
				return
			}
			atomic.AddInt64(&stats.MessagesSent, 1)
		}
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

func writeResults(stats *Stats, cfg Config, elapsed time.Duration) error {
	sent := atomic.LoadInt64(&stats.MessagesSent)
	recv := atomic.LoadInt64(&stats.MessagesReceived)
	rejected := atomic.LoadInt64(&stats.Rejections)
	errs := atomic.LoadInt64(&stats.Errors)
	throughput := float64(sent) / elapsed.Seconds()

	stats.mu.Lock()
	lat := append([]time.Duration(nil), stats.Latencies...)
	stats.mu.Unlock()
	sort.Slice(lat, func(i, j int) bool { return lat[i] < lat[j] })

	fmt.Println("\n=========================================")
	fmt.Println("📊 LOAD TEST RESULTS")
	fmt.Println("=========================================")
	fmt.Printf("Intents Sent:      %d\n", sent)
	fmt.Printf("Frames Received:   %d\n", recv)
	fmt.Printf("Rejections:        %d\n", rejected)
	fmt.Printf("Errors:            %d\n", errs)
	fmt.Printf("Throughput:        %.2f msg/sec\n", throughput)
	if len(lat) > 0 {
		fmt.Printf("\nRound trip:\n")
		fmt.Printf("  p50: %v\n", percentile(lat, 0.50))
		fmt.Printf("  p95: %v\n", percentile(lat, 0.95))
		fmt.Printf("  max: %v\n", lat[len(lat)-1])
	}

	fmt.Println("\n-----------------------------------------")
	switch rate := float64(errs) / float64(sent+1); {
	case errs == 0:
		fmt.Println("✅ TEST PASSED: no transport or invariant errors")
	case rate < 0.05:
		fmt.Println("⚠️ TEST WARNING: some errors detected")
	default:
		fmt.Println("❌ TEST FAILED: high error rate")
	}
	fmt.Println("=========================================")

	results := map[string]interface{}{
		"intents_sent":       sent,
		"frames_received":    recv,
		"rejections":         rejected,
		"errors":             errs,
		"throughput_per_sec": throughput,
		"p50_ms":             float64(percentile(lat, 0.50).Microseconds()) / 1000,
		"p95_ms":             float64(percentile(lat, 0.95).Microseconds()) / 1000,
		"config": map[string]interface{}{
			"clients":  cfg.NumClients,
			"interval": cfg.ActionInterval.String(),
			"duration": cfg.TestDuration.String(),
		},
	}
	jsonData, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.OutPath, jsonData, 0644); err != nil {
		return err
	}
	fmt.Printf("\n📁 Results saved to %s\n", cfg.OutPath)
	return nil
}
