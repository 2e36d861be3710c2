// Command wsprobe opens realtime notification sockets against a running
// server and reports the events they receive. It is a load and smoke tool.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
)

// Metrics tracks the probe results.
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	EventsReceived       int64
	Errors               int64

	mu     sync.Mutex
	byType map[string]int64
}

func (m *Metrics) countEvent(typ string) {
	atomic.AddInt64(&m.EventsReceived, 1)
	m.mu.Lock()
	m.byType[typ]++
	m.mu.Unlock()
}

var metrics = Metrics{byType: map[string]int64{}}

func main() {
	host := flag.String("host", "localhost:8375", "API server host")
	token := flag.String("token", "", "Bearer token (minted from -secret when empty)")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "HS256 secret used to mint tokens")
	firstUser := flag.Uint("user", 1, "First user id to connect as")
	clients := flag.Int("clients", 1, "Number of sockets; client i connects as user+i")
	duration := flag.Duration("duration", 30*time.Second, "Probe duration")
	flag.Parse()

	if *token == "" && *secret == "" {
		log.Fatal("either -token or -secret is required")
	}

	log.Printf("Probing ws://%s/api/ws with %d clients for %v", *host, *clients, *duration)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < *clients; i++ {
		bearer := *token
		if bearer == "" {
			var err error
			if bearer, err = mintToken(*secret, *firstUser+uint(i)); err != nil {
				log.Fatalf("mint token: %v", err)
			}
		}
		wg.Add(1)
		go runClient(*host, bearer, stop, &wg)
		time.Sleep(50 * time.Millisecond)
	}

	select {
	case <-time.After(*duration):
		log.Println("probe duration reached")
	case <-interrupt:
		log.Println("interrupted")
	}

	close(stop)
	wg.Wait()
	printMetrics()
}

func mintToken(secret string, userID uint) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func getTicket(host, token string) (string, error) {
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("http://%s/api/ws/ticket", host), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("ticket issuance failed with status %d", resp.StatusCode)
	}
	var result struct {
		Ticket string `json:"ticket"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Ticket, nil
}

func runClient(host, token string, stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	ticket, err := getTicket(host, token)
	if err != nil {
		log.Printf("ticket: %v", err)
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		return
	}

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws", RawQuery: "ticket=" + url.QueryEscape(ticket)}
	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if err != nil {
		log.Printf("dial: %v", err)
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		return
	}
	defer func() { _ = c.Close() }()
	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := c.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					atomic.AddInt64(&metrics.Errors, 1)
				}
				return
			}
			var ev struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(data, &ev); err != nil || ev.Type == "" {
				ev.Type = "unknown"
			}
			metrics.countEvent(ev.Type)
		}
	}()

	select {
	case <-stop:
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	case <-done:
	}
}

func printMetrics() {
	log.Println("---- wsprobe results ----")
	log.Printf("connections: attempted=%d ok=%d failed=%d",
		metrics.ConnectionsAttempted, metrics.ConnectionsSuccess, metrics.ConnectionsFailed)
	log.Printf("events received: %d, errors: %d", metrics.EventsReceived, metrics.Errors)

	types := make([]string, 0, len(metrics.byType))
	for t := range metrics.byType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		log.Printf("  %-16s %d", t, metrics.byType[t])
	}
}
