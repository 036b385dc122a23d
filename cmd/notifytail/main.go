// Command notifytail follows the realtime notification stream. With more than
// one client it doubles as a connection soak test for the hub.
package main

import (
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

// Metrics tracks connection and delivery counts across clients.
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	EventsReceived       int64
	Errors               int64
}

var metrics Metrics

func main() {
	host := flag.String("host", "localhost:8375", "API server host")
	token := flag.String("token", os.Getenv("FORUM_TOKEN"), "Session token (defaults to $FORUM_TOKEN)")
	clients := flag.Int("clients", 1, "Number of concurrent connections")
	duration := flag.Duration("duration", 0, "Stop after this long; 0 runs until interrupted")
	flag.Parse()

	if *token == "" {
		log.Fatal("a session token is required (-token or FORUM_TOKEN)")
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go runClient(*host, *token, i == 0, stop, &wg)
		if *clients > 1 {
			time.Sleep(20 * time.Millisecond)
		}
	}

	var deadline <-chan time.Time
	if *duration > 0 {
		deadline = time.After(*duration)
	}
	select {
	case <-deadline:
		log.Println("duration reached")
	case <-interrupt:
		log.Println("interrupted")
	}

	close(stop)
	wg.Wait()
	printMetrics()
}

func runClient(host, token string, verbose bool, stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws/notifications", RawQuery: url.Values{"token": {token}}.Encode()}
	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		if verbose {
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			log.Printf("dial failed (status %d): %v", status, err)
		}
		return
	}
	defer func() { _ = c.Close() }()
	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					atomic.AddInt64(&metrics.Errors, 1)
				}
				return
			}
			atomic.AddInt64(&metrics.EventsReceived, 1)
			if verbose {
				event := gjson.ParseBytes(msg)
				log.Printf("[%s] %s", event.Get("type").String(), event.Get("payload").Raw)
			}
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
	log.Printf("connections attempted=%d ok=%d failed=%d",
		atomic.LoadInt64(&metrics.ConnectionsAttempted),
		atomic.LoadInt64(&metrics.ConnectionsSuccess),
		atomic.LoadInt64(&metrics.ConnectionsFailed))
	log.Printf("events received=%d errors=%d",
		atomic.LoadInt64(&metrics.EventsReceived),
		atomic.LoadInt64(&metrics.Errors))
}
