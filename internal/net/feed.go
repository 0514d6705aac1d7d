package net

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Message is one result as sent to feed subscribers.
type Message struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	IsError bool      `json:"is_error"`
	At      time.Time `json:"at"`
}

// Feed relays every result to the websocket subscribers on the LAN.
type Feed struct {
	upgrader websocket.Upgrader
	peers    map[*websocket.Conn]bool
	mu       sync.Mutex
}

func NewFeed() *Feed {
	return &Feed{
		upgrader: websocket.Upgrader{
			// Any machine on the LAN may subscribe.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		peers: make(map[*websocket.Conn]bool),
	}
}

func (f *Feed) add(conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.peers[conn] = true
	log.Printf("[FEED] Subscriber connected: %s", conn.RemoteAddr())
}

func (f *Feed) remove(conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.peers[conn] {
		delete(f.peers, conn)
		conn.Close()
		log.Printf("[FEED] Subscriber removed: %s", conn.RemoteAddr())
	}
}

// Count returns the number of connected subscribers.
func (f *Feed) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.peers)
}

// ServeHTTP upgrades the request and keeps the subscriber until it hangs up.
// Subscribers only listen; anything they send is discarded.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[FEED] Upgrade failed: %v", err)
		return
	}
	f.add(conn)
	defer f.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends m to every subscriber and drops the ones that fail.
func (f *Feed) Broadcast(m Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.peers {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(m); err != nil {
			log.Printf("[FEED] Error sending to %s: %v", conn.RemoteAddr(), err)
			delete(f.peers, conn)
			conn.Close()
		}
	}
}

const feedPath = "/results"

// Listen binds the feed port. It returns at once so a busy port is reported
// before anything is advertised.
func Listen(port int) (net.Listener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("feed listen on port %d: %w", port, err)
	}
	return ln, nil
}

// Serve serves the feed at /results on ln until ctx is done.
func (f *Feed) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle(feedPath, f)
	srv := &http.Server{Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		f.closeAll()
	}()

	log.Printf("[FEED] Listening on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("feed server: %w", err)
	}
	return nil
}

func (f *Feed) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.peers {
		conn.Close()
		delete(f.peers, conn)
	}
}
