package net

import (
	"context"
	stdnet "net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestFeedBroadcast(t *testing.T) {
	feed := NewFeed()
	srv := httptest.NewServer(feed)
	defer srv.Close()

	a := dial(t, srv)
	defer a.Close()
	b := dial(t, srv)
	defer b.Close()
	require.Eventually(t, func() bool { return feed.Count() == 2 }, 2*time.Second, 5*time.Millisecond)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	feed.Broadcast(Message{ID: "abc", Text: "x=5", At: at})

	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var got Message
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, "abc", got.ID)
		assert.Equal(t, "x=5", got.Text)
		assert.False(t, got.IsError)
		assert.True(t, at.Equal(got.At))
	}
}

func TestFeedDropsClosedSubscriber(t *testing.T) {
	feed := NewFeed()
	srv := httptest.NewServer(feed)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return feed.Count() == 1 }, 2*time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return feed.Count() == 0 }, 2*time.Second, 5*time.Millisecond)

	assert.NotPanics(t, func() { feed.Broadcast(Message{ID: "late", Text: "nobody listens"}) })
}

func TestFeedRejectsPlainHTTP(t *testing.T) {
	feed := NewFeed()
	rec := httptest.NewRecorder()
	feed.ServeHTTP(rec, httptest.NewRequest("GET", "/results", nil))
	assert.Equal(t, 400, rec.Code)
	assert.Zero(t, feed.Count())
}

func TestFeedServeOnListener(t *testing.T) {
	ln, err := Listen(0)
	require.NoError(t, err)
	port := ln.Addr().(*stdnet.TCPAddr).Port

	ctx, cancel := context.WithCancel(context.Background())
	feed := NewFeed()
	served := make(chan error, 1)
	go func() { served <- feed.Serve(ctx, ln) }()

	conn, _, err := websocket.DefaultDialer.Dial(FeedURL("127.0.0.1", port), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return feed.Count() == 1 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestListenReportsBusyPort(t *testing.T) {
	ln, err := Listen(0)
	require.NoError(t, err)
	defer ln.Close()

	_, err = Listen(ln.Addr().(*stdnet.TCPAddr).Port)
	assert.Error(t, err)
}

func TestFeedURL(t *testing.T) {
	assert.Equal(t, "ws://192.168.1.4:8888/results", FeedURL("192.168.1.4", 8888))
	assert.Equal(t, "ws://[fe80::1]:8888/results", FeedURL("fe80::1", 8888))
}
