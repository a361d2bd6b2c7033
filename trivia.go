/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/playr/games/trivia"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/skip2/go-qrcode"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
	sendBufferSize = 32
	qrSize         = 320
)

var (
	ErrPeerBackedUp = errors.New("connection send buffer full")
	ErrPeerClosed   = errors.New("connection closed")
)

var roomKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Client is one WebSocket connection to a trivia room. The room hands it
// messages through Send; writePump is the only goroutine writing to conn.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Send queues msg without blocking. A client that cannot keep up is
// disconnected rather than holding up the rest of the room.
func (c *Client) Send(msg []byte) error {
	select {
	case <-c.done:
		return ErrPeerClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		c.close()

		return ErrPeerBackedUp
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *Client) readPump(room *trivia.Room) {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		if kind != websocket.TextMessage {
			continue
		}

		if err := room.Deliver(c.id, data); err != nil {
			return
		}
	}
}

func (c *Client) writePump(room *trivia.Room) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-room.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "room closed"),
				time.Now().Add(writeWait))

			return
		case <-c.done:
			return
		}
	}
}

func newUpgrader(c *cors.Cors) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			if strings.EqualFold(strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://"), r.Host) {
				return true
			}

			return c.OriginAllowed(r)
		},
	}
}

func serveTriviaWS(cfg *Config, manager *trivia.Manager, upgrader *websocket.Upgrader) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		key := ps.ByName("room")
		if !roomKeyPattern.MatchString(key) {
			http.Error(w, "invalid room key", http.StatusBadRequest)

			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			cfg.log.Warn().Err(err).Str("ip", realIP(r)).Msg("websocket upgrade failed")

			return
		}

		client := newClient(conn)

		room := manager.Acquire(key)
		defer manager.Release(room)

		if err := room.Connect(client.id, client); err != nil {
			client.close()

			return
		}

		logf(cfg, "TRIVIA: %s connected to room %s as %s", realIP(r), key, client.id)

		go client.writePump(room)
		client.readPump(room)

		_ = room.Disconnect(client.id)

		logf(cfg, "TRIVIA: %s left room %s", client.id, key)
	}
}

// serveQRCode renders a PNG QR code of the room's join URL.
func serveQRCode(cfg *Config, path string, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		key := ps.ByName("room")
		if !roomKeyPattern.MatchString(key) {
			http.Error(w, "invalid room key", http.StatusBadRequest)

			return
		}

		scheme := cfg.scheme()
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
			scheme = proto
		}

		url := fmt.Sprintf("%s://%s%s%s/%s", scheme, r.Host, cfg.prefix, path, key)

		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		securityHeaders(cfg, w)

		writeServed(cfg, w, r, "QR code for room "+key, png, startTime, errs)
	}
}

func serveTriviaPage(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		if !roomKeyPattern.MatchString(ps.ByName("room")) {
			http.NotFound(w, r)

			return
		}

		data, err := assets.ReadFile("assets/trivia/index.html")
		if err != nil {
			http.NotFound(w, r)

			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		writeServed(cfg, w, r, "Trivia page", data, startTime, errs)
	}
}

// redirectNewGame sends the visitor to a freshly generated room, which the
// first connection to open it will host.
func redirectNewGame(cfg *Config, path string, manager *trivia.Manager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		key := manager.NewRoomKey()

		logf(cfg, "TRIVIA: Created room %s%s/%s", cfg.prefix, path, key)

		http.Redirect(w, r, cfg.prefix+path+"/"+key+"?host=1", http.StatusTemporaryRedirect)
	}
}

// registerTriviaGame sets up routes so that:
//   - $path             redirects to a new room
//   - $path/:room       serves the browser client
//   - $path/:room/ws    is the room's WebSocket
//   - $path/:room/qr    is a PNG QR code of the room URL
func registerTriviaGame(cfg *Config, path string, mux *httprouter.Router, manager *trivia.Manager, c *cors.Cors, errs chan<- error) {
	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, manager))

	mux.GET(cfg.prefix+path+"/:room", serveTriviaPage(cfg, errs))

	mux.GET(cfg.prefix+path+"/:room/ws", serveTriviaWS(cfg, manager, newUpgrader(c)))

	mux.GET(cfg.prefix+path+"/:room/qr", serveQRCode(cfg, path, errs))
}
