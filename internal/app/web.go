// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"image/png"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/telemetry_logger/internal/config"
	"github.com/relabs-tech/telemetry_logger/internal/render"
	"github.com/relabs-tech/telemetry_logger/internal/telemetry"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// wsSendBuffer is how many outcomes a slow websocket client may lag behind
// before messages to it are dropped.
const wsSendBuffer = 64

type recordResponse struct {
	Record        telemetry.Record `json:"record"`
	LastCommitted string           `json:"last_committed,omitempty"`
	Advisory      string           `json:"advisory,omitempty"`
}

type seriesResponse struct {
	Timestamps  []string  `json:"timestamps"`
	Temperature []float64 `json:"temperature"`
	Humidity    []float64 `json:"humidity"`
	Pressure    []float64 `json:"pressure"`
	Altitude    []float64 `json:"altitude"`
	Speed       []float64 `json:"speed"`
}

type routeResponse struct {
	Latitudes   []float64              `json:"latitudes"`
	Longitudes  []float64              `json:"longitudes"`
	Coordinates []telemetry.Coordinate `json:"coordinates"`
	Drawable    bool                   `json:"drawable"`
}

type statusResponse struct {
	Lines         int    `json:"lines"`
	Samples       int    `json:"samples"`
	RoutePoints   int    `json:"route_points"`
	LastCommitted string `json:"last_committed,omitempty"`
	Advisory      string `json:"advisory,omitempty"`
}

// newWebMux builds the JSON API over the pipeline's session.
func newWebMux(p *pipeline, cfg *config.Config) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/record", func(w http.ResponseWriter, r *http.Request) {
		p.mu.RLock()
		resp := recordResponse{
			Record:   p.session.Record(),
			Advisory: p.session.Advisory(),
		}
		resp.LastCommitted, _ = p.session.LastCommitted()
		p.mu.RUnlock()
		writeJSON(w, resp)
	})

	mux.HandleFunc("GET /api/series", func(w http.ResponseWriter, r *http.Request) {
		p.mu.RLock()
		s := p.session.Series()
		resp := seriesResponse{
			Temperature: s.Values(telemetry.Temperature),
			Humidity:    s.Values(telemetry.Humidity),
			Pressure:    s.Values(telemetry.Pressure),
			Altitude:    s.Values(telemetry.Altitude),
			Speed:       s.Values(telemetry.Speed),
		}
		ts := s.Timestamps()
		p.mu.RUnlock()

		resp.Timestamps = make([]string, len(ts))
		for i, t := range ts {
			resp.Timestamps[i] = t.Format(telemetry.ClockLayout)
		}
		writeJSON(w, resp)
	})

	mux.HandleFunc("GET /api/route", func(w http.ResponseWriter, r *http.Request) {
		p.mu.RLock()
		rt := p.session.Route()
		resp := routeResponse{
			Latitudes:   rt.Latitudes(),
			Longitudes:  rt.Longitudes(),
			Coordinates: rt.Coordinates(),
			Drawable:    rt.Drawable(),
		}
		p.mu.RUnlock()
		writeJSON(w, resp)
	})

	mux.HandleFunc("GET /api/route.png", func(w http.ResponseWriter, r *http.Request) {
		p.mu.RLock()
		coords := p.session.Route().Coordinates()
		p.mu.RUnlock()

		img, err := render.Route(coords, cfg.RouteImageWidth, cfg.RouteImageHeight)
		if errors.Is(err, render.ErrNotDrawable) {
			http.Error(w, "no route yet", http.StatusServiceUnavailable)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		if err := png.Encode(w, img); err != nil {
			log.Printf("web: png encode error: %v", err)
		}
	})

	mux.HandleFunc("GET /api/status", func(w http.ResponseWriter, r *http.Request) {
		p.mu.RLock()
		resp := statusResponse{
			Lines:       p.session.Lines(),
			Samples:     p.session.Series().Len(),
			RoutePoints: len(p.session.Route().Coordinates()),
			Advisory:    p.session.Advisory(),
		}
		resp.LastCommitted, _ = p.session.LastCommitted()
		p.mu.RUnlock()
		writeJSON(w, resp)
	})

	mux.Handle("GET /metrics", p.metrics.Handler())

	if p.hub != nil {
		mux.HandleFunc("/ws", p.hub.serveWS)
	}

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

// hub pushes every line outcome to the connected websocket clients.
type hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func newHub() *hub {
	return &hub{clients: make(map[*wsClient]struct{})}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) broadcast(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("web: websocket marshal error: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			// client too slow, drop this update
		}
	}
}

func (h *hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, wsSendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writeLoop()

	// read until the client goes away; incoming messages are ignored
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("web: websocket error: %v", err)
			}
			break
		}
	}

	h.remove(c)
}

func (h *hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.remove(c)
	}
}

func (c *wsClient) writeLoop() {
	defer c.conn.Close()
	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("web: websocket write error: %v", err)
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
