// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/relabs-tech/telemetry_logger/internal/config"
	"github.com/relabs-tech/telemetry_logger/internal/metrics"
	"github.com/relabs-tech/telemetry_logger/internal/render"
	"github.com/relabs-tech/telemetry_logger/internal/sink"
	"github.com/relabs-tech/telemetry_logger/internal/source"
	"github.com/relabs-tech/telemetry_logger/internal/telemetry"
)

// LoggerOptions selects where lines come from. With neither field set the
// configured serial port is used.
type LoggerOptions struct {
	ReplayPath string // replay a captured log and exit when it ends
	Simulate   bool   // feed synthetic sensor lines
}

// samplePublisher is the part of sink.Publisher the pipeline needs.
type samplePublisher interface {
	PublishSample(telemetry.Sample) error
}

// pipeline drives one session. Steps run one at a time from the scheduler;
// the mutex only guards readers on the web side.
type pipeline struct {
	mu      sync.RWMutex
	session *telemetry.Session
	src     telemetry.LineSource
	metrics *metrics.Metrics
	samples samplePublisher
	hub     *hub
}

func newPipeline(src telemetry.LineSource, records telemetry.Sink, m *metrics.Metrics) *pipeline {
	return &pipeline{
		session: telemetry.NewSession(records, nil),
		src:     src,
		metrics: m,
	}
}

// step processes at most one line.
func (p *pipeline) step() {
	p.mu.Lock()
	out, ok := p.session.Step(p.src)
	p.mu.Unlock()
	if !ok {
		return
	}

	p.metrics.Observe(out)
	if out.Err != nil {
		log.Printf("logger: %v", out.Err)
	}
	if out.Committed != nil {
		log.Printf("logger: committed record at %s", out.Committed.Get(telemetry.Time))
	}
	if out.Sample != nil && p.samples != nil {
		if err := p.samples.PublishSample(*out.Sample); err != nil {
			log.Printf("logger: sample publish error: %v", err)
		}
	}
	if p.hub != nil {
		p.hub.broadcast(out)
	}
}

// RunLogger opens the line source, persists committed records to CSV (and
// MQTT when a broker is configured), serves the web API, and polls the
// source every POLL_INTERVAL until SIGINT/SIGTERM.
func RunLogger(opts LoggerOptions) error {
	cfg := config.Get()
	if cfg == nil {
		return errors.New("config not initialized")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- 1) Line source ----
	var src telemetry.LineSource
	switch {
	case opts.ReplayPath != "":
		lines, err := source.OpenReplay(opts.ReplayPath)
		if err != nil {
			return err
		}
		defer lines.Close()
		log.Printf("logger: replaying %s", opts.ReplayPath)
		src = lines
	case opts.Simulate:
		log.Println("logger: using simulated sensor")
		src = source.NewSimulator(time.Now())
	default:
		lines, err := source.OpenSerial(cfg.SerialPort, cfg.SerialBaudRate)
		if err != nil {
			return err
		}
		defer lines.Close()
		src = lines
	}

	// ---- 2) Record sinks ----
	csvSink, err := sink.OpenCSV(cfg.CSVPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := csvSink.Close(); err != nil {
			log.Printf("logger: %v", err)
		}
	}()

	var records telemetry.Sink = csvSink
	var publisher *sink.Publisher
	if cfg.MQTTBroker != "" {
		publisher, err = sink.DialMQTT(cfg.MQTTBroker, cfg.MQTTClientIDLogger, cfg.TopicRecord, cfg.TopicSample)
		if err != nil {
			return err
		}
		defer publisher.Close()
		records = &sink.Tee{
			Primary: csvSink,
			Mirrors: []telemetry.Sink{publisher},
			OnMirrorError: func(err error) {
				log.Printf("logger: record publish error: %v", err)
			},
		}
	}

	m := metrics.New()
	p := newPipeline(src, records, m)
	if publisher != nil {
		p.samples = publisher
	}

	// ---- 3) Web API ----
	if cfg.WebServerPort != 0 {
		p.hub = newHub()
		srv := &http.Server{
			Addr:              ":" + strconv.Itoa(cfg.WebServerPort),
			Handler:           newWebMux(p, cfg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Printf("web: listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("web: server error: %v", err)
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
			p.hub.closeAll()
		}()
	}

	// ---- 4) Poll loop ----
	type exhaustible interface{ Exhausted() bool }
	step := func() {
		p.step()
		if e, ok := src.(exhaustible); ok && e.Exhausted() {
			log.Println("logger: source exhausted")
			stop()
		}
	}

	log.Printf("logger: polling every %s", cfg.Poll())
	err = telemetry.TickerScheduler{}.RunEvery(ctx, cfg.Poll(), step)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if last, ok := p.session.LastCommitted(); ok {
		log.Printf("logger: shutting down, last committed record at %s (%d rows this run)", last, csvSink.Rows())
	}

	if cfg.RouteImagePath != "" {
		if err := writeRouteImage(p, cfg); err != nil {
			log.Printf("logger: route image: %v", err)
		}
	}
	return nil
}

func writeRouteImage(p *pipeline, cfg *config.Config) error {
	p.mu.RLock()
	coords := p.session.Route().Coordinates()
	p.mu.RUnlock()

	f, err := os.Create(cfg.RouteImagePath)
	if err != nil {
		return err
	}
	if err := render.EncodeRoutePNG(f, coords, cfg.RouteImageWidth, cfg.RouteImageHeight); err != nil {
		_ = f.Close()
		_ = os.Remove(cfg.RouteImagePath)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", cfg.RouteImagePath, err)
	}
	log.Printf("logger: route with %d points written to %s", len(coords), cfg.RouteImagePath)
	return nil
}
