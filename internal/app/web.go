// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/mpu6050/internal/config"
	"github.com/relabs-tech/mpu6050/internal/imu"
	"github.com/relabs-tech/mpu6050/internal/orientation"
)

// latest keeps the most recent value received on a topic.
type latest[T any] struct {
	mu   sync.RWMutex
	v    T
	have bool
}

func (l *latest[T]) set(v T) {
	l.mu.Lock()
	l.v, l.have = v, true
	l.mu.Unlock()
}

func (l *latest[T]) get() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.v, l.have
}

// serve writes the latest value as JSON, 503 until one arrived.
func (l *latest[T]) serve(w http.ResponseWriter, r *http.Request) {
	v, ok := l.get()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// WebState holds what the web server shows.
type WebState struct {
	pose    latest[orientation.Pose]
	sample  latest[imu.Sample]
	offsets latest[imu.Offsets]
}

// Handler returns the JSON API plus static files from staticDir ("" for none).
func (s *WebState) Handler(staticDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orientation", s.pose.serve)
	mux.HandleFunc("/api/sample", s.sample.serve)
	mux.HandleFunc("/api/offsets", s.offsets.serve)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

// RunWeb serves the latest published pose, sample and offsets over HTTP.
func RunWeb() error {
	cfg := config.Get()
	state := &WebState{}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeJSON(client, cfg.TopicPose, state.pose.set); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicSample, state.sample.set); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicOffsets, state.offsets.set); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, state.Handler("web"))
}
