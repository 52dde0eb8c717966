// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package source turns byte streams into non-blocking line sources.
package source

import (
	"bufio"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

// lineBuffer is how many complete lines may queue up between polls.
const lineBuffer = 256

// Lines reads newline-delimited text from an io.Reader on a background
// goroutine and hands it out through Poll without ever blocking the caller.
type Lines struct {
	r       io.Reader
	ch      chan string
	done    chan struct{}
	ended   atomic.Bool
	mu      sync.Mutex
	err     error
	closeFn func() error
	once    sync.Once
}

// NewLines starts reading from r. closeFn, if not nil, is called by Close.
func NewLines(r io.Reader, closeFn func() error) *Lines {
	l := &Lines{
		r:       r,
		ch:      make(chan string, lineBuffer),
		done:    make(chan struct{}),
		closeFn: closeFn,
	}
	go l.run()
	return l
}

func (l *Lines) run() {
	defer func() {
		l.ended.Store(true)
		close(l.ch)
	}()

	reader := bufio.NewReader(l.r)
	for {
		line, err := reader.ReadString('\n')
		// a terminated blank line is still a line; only a bare EOF is not
		if err == nil || line != "" {
			line = strings.TrimRight(line, "\r\n")
			select {
			case l.ch <- line:
			case <-l.done:
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				l.mu.Lock()
				l.err = err
				l.mu.Unlock()
			}
			return
		}
	}
}

// Poll returns the next complete line, or false if none is waiting.
func (l *Lines) Poll() (string, bool) {
	select {
	case line, ok := <-l.ch:
		return line, ok
	default:
		return "", false
	}
}

// Exhausted reports whether the stream has ended and every line was polled.
func (l *Lines) Exhausted() bool {
	return l.ended.Load() && len(l.ch) == 0
}

// Err returns the read error that stopped the source, if any. EOF is not an error.
func (l *Lines) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Close stops the reader goroutine and releases the underlying stream.
func (l *Lines) Close() error {
	var err error
	l.once.Do(func() {
		close(l.done)
		if l.closeFn != nil {
			err = l.closeFn()
		}
	})
	return err
}
