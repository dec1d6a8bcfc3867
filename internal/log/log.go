// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// InitLogger sets up Apex with a custom handler and a log level from the
// NOVACTL_LOG env variable.
func InitLogger() {
	level := strings.ToUpper(os.Getenv("NOVACTL_LOG"))
	if level == "" {
		level = "ERROR"
	}
	log.SetHandler(&CustomHandler{Writer: os.Stderr})
	if err := setLevel(level); err != nil {
		log.SetLevel(log.ErrorLevel)
	}
}

func setLevel(level string) error {
	l, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return err
	}
	log.SetLevel(l)
	return nil
}

// Verbose lowers the level to debug.
func Verbose() {
	log.SetLevel(log.DebugLevel)
}

// AddFile tees every entry into path as well. The returned closer flushes
// and closes the file.
func AddFile(path string) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //nolint:mnd
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	current := log.Log.(*log.Logger).Handler
	log.SetHandler(&teeHandler{handlers: []log.Handler{current, &CustomHandler{Writer: f}}})
	return f, nil
}

// CustomHandler formats one line per entry: timestamp, level initial,
// message, then fields sorted by name.
type CustomHandler struct {
	Writer io.Writer
	mu     sync.Mutex
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	timestamp := e.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	level := strings.ToUpper(e.Level.String())

	var b strings.Builder
	fmt.Fprintf(&b, "%s %.1s %s", timestamp.Format("2006-01-02 15:04:05"), level, e.Message)

	names := e.Fields.Names()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields.Get(name))
	}

	w := h.Writer
	if w == nil {
		w = os.Stderr
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(w, b.String())
	return err
}

type teeHandler struct {
	handlers []log.Handler
}

func (t *teeHandler) HandleLog(e *log.Entry) error {
	for _, h := range t.handlers {
		if err := h.HandleLog(e); err != nil {
			return err
		}
	}
	return nil
}
