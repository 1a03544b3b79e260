// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package web

import "github.com/ManuGH/fetchdemo/internal/metrics"

// Level is the severity shown on a notice banner.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Notice is a one-shot message for the user. It is shown on the next render
// of its page and then discarded.
type Notice struct {
	Level Level
	Text  string
}

// notices is a per-page queue. Loop-owned.
type notices struct {
	page  string
	queue []Notice
}

func (n *notices) push(level Level, text string) {
	metrics.IncNotification(n.page, string(level))
	n.queue = append(n.queue, Notice{Level: level, Text: text})
}

func (n *notices) drain() []Notice {
	out := n.queue
	n.queue = nil
	return out
}
