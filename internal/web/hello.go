// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package web

import (
	"context"
	"strconv"
	"strings"

	"github.com/ManuGH/fetchdemo/internal/fetch"
	"github.com/ManuGH/fetchdemo/internal/metrics"
)

const (
	defaultDelay = 2
	defaultName  = "Jimmy"
)

var greetingText = fetch.Cases[string, string]{
	Idle:      func() string { return "Not fetching" },
	InFlight:  func() string { return "Fetching" },
	Succeeded: func(s string) string { return s },
	Failed:    func(fetch.ErrorDetail) string { return "Failed to fetch" },
}

// helloPage shows a single greeting. All three actions share one lifecycle,
// so the latest settlement wins the text.
type helloPage struct {
	greeting fetch.State[string]
	notices
}

type helloView struct {
	Greeting     string
	Pending      bool
	DefaultDelay int
	DefaultName  string
	Notices      []Notice
}

func newHelloPage() *helloPage {
	return &helloPage{notices: notices{page: "hello"}}
}

func (p *helloPage) set(s fetch.State[string]) {
	p.greeting = s
	metrics.RecordTransition("hello", s.Status().String())
}

func (p *helloPage) view() helloView {
	return helloView{
		Greeting:     fetch.Fold(p.greeting, greetingText),
		Pending:      p.greeting.Pending(),
		DefaultDelay: defaultDelay,
		DefaultName:  defaultName,
		Notices:      p.drain(),
	}
}

func (p *helloPage) fetchWorld(env actionEnv) {
	p.fetchText(env, "world", env.urls.Hello())
}

// fetchDelay asks the backend to wait before answering. An empty field means
// the default delay; anything that is not a non-negative integer is rejected
// before dispatch.
func (p *helloPage) fetchDelay(env actionEnv, raw string) {
	raw = strings.TrimSpace(raw)
	var seconds uint64 = defaultDelay
	if raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			metrics.IncInputRejected("delay")
			p.push(LevelWarn, "Invalid delay: "+fetch.DecodeError(err).Message)
			return
		}
		seconds = n
	}
	p.fetchText(env, "delay", env.urls.HelloDelay(seconds))
}

func (p *helloPage) fetchName(env actionEnv, name string) {
	if name == "" {
		name = defaultName
	}
	p.fetchText(env, "name", env.urls.HelloName(name))
}

func (p *helloPage) fetchText(env actionEnv, action, url string) {
	track(env, action, p.set, func(ctx context.Context) (string, error) {
		return env.client.GetText(ctx, url)
	})
}
