// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package web

import (
	"context"
	"fmt"

	"github.com/ManuGH/fetchdemo/internal/dispatch"
	"github.com/ManuGH/fetchdemo/internal/fetch"
	"github.com/ManuGH/fetchdemo/internal/metrics"
	"github.com/ManuGH/fetchdemo/internal/user"
)

const (
	msgCreated      = "Created"
	msgDeleted      = "Deleted"
	msgNoSuchUser   = "No such user id"
	defaultColorHex = "#000000"
)

// restPage drives the user CRUD demo. Its three lifecycles are independent.
type restPage struct {
	get  fetch.State[user.User]
	post fetch.State[*dispatch.Response]
	del  fetch.State[*dispatch.Response]

	lastCreated *user.ID
	notices
}

type userView struct {
	Name  string
	Color string
}

type restView struct {
	User          *userView
	GetPending    bool
	PostPending   bool
	DeletePending bool
	Pending       bool
	LastCreated   string
	DefaultColor  string
	Notices       []Notice
}

func newRestPage() *restPage {
	return &restPage{notices: notices{page: "rest"}}
}

// noticeFor* turn a settled slot into exactly one notice. Idle and InFlight
// yield none.
var noticeForGet = fetch.Cases[user.User, *Notice]{
	Idle:      func() *Notice { return nil },
	InFlight:  func() *Notice { return nil },
	Succeeded: func(user.User) *Notice { return nil },
	Failed: func(d fetch.ErrorDetail) *Notice {
		if d.Kind == fetch.KindHTTPStatus {
			return &Notice{Level: LevelWarn, Text: msgNoSuchUser}
		}
		return &Notice{Level: LevelError, Text: "Get request failed; Reason: " + d.Error()}
	},
}

var noticeForPost = fetch.Cases[*dispatch.Response, *Notice]{
	Idle:     func() *Notice { return nil },
	InFlight: func() *Notice { return nil },
	Succeeded: func(res *dispatch.Response) *Notice {
		if res.OK() {
			return &Notice{Level: LevelInfo, Text: msgCreated}
		}
		return &Notice{Level: LevelError, Text: fmt.Sprintf("Create failed (HTTP %d)", res.StatusCode)}
	},
	Failed: func(d fetch.ErrorDetail) *Notice {
		return &Notice{Level: LevelError, Text: "Create request failed; Reason: " + d.Error()}
	},
}

var noticeForDelete = fetch.Cases[*dispatch.Response, *Notice]{
	Idle:     func() *Notice { return nil },
	InFlight: func() *Notice { return nil },
	Succeeded: func(res *dispatch.Response) *Notice {
		if res.OK() {
			return &Notice{Level: LevelInfo, Text: msgDeleted}
		}
		return &Notice{Level: LevelWarn, Text: msgNoSuchUser}
	},
	Failed: func(d fetch.ErrorDetail) *Notice {
		return &Notice{Level: LevelError, Text: "Delete request failed; Reason: " + d.Error()}
	},
}

func (p *restPage) notify(n *Notice) {
	if n != nil {
		p.push(n.Level, n.Text)
	}
}

func (p *restPage) setGet(s fetch.State[user.User]) {
	p.get = s
	metrics.RecordTransition("rest_get", s.Status().String())
	p.notify(fetch.Fold(s, noticeForGet))
}

func (p *restPage) setPost(s fetch.State[*dispatch.Response]) {
	p.post = s
	metrics.RecordTransition("rest_post", s.Status().String())
	p.notify(fetch.Fold(s, noticeForPost))
	if s.Pending() {
		p.lastCreated = nil
	}
	if res, ok := s.Value(); ok && res.OK() {
		if created, err := dispatch.DecodeJSON[createdBody](res); err == nil && created.ID != nil {
			p.lastCreated = created.ID
		}
	}
}

func (p *restPage) setDelete(s fetch.State[*dispatch.Response]) {
	p.del = s
	metrics.RecordTransition("rest_delete", s.Status().String())
	p.notify(fetch.Fold(s, noticeForDelete))
}

// createdBody is the optional body of a successful create.
type createdBody struct {
	ID *user.ID `json:"id"`
}

func (p *restPage) view() restView {
	v := restView{
		GetPending:    p.get.Pending(),
		PostPending:   p.post.Pending(),
		DeletePending: p.del.Pending(),
		DefaultColor:  defaultColorHex,
		Notices:       p.drain(),
	}
	v.Pending = v.GetPending || v.PostPending || v.DeletePending
	if u, ok := p.get.Value(); ok {
		v.User = &userView{Name: u.Name, Color: u.Color.Hex()}
	}
	if p.lastCreated != nil {
		v.LastCreated = p.lastCreated.String()
	}
	return v
}

func (p *restPage) createUser(env actionEnv, name, color string) {
	rgb, err := user.ParseColor(color)
	if err != nil {
		p.reject("color", "Invalid colour", err)
		return
	}
	body := user.User{Name: name, Color: rgb}
	url := env.urls.Users()
	track(env, "create", p.setPost, func(ctx context.Context) (*dispatch.Response, error) {
		return dispatch.PostJSON(ctx, env.client, url, body)
	})
}

// getUser applies the page's status policy: a non-2xx answer fails the slot
// with an HTTPStatus error instead of being decoded.
func (p *restPage) getUser(env actionEnv, rawID string) {
	id, err := user.ParseID(rawID)
	if err != nil {
		p.reject("get-id", "Invalid id", err)
		return
	}
	url := env.urls.User(id)
	track(env, "get", p.setGet, func(ctx context.Context) (user.User, error) {
		res, err := env.client.Get(ctx, url)
		if err != nil {
			return user.User{}, err
		}
		if err := dispatch.CheckStatus(res); err != nil {
			return user.User{}, err
		}
		return dispatch.DecodeJSON[user.User](res)
	})
}

func (p *restPage) deleteUser(env actionEnv, rawID string) {
	id, err := user.ParseID(rawID)
	if err != nil {
		p.reject("delete-id", "Invalid id", err)
		return
	}
	url := env.urls.User(id)
	track(env, "delete", p.setDelete, func(ctx context.Context) (*dispatch.Response, error) {
		return env.client.Delete(ctx, url)
	})
}

// reject reports malformed local input. Nothing is dispatched and no
// lifecycle changes.
func (p *restPage) reject(field, what string, err error) {
	metrics.IncInputRejected(field)
	p.push(LevelWarn, what+": "+fetch.AsDetail(err).Message)
}
