package irisfast

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func newTestClient(t *testing.T, h fasthttp.RequestHandler, opts ...Option) *Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: h}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })
	opts = append(opts, WithDial(func(string) (net.Conn, error) { return ln.Dial() }))
	return NewClient("http://iris.test/", opts...)
}

func TestSendMessagePayloadAndHeaders(t *testing.T) {
	var got ReplyRequest
	var user string
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Path()) != "/reply" || !ctx.IsPost() {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			return
		}
		user = string(ctx.Request.Header.Peek("X-User-Id"))
		_ = json.Unmarshal(ctx.PostBody(), &got)
		ctx.SetStatusCode(fasthttp.StatusOK)
	}, WithHeaderProvider(func() map[string]string {
		return map[string]string{"X-User-Id": "bot", "X-Session-Id": " "}
	}))

	if err := c.SendMessage(context.Background(), "room-1", "hello"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if got.Type != "text" || got.Room != "room-1" || got.Data != "hello" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if user != "bot" {
		t.Fatalf("X-User-Id = %q", user)
	}
}

func TestDecryptRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		if calls.Add(1) < 3 {
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			return
		}
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"decrypted":"plain"}`)
	}, WithRetry(3))

	got, err := c.Decrypt(context.Background(), "cipher")
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if got != "plain" || calls.Load() != 3 {
		t.Fatalf("got %q after %d calls", got, calls.Load())
	}
}

func TestReplyIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		calls.Add(1)
		ctx.SetStatusCode(fasthttp.StatusBadGateway)
		ctx.SetBodyString("upstream down")
	})

	err := c.SendImage(context.Background(), "room", "AAAA")
	var se *StatusError
	if !errors.As(err, &se) || se.Status != fasthttp.StatusBadGateway || se.Body != "upstream down" {
		t.Fatalf("expected StatusError 502, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("reply sent %d times", calls.Load())
	}
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		calls.Add(1)
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
	}, WithRetry(5))

	if _, err := c.GetConfig(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d", calls.Load())
	}
}

func TestGetConfigDecodes(t *testing.T) {
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString(`{"bot_name":"iris","bot_http_port":3000,"db_polling_rate":100,"message_send_rate":50,"web_server_endpoint":"http://x"}`)
	})
	cfg, err := c.GetConfig(context.Background())
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if cfg.Port != 3000 || cfg.PollingSpeed != 100 || cfg.MessageRate != 50 || cfg.WebserverEndpoint != "http://x" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestCanceledContextStopsRetry(t *testing.T) {
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	}, WithRetry(6))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	if _, err := c.Decrypt(ctx, "x"); err == nil {
		t.Fatalf("expected error")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("retry loop ignored context")
	}
}

func TestBackoffDuration(t *testing.T) {
	cases := map[int]time.Duration{
		0: 100 * time.Millisecond,
		1: 100 * time.Millisecond,
		3: 400 * time.Millisecond,
		9: 3200 * time.Millisecond,
	}
	for attempt, want := range cases {
		if got := backoffDuration(attempt); got != want {
			t.Errorf("backoffDuration(%d) = %v, want %v", attempt, got, want)
		}
	}
}

func TestMessageUserID(t *testing.T) {
	name := " 민수 "
	m := &Message{Sender: &name}
	if m.UserID() != "민수" || m.SenderName() != "민수" {
		t.Fatalf("fallback to sender failed: %q", m.UserID())
	}
	m.JSON = &MessageJSON{UserID: "12345"}
	if m.UserID() != "12345" {
		t.Fatalf("UserID = %q", m.UserID())
	}
	var nilMsg *Message
	if nilMsg.UserID() != "" {
		t.Fatalf("nil message should have no user")
	}
}
