package irisfast

import (
    "context"
    "errors"

    "go.uber.org/zap"

    "github.com/park285/atomic-chess-bot/internal/obslog"
)

// Egress abstracts message/image sending over HTTP or WebSocket.
type Egress interface {
    SendText(ctx context.Context, room, message string) error
    SendImage(ctx context.Context, room, imageBase64 string) error
}

type transportMode string

const (
    transportHTTP transportMode = "http"
    transportWS   transportMode = "ws"
    transportAuto transportMode = "auto"
)

// NewEgress picks the reply transport. auto prefers the socket while it is
// connected and falls back to HTTP once per message. dryrun logs socket
// frames instead of sending them.
func NewEgress(mode string, dryrun bool, c *Client, ws *WebSocket) Egress {
    wse := &wsEgress{ws: ws, dryrun: dryrun}
    switch transportMode(mode) {
    case transportWS:
        return wse
    case transportAuto:
        return &autoEgress{ws: wse, http: &httpEgress{c: c}}
    default:
        return &httpEgress{c: c}
    }
}

type httpEgress struct{ c *Client }

func (h *httpEgress) SendText(ctx context.Context, room, message string) error {
    if h == nil || h.c == nil { return errors.New("http egress not available") }
    return h.c.SendMessage(ctx, room, message)
}

func (h *httpEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
    if h == nil || h.c == nil { return errors.New("http egress not available") }
    return h.c.SendImage(ctx, room, imageBase64)
}

// wsEgress writes ReplyRequest frames on the inbound socket.
type wsEgress struct {
    ws     *WebSocket
    dryrun bool
}

func (w *wsEgress) SendText(ctx context.Context, room, message string) error {
    return w.send(ctx, ReplyRequest{Type: "text", Room: room, Data: message})
}

func (w *wsEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
    return w.send(ctx, ReplyRequest{Type: "image", Room: room, Data: imageBase64})
}

func (w *wsEgress) send(ctx context.Context, req ReplyRequest) error {
    if w == nil || w.ws == nil { return errors.New("ws egress not available") }
    if w.dryrun {
        obslog.L().Info("ws_egress_dryrun",
            zap.String("type", req.Type),
            zap.String("room", req.Room),
            zap.Int("bytes", len(req.Data)),
        )
        return nil
    }
    return w.ws.WriteJSON(ctx, &req)
}

func (w *wsEgress) available() bool {
    return w != nil && w.ws != nil && (w.dryrun || w.ws.Connected())
}

type autoEgress struct {
    ws   *wsEgress
    http *httpEgress
}

func (a *autoEgress) SendText(ctx context.Context, room, message string) error {
    if a.ws.available() {
        err := a.ws.SendText(ctx, room, message)
        if err == nil { return nil }
        obslog.L().Warn("egress_fallback", zap.String("type", "text"), zap.String("room", room), zap.Error(err))
    }
    return a.http.SendText(ctx, room, message)
}

func (a *autoEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
    if a.ws.available() {
        err := a.ws.SendImage(ctx, room, imageBase64)
        if err == nil { return nil }
        obslog.L().Warn("egress_fallback", zap.String("type", "image"), zap.String("room", room), zap.Error(err))
    }
    return a.http.SendImage(ctx, room, imageBase64)
}
