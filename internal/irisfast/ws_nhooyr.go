package irisfast

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "sync"
    "time"

    "go.uber.org/zap"
    "nhooyr.io/websocket"
    "nhooyr.io/websocket/wsjson"

    "github.com/park285/atomic-chess-bot/internal/obslog"
)

var ErrNotConnected = errors.New("ws not connected")

type callbackEntry struct {
    id       int
    callback MessageCallback
}

type stateCallbackEntry struct {
    id       int
    callback StateCallback
}

// WebSocket receives Iris chat events and can also carry replies.
type WebSocket struct {
    wsURL string

    conn   *websocket.Conn
    state  WebSocketState
    stateM sync.RWMutex
    // wsjson.Write is not safe for concurrent use
    writeM sync.Mutex

    msgCbs   []callbackEntry
    stateCbs []stateCallbackEntry
    nextID   int
    cbM      sync.RWMutex

    maxReconnectAttempts int
    reconnectDelay       time.Duration
    pingInterval         time.Duration

    stopCh   chan struct{}
    stopOnce sync.Once
    wg       sync.WaitGroup

    rootCtx    context.Context
    rootCancel context.CancelFunc

    headerProvider HeaderProvider
}

var _ WSClient = (*WebSocket)(nil)

func NewWebSocket(wsURL string, maxReconnectAttempts int, reconnectDelay time.Duration) *WebSocket {
    if reconnectDelay <= 0 {
        reconnectDelay = time.Second
    }
    ctx, cancel := context.WithCancel(context.Background())
    return &WebSocket{
        wsURL:                wsURL,
        state:                WSStateDisconnected,
        maxReconnectAttempts: maxReconnectAttempts,
        reconnectDelay:       reconnectDelay,
        pingInterval:         30 * time.Second,
        stopCh:               make(chan struct{}),
        rootCtx:              ctx,
        rootCancel:           cancel,
    }
}

// State is the current connection state.
func (ws *WebSocket) State() WebSocketState {
    ws.stateM.RLock()
    defer ws.stateM.RUnlock()
    return ws.state
}

func (ws *WebSocket) Connected() bool {
    ws.stateM.RLock()
    defer ws.stateM.RUnlock()
    return ws.state == WSStateConnected && ws.conn != nil
}

func (ws *WebSocket) Connect(ctx context.Context) error {
    if s := ws.State(); s == WSStateConnected || s == WSStateConnecting {
        return nil
    }
    ws.setState(WSStateConnecting)

    conn, err := ws.dial(ctx)
    if err != nil {
        ws.setState(WSStateFailed)
        ws.scheduleReconnect()
        return err
    }
    ws.attach(conn)
    return nil
}

func (ws *WebSocket) dial(ctx context.Context) (*websocket.Conn, error) {
    dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
    defer cancel()
    conn, _, err := websocket.Dial(dialCtx, ws.wsURL, &websocket.DialOptions{
        CompressionMode: websocket.CompressionNoContextTakeover,
        HTTPHeader:      ws.buildHeaders(),
    })
    if err != nil {
        return nil, err
    }
    // board images are large base64 frames
    conn.SetReadLimit(8 << 20)
    return conn, nil
}

func (ws *WebSocket) attach(conn *websocket.Conn) {
    ws.stateM.Lock()
    ws.conn = conn
    ws.stateM.Unlock()
    ws.setState(WSStateConnected)

    ws.wg.Add(2)
    go ws.listen(conn)
    go ws.pingLoop(conn)
}

func (ws *WebSocket) listen(conn *websocket.Conn) {
    defer ws.wg.Done()
    for {
        var msg Message
        if err := wsjson.Read(ws.rootCtx, conn, &msg); err != nil {
            if ws.isStopping() {
                return
            }
            obslog.L().Warn("iris_ws_read_failed", zap.Error(err))
            ws.drop(conn, "reconnect")
            return
        }

        ws.cbM.RLock()
        callbacks := make([]callbackEntry, len(ws.msgCbs))
        copy(callbacks, ws.msgCbs)
        ws.cbM.RUnlock()
        for _, entry := range callbacks {
            if entry.callback != nil {
                entry.callback(&msg)
            }
        }
    }
}

func (ws *WebSocket) pingLoop(conn *websocket.Conn) {
    defer ws.wg.Done()
    t := time.NewTicker(ws.pingInterval)
    defer t.Stop()
    failures := 0
    for {
        select {
        case <-ws.stopCh:
            return
        case <-ws.rootCtx.Done():
            return
        case <-t.C:
            if ws.currentConn() != conn {
                return
            }
            ctx, cancel := context.WithTimeout(ws.rootCtx, 3*time.Second)
            err := conn.Ping(ctx)
            cancel()
            if err == nil {
                failures = 0
                continue
            }
            failures++
            if failures >= 2 {
                if !ws.isStopping() {
                    ws.drop(conn, "ping failure")
                }
                return
            }
        }
    }
}

// drop closes conn if it is still current and starts reconnecting.
func (ws *WebSocket) drop(conn *websocket.Conn, reason string) {
    ws.stateM.Lock()
    if ws.conn != conn {
        ws.stateM.Unlock()
        return
    }
    ws.conn = nil
    ws.stateM.Unlock()

    _ = conn.Close(websocket.StatusGoingAway, reason)
    ws.setState(WSStateDisconnected)
    ws.scheduleReconnect()
}

func (ws *WebSocket) scheduleReconnect() {
    if ws.maxReconnectAttempts <= 0 || ws.isStopping() {
        return
    }
    ws.setState(WSStateReconnecting)

    go func() {
        for attempt := 1; attempt <= ws.maxReconnectAttempts; attempt++ {
            select {
            case <-ws.stopCh:
                return
            case <-time.After(ws.reconnectDelay * time.Duration(1<<uint(min(attempt-1, 5)))):
            }

            conn, err := ws.dial(ws.rootCtx)
            if err != nil {
                obslog.L().Warn("iris_ws_reconnect_failed", zap.Int("attempt", attempt), zap.Error(err))
                continue
            }
            if ws.isStopping() {
                _ = conn.Close(websocket.StatusNormalClosure, "close")
                return
            }
            ws.attach(conn)
            return
        }
        ws.setState(WSStateFailed)
    }()
}

// WriteJSON sends one frame on the current connection.
func (ws *WebSocket) WriteJSON(ctx context.Context, v any) error {
    conn := ws.currentConn()
    if conn == nil || ws.State() != WSStateConnected {
        return ErrNotConnected
    }
    if _, ok := ctx.Deadline(); !ok {
        var cancel context.CancelFunc
        ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
        defer cancel()
    }
    ws.writeM.Lock()
    defer ws.writeM.Unlock()
    return wsjson.Write(ctx, conn, v)
}

func (ws *WebSocket) currentConn() *websocket.Conn {
    ws.stateM.RLock()
    defer ws.stateM.RUnlock()
    return ws.conn
}

func (ws *WebSocket) OnMessage(cb MessageCallback) int {
    ws.cbM.Lock()
    defer ws.cbM.Unlock()
    ws.nextID++
    ws.msgCbs = append(ws.msgCbs, callbackEntry{id: ws.nextID, callback: cb})
    return ws.nextID
}

func (ws *WebSocket) RemoveMessageCallback(id int) {
    ws.cbM.Lock()
    defer ws.cbM.Unlock()
    for i, cb := range ws.msgCbs {
        if cb.id == id {
            ws.msgCbs = append(ws.msgCbs[:i], ws.msgCbs[i+1:]...)
            break
        }
    }
}

func (ws *WebSocket) OnStateChange(cb StateCallback) int {
    ws.cbM.Lock()
    defer ws.cbM.Unlock()
    ws.nextID++
    ws.stateCbs = append(ws.stateCbs, stateCallbackEntry{id: ws.nextID, callback: cb})
    return ws.nextID
}

func (ws *WebSocket) RemoveStateCallback(id int) {
    ws.cbM.Lock()
    defer ws.cbM.Unlock()
    for i, cb := range ws.stateCbs {
        if cb.id == id {
            ws.stateCbs = append(ws.stateCbs[:i], ws.stateCbs[i+1:]...)
            break
        }
    }
}

func (ws *WebSocket) setState(state WebSocketState) {
    ws.stateM.Lock()
    prev := ws.state
    ws.state = state
    ws.stateM.Unlock()
    if prev == state {
        return
    }
    obslog.L().Info("iris_ws_state", zap.Stringer("from", prev), zap.Stringer("to", state))

    ws.cbM.RLock()
    callbacks := make([]stateCallbackEntry, len(ws.stateCbs))
    copy(callbacks, ws.stateCbs)
    ws.cbM.RUnlock()
    for _, entry := range callbacks {
        if entry.callback != nil {
            entry.callback(state)
        }
    }
}

func (ws *WebSocket) Close(ctx context.Context) error {
    ws.stopOnce.Do(func() { close(ws.stopCh) })

    ws.stateM.Lock()
    conn := ws.conn
    ws.conn = nil
    ws.stateM.Unlock()
    if conn != nil {
        _ = conn.Close(websocket.StatusNormalClosure, "close")
    }
    ws.rootCancel()

    done := make(chan struct{})
    go func() {
        ws.wg.Wait()
        close(done)
    }()

    select {
    case <-ctx.Done():
        return ctx.Err()
    case <-done:
        ws.setState(WSStateDisconnected)
        return nil
    }
}

func (ws *WebSocket) isStopping() bool {
    select {
    case <-ws.stopCh:
        return true
    default:
        return false
    }
}

// SetHeaderProvider allows injecting headers into the WS handshake.
func (ws *WebSocket) SetHeaderProvider(h HeaderProvider) {
    ws.headerProvider = h
}

func (ws *WebSocket) buildHeaders() http.Header {
    hdr := http.Header{}
    if ws.headerProvider == nil {
        return hdr
    }
    for k, v := range ws.headerProvider() {
        if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
            continue
        }
        hdr.Set(k, v)
    }
    return hdr
}
