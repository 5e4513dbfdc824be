package main

import (
    "context"
    "errors"
    "strconv"
    "strings"

    "go.uber.org/zap"

    "github.com/park285/atomic-chess-bot/internal/adapter/chesspresenter"
    "github.com/park285/atomic-chess-bot/internal/chessbuilder"
    appcfg "github.com/park285/atomic-chess-bot/internal/config"
    "github.com/park285/atomic-chess-bot/internal/irisfast"
    "github.com/park285/atomic-chess-bot/internal/obslog"
    "github.com/park285/atomic-chess-bot/internal/pvp"
    "github.com/park285/atomic-chess-bot/internal/pvpchan"
    "github.com/park285/atomic-chess-bot/internal/pvpchess"
    "github.com/park285/atomic-chess-bot/pkg/chessdto"
)

const historyLimit = 10

// bot dispatches chat commands to the session backend and lobby.
type bot struct {
    cfg       *appcfg.AppConfig
    deps      *chessbuilder.Deps
    presenter *chesspresenter.Presenter
    formatter *chesspresenter.Formatter
}

func newBot(cfg *appcfg.AppConfig, deps *chessbuilder.Deps, presenter *chesspresenter.Presenter) *bot {
    return &bot{cfg: cfg, deps: deps, presenter: presenter, formatter: deps.Formatter}
}

// command splits "<prefix><command> args..." and reports whether msg is for us.
func (b *bot) command(msg *irisfast.Message) ([]string, bool) {
    if msg == nil || strings.TrimSpace(msg.Msg) == "" {
        return nil, false
    }
    if len(b.cfg.AllowedRooms) > 0 && !roomAllowed(b.cfg.AllowedRooms, msg.Room) {
        return nil, false
    }
    raw := strings.TrimSpace(msg.Msg)
    if !strings.HasPrefix(raw, b.cfg.BotPrefix) {
        return nil, false
    }
    parts := strings.Fields(strings.TrimPrefix(raw, b.cfg.BotPrefix))
    if len(parts) == 0 || !strings.EqualFold(parts[0], b.cfg.Command) {
        return nil, false
    }
    return parts[1:], true
}

func (b *bot) handle(ctx context.Context, msg *irisfast.Message) {
    args, ok := b.command(msg)
    if !ok {
        return
    }
    user := msg.UserID()
    if user == "" {
        b.reply(msg.Room, b.formatter.Error(domainErr("unknown_user", nil)))
        return
    }
    if len(args) == 0 {
        b.reply(msg.Room, b.formatter.Help())
        return
    }

    sub := strings.ToLower(args[0])
    rest := args[1:]
    switch {
    case strings.HasPrefix(args[0], "@"):
        b.challenge(ctx, msg, user, args)
    case sub == "help" || sub == "도움말":
        b.reply(msg.Room, b.formatter.Help())
    case sub == "status" || sub == "현황":
        b.status(ctx, msg, user)
    case sub == "resign" || sub == "기권":
        b.resign(ctx, msg, user)
    case sub == "history" || sub == "기록":
        b.history(ctx, msg, user)
    case sub == "record" || sub == "기보":
        b.record(ctx, msg, user, rest)
    case sub == "make" || sub == "방만들기":
        b.makeLobby(ctx, msg, user, rest)
    case sub == "join" || sub == "참가":
        b.join(ctx, msg, user, rest)
    case sub == "lobby" || sub == "대기방":
        b.lobby(ctx, msg)
    case sub == "cancel" || sub == "취소":
        b.cancel(ctx, msg, user)
    default:
        b.move(ctx, msg, user, strings.Join(args, " "))
    }
}

func (b *bot) challenge(ctx context.Context, msg *irisfast.Message, user string, args []string) {
    target := sanitizeUserArg(args[0])
    if target == "" {
        b.reply(msg.Room, b.formatter.Error(domainErr("unknown_user", nil)))
        return
    }
    color := pvp.ColorRandom
    if len(args) >= 2 && pvp.IsColorWord(args[1]) {
        color = pvp.ParseColorChoice(args[1])
    }
    for _, id := range []string{user, target} {
        if g, _ := b.deps.Games.ActiveGameByUserInRoom(ctx, id, msg.Room); g != nil {
            b.reply(msg.Room, b.formatter.Error(domainErr("busy", nil)))
            return
        }
    }
    g, err := b.deps.Games.CreateGame(ctx, pvpchess.CreateParams{
        OriginRoom:     msg.Room,
        ChallengerID:   user,
        ChallengerName: senderName(msg),
        TargetID:       target,
        TargetName:     target,
        Color:          string(color),
    })
    if err != nil {
        b.fail(msg.Room, "challenge", err)
        return
    }
    b.board(ctx, []string{g.OriginRoom}, g, "", b.formatter.Start)
}

func (b *bot) status(ctx context.Context, msg *irisfast.Message, user string) {
    g, err := b.deps.Games.ActiveGameByUserInRoom(ctx, user, msg.Room)
    if err == nil && g == nil {
        g, err = b.deps.Games.ActiveGameByUser(ctx, user)
    }
    if err != nil {
        b.fail(msg.Room, "status", err)
        return
    }
    if g == nil {
        b.reply(msg.Room, b.formatter.Status(nil))
        return
    }
    b.board(ctx, []string{msg.Room}, g, user, b.formatter.Status)
}

func (b *bot) resign(ctx context.Context, msg *irisfast.Message, user string) {
    g, err := b.deps.Games.ResignByRoom(ctx, user, msg.Room)
    if err != nil {
        b.fail(msg.Room, "resign", err)
        return
    }
    b.board(ctx, gameRooms(g), g, "", b.formatter.Finish)
}

func (b *bot) move(ctx context.Context, msg *irisfast.Message, user, text string) {
    g, out, err := b.deps.Games.PlayMoveByRoom(ctx, user, msg.Room, text)
    if err != nil {
        b.fail(msg.Room, "move", err)
        return
    }
    if !out.Applied() {
        b.reply(msg.Room, b.formatter.Move(pvpchess.ToMoveSummary(g, user, out, nil)))
        return
    }
    b.board(ctx, gameRooms(g), g, "", func(st *chessdto.SessionState) string {
        return b.formatter.Move(pvpchess.ToMoveSummary(g, user, out, st))
    })
}

func (b *bot) history(ctx context.Context, msg *irisfast.Message, user string) {
    list, err := b.deps.Repo.Recent(ctx, user, historyLimit)
    if err != nil {
        b.fail(msg.Room, "history", err)
        return
    }
    b.reply(msg.Room, b.formatter.History(pvpchess.ToRecords(list)))
}

// record shows the n-th entry of the history listing, 1-based.
func (b *bot) record(ctx context.Context, msg *irisfast.Message, user string, args []string) {
    n := 1
    if len(args) > 0 {
        v, err := strconv.Atoi(args[0])
        if err != nil || v < 1 || v > historyLimit {
            b.reply(msg.Room, b.formatter.Record(nil))
            return
        }
        n = v
    }
    list, err := b.deps.Repo.Recent(ctx, user, historyLimit)
    if err != nil {
        b.fail(msg.Room, "record", err)
        return
    }
    records := pvpchess.ToRecords(list)
    if n > len(records) {
        b.reply(msg.Room, b.formatter.Record(nil))
        return
    }
    b.reply(msg.Room, b.formatter.Record(&records[n-1]))
}

func (b *bot) makeLobby(ctx context.Context, msg *irisfast.Message, user string, args []string) {
    if b.deps.Lobby == nil {
        b.reply(msg.Room, b.formatter.Error(domainErr("lobby.unavailable", nil)))
        return
    }
    color := pvp.ColorRandom
    if len(args) > 0 {
        color = pvp.ParseColorChoice(args[0])
    }
    res, err := b.deps.Lobby.Make(ctx, msg.Room, user, senderName(msg), color)
    if err != nil {
        b.fail(msg.Room, "lobby_make", err)
        return
    }
    b.reply(msg.Room, b.formatter.LobbyMade(res.Code))
}

func (b *bot) join(ctx context.Context, msg *irisfast.Message, user string, args []string) {
    if b.deps.Lobby == nil {
        b.reply(msg.Room, b.formatter.Error(domainErr("lobby.unavailable", nil)))
        return
    }
    if len(args) == 0 {
        b.reply(msg.Room, b.formatter.Error(domainErr("lobby.gone", nil)))
        return
    }
    pref := pvp.ColorRandom
    if len(args) > 1 {
        pref = pvp.ParseColorChoice(args[1])
    }
    res, err := b.deps.Lobby.Join(ctx, msg.Room, args[0], user, senderName(msg), pref)
    if err != nil {
        b.fail(msg.Room, "lobby_join", err)
        return
    }
    if !res.Started {
        b.reply(msg.Room, b.formatter.LobbyQueued(res.Meta.ID))
        return
    }
    g, err := b.deps.Games.Load(ctx, res.GameID)
    if err != nil {
        b.fail(msg.Room, "lobby_join", err)
        return
    }
    b.board(ctx, gameRooms(g), g, "", b.formatter.Start)
}

func (b *bot) lobby(ctx context.Context, msg *irisfast.Message) {
    if b.deps.Lobby == nil {
        b.reply(msg.Room, b.formatter.Error(domainErr("lobby.unavailable", nil)))
        return
    }
    list, err := b.deps.Lobby.ListLobby(ctx)
    if err != nil {
        b.fail(msg.Room, "lobby_list", err)
        return
    }
    b.reply(msg.Room, b.formatter.LobbyList(chesspresenter.ToLobbyEntries(list)))
}

func (b *bot) cancel(ctx context.Context, msg *irisfast.Message, user string) {
    if b.deps.Lobby == nil {
        b.reply(msg.Room, b.formatter.Error(domainErr("lobby.unavailable", nil)))
        return
    }
    code, err := b.deps.Lobby.Cancel(ctx, user)
    if err != nil {
        b.fail(msg.Room, "lobby_cancel", err)
        return
    }
    b.reply(msg.Room, b.formatter.LobbyCancelled(code))
}

// board renders g once and posts text plus image to every room.
func (b *bot) board(ctx context.Context, rooms []string, g *pvpchess.Game, viewer string, text func(*chessdto.SessionState) string) {
    st, err := pvpchess.ToDTO(ctx, b.deps.Renderer, g, viewer)
    if err != nil {
        obslog.L().Error("atomic_render_error", zap.String("game_id", g.ID), zap.Error(err))
        // fall back to the text board
        st, err = pvpchess.ToDTO(ctx, nil, g, viewer)
        if err != nil {
            b.fail(rooms[0], "render", err)
            return
        }
        if err := b.presenter.Broadcast(rooms, text(st)+"\n\n"+st.BoardText, nil); err != nil {
            obslog.L().Warn("atomic_send_error", zap.Error(err))
        }
        return
    }
    if err := b.presenter.Broadcast(rooms, text(st), st); err != nil {
        obslog.L().Warn("atomic_send_error", zap.String("game_id", g.ID), zap.Error(err))
    }
}

func (b *bot) reply(room, text string) {
    if err := b.presenter.Text(room, text); err != nil {
        obslog.L().Warn("atomic_send_error", zap.String("room", room), zap.Error(err))
    }
}

func (b *bot) fail(room, op string, err error) {
    de := toDomainError(err)
    var known chessdto.DomainError
    if !errors.As(de, &known) {
        obslog.L().Error("atomic_command_error", zap.String("op", op), zap.String("room", room), zap.Error(err))
    }
    b.reply(room, b.formatter.Error(de))
}

func domainErr(code string, cause error) chessdto.DomainError {
    de := chessdto.DomainError{Code: code}
    if cause != nil {
        de.Message = cause.Error()
    }
    return de
}

// toDomainError maps session and lobby sentinels onto catalog codes. Other
// errors pass through unchanged.
func toDomainError(err error) error {
    switch {
    case errors.Is(err, pvpchess.ErrGameNotFound), errors.Is(err, pvpchess.ErrNotActive), errors.Is(err, pvpchess.ErrNotParticipant):
        return domainErr("no_game", err)
    case errors.Is(err, pvpchess.ErrSelfChallenge):
        return domainErr("self_challenge", err)
    case errors.Is(err, pvpchess.ErrInvalidArgs), errors.Is(err, pvpchan.ErrInvalidArgs):
        return domainErr("unknown_user", err)
    case errors.Is(err, pvpchan.ErrPlayerBusyInRoom):
        return domainErr("busy", err)
    case errors.Is(err, pvpchan.ErrChannelGone):
        return domainErr("lobby.gone", err)
    case errors.Is(err, pvpchan.ErrChannelActive), errors.Is(err, pvpchan.ErrFull):
        return domainErr("lobby.full", err)
    case errors.Is(err, pvpchan.ErrSelfJoin):
        return domainErr("lobby.self_join", err)
    case errors.Is(err, pvpchan.ErrCreatorHasLobby):
        return domainErr("lobby.exists", err)
    case errors.Is(err, pvpchan.ErrNoLobby):
        return domainErr("lobby.none", err)
    }
    return err
}

func gameRooms(g *pvpchess.Game) []string {
    return []string{g.OriginRoom, g.ResolveRoom}
}

func sanitizeUserArg(s string) string {
    return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "@"))
}

func senderName(msg *irisfast.Message) string {
    if name := msg.SenderName(); name != "" {
        return name
    }
    return msg.UserID()
}

func roomAllowed(allowed []string, room string) bool {
    for _, r := range allowed {
        if r == room {
            return true
        }
    }
    return false
}
