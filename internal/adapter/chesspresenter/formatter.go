package chesspresenter

import (
	"errors"
	"strings"
	"time"

	"github.com/park285/atomic-chess-bot/internal/msgcat"
	"github.com/park285/atomic-chess-bot/internal/util"
	"github.com/park285/atomic-chess-bot/pkg/chessdto"
)

const historyDateLayout = "01-02 15:04"

// PrefixProvider exposes the Prefix that Kakao messages should use.
type PrefixProvider interface {
	Prefix() string
}

// StaticPrefix is a fixed PrefixProvider.
type StaticPrefix string

func (p StaticPrefix) Prefix() string { return string(p) }

// Formatter renders atomic chess DTOs into Kakao-friendly text blocks using
// the message catalog.
type Formatter struct {
	prefixProvider PrefixProvider
	command        string
	cat            *msgcat.Catalog
}

func NewFormatter(provider PrefixProvider, command string, cat *msgcat.Catalog) *Formatter {
	return &Formatter{prefixProvider: provider, command: strings.TrimSpace(command), cat: cat}
}

func (f *Formatter) Prefix() string {
	if f == nil || f.prefixProvider == nil {
		return ""
	}
	return strings.TrimSpace(f.prefixProvider.Prefix())
}

func (f *Formatter) text(key string, data map[string]any) string {
	if data == nil {
		data = map[string]any{}
	}
	data["Prefix"] = f.Prefix()
	data["Command"] = f.command
	return f.cat.Text(key, data)
}

// ColorName is the localized side name.
func (f *Formatter) ColorName(color string) string {
	if strings.EqualFold(color, "black") {
		return f.text("color.black", nil)
	}
	return f.text("color.white", nil)
}

func (f *Formatter) Help() string {
	return util.SeeMore(f.text("atomic.help", nil))
}

func (f *Formatter) Start(state *chessdto.SessionState) string {
	if state == nil {
		return f.text("atomic.no_game", nil)
	}
	var sb strings.Builder
	sb.WriteString(f.text("atomic.start", map[string]any{"White": state.WhiteName, "Black": state.BlackName}))
	sb.WriteString("\n")
	sb.WriteString(f.turnLine(state))
	return sb.String()
}

func (f *Formatter) turnLine(state *chessdto.SessionState) string {
	return f.text("atomic.turn", map[string]any{"Color": f.ColorName(state.Turn), "Name": state.TurnName})
}

// Move renders the outcome of a submitted move. Rejections produce a single line.
func (f *Formatter) Move(summary *chessdto.MoveSummary) string {
	if summary == nil {
		return ""
	}
	switch {
	case summary.Conflict:
		return f.text("atomic.conflict", nil)
	case summary.NotYourTurn:
		return f.text("atomic.not_your_turn", nil)
	case !summary.Accepted:
		return f.Reject(summary.Reason)
	}

	lines := []string{f.text("atomic.move", map[string]any{"Name": summary.Mover, "From": summary.From, "To": summary.To})}
	if summary.Captured {
		lines = append(lines, f.text("atomic.explosion", map[string]any{"Square": summary.To, "Count": len(summary.Cleared)}))
	}
	if state := summary.State; state != nil {
		if state.Finished() {
			lines = append(lines, f.Finish(state))
		} else {
			lines = append(lines, f.turnLine(state))
		}
	}
	return strings.Join(lines, "\n")
}

// Reject explains a rule rejection; unknown reasons are shown as-is.
func (f *Formatter) Reject(reason string) string {
	key := "reject." + strings.TrimSpace(reason)
	if f.cat == nil || !f.cat.Has(key) {
		return reason
	}
	return f.text(key, nil)
}

// Finish announces the end of a game.
func (f *Formatter) Finish(state *chessdto.SessionState) string {
	if state == nil {
		return ""
	}
	if state.Outcome == "resign" {
		loser := state.WhiteName
		if state.WinnerName == state.WhiteName {
			loser = state.BlackName
		}
		return f.text("atomic.finish.resign", map[string]any{"Loser": loser, "Winner": state.WinnerName})
	}
	return f.text("atomic.finish.king", map[string]any{"Winner": state.WinnerName})
}

func (f *Formatter) Status(state *chessdto.SessionState) string {
	if state == nil {
		return f.text("atomic.no_game", nil)
	}
	var sb strings.Builder
	sb.WriteString(f.text("atomic.status", map[string]any{"White": state.WhiteName, "Black": state.BlackName, "Moves": state.MoveCount}))
	sb.WriteString("\n")
	if state.Finished() {
		sb.WriteString(f.Finish(state))
	} else {
		sb.WriteString(f.turnLine(state))
	}
	return sb.String()
}

func (f *Formatter) History(records []chessdto.GameRecord) string {
	if len(records) == 0 {
		return f.text("atomic.history.empty", nil)
	}
	header := f.text("atomic.history.header", nil)
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteByte('\n')
	for i, r := range records {
		sb.WriteString(f.text("atomic.history.entry", map[string]any{
			"Index":  i + 1,
			"White":  r.WhiteName,
			"Black":  r.BlackName,
			"Result": r.Result,
			"Method": f.method(r.Method),
			"Plies":  r.Plies,
			"Date":   formatShortTime(r.EndedAt),
		}))
		sb.WriteByte('\n')
	}
	sb.WriteString("\n")
	sb.WriteString(f.text("atomic.history.footer", nil))
	return util.SeeMore(sb.String())
}

// Record shows one archived game with its move list.
func (f *Formatter) Record(r *chessdto.GameRecord) string {
	if r == nil {
		return f.text("atomic.history.missing", nil)
	}
	return f.text("atomic.history.record", map[string]any{
		"White":      r.WhiteName,
		"Black":      r.BlackName,
		"Result":     r.Result,
		"Method":     f.method(r.Method),
		"Explosions": r.Explosions,
		"Duration":   formatGameDuration(r.Duration),
		"MoveText":   r.MoveText,
	})
}

func (f *Formatter) method(m string) string {
	key := "atomic.history.method." + strings.TrimSpace(m)
	if f.cat == nil || !f.cat.Has(key) {
		return m
	}
	return f.text(key, nil)
}

func (f *Formatter) LobbyMade(code string) string {
	return f.text("atomic.lobby.made", map[string]any{"Code": code})
}

func (f *Formatter) LobbyQueued(code string) string {
	return f.text("atomic.lobby.queued", map[string]any{"Code": code})
}

func (f *Formatter) LobbyCancelled(code string) string {
	return f.text("atomic.lobby.cancelled", map[string]any{"Code": code})
}

func (f *Formatter) LobbyList(entries []chessdto.LobbyEntry) string {
	if len(entries) == 0 {
		return f.text("atomic.lobby.empty", nil)
	}
	var sb strings.Builder
	sb.WriteString(f.text("atomic.lobby.header", nil))
	for _, e := range entries {
		sb.WriteByte('\n')
		sb.WriteString(f.text("atomic.lobby.entry", map[string]any{"Code": e.Code, "Creator": e.Creator}))
	}
	return sb.String()
}

// Error renders a DomainError by its catalog code, anything else as the generic error text.
func (f *Formatter) Error(err error) string {
	var de chessdto.DomainError
	if errors.As(err, &de) && de.Code != "" {
		if key := "atomic." + de.Code; f.cat != nil && f.cat.Has(key) {
			return f.text(key, nil)
		}
		if de.Message != "" {
			return de.Message
		}
	}
	return f.text("atomic.error", map[string]any{"Err": err})
}

func formatShortTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return util.FormatKST(t, historyDateLayout)
}

func formatGameDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
