package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/doridoridoriand/pingtap/internal/log"
	"github.com/doridoridoriand/pingtap/internal/session"
)

const (
	spinnerInterval = 120 * time.Millisecond
	minWidth        = 20
	minHeight       = 8
	headerRows      = 7
	pageSize        = 10

	buttonIdle = "[ PING ]"
	buttonBusy = "[ Pinging... ]"
	emptyHint  = "Press Enter to measure response time"
)

var spinnerFrames = []rune{'|', '/', '-', '\\'}

// UI is an interactive terminal front end for a session.
type UI struct {
	session *session.Session
	logger  *log.Logger
	wake    chan struct{}

	frame  int
	scroll int
}

// New returns a UI bound to sess. Session changes redraw the screen.
func New(sess *session.Session, logger *log.Logger) *UI {
	if logger == nil {
		logger = log.Nop()
	}
	u := &UI{session: sess, logger: logger, wake: make(chan struct{}, 1)}
	sess.OnChange(u.notify)
	return u
}

func (u *UI) notify() {
	select {
	case u.wake <- struct{}{}:
	default:
	}
}

// Run blocks until the context is cancelled or the user quits.
func (u *UI) Run(ctx context.Context) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	eventCh := make(chan tcell.Event, 1)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventCh <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	u.render(screen)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-eventCh:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if u.handleKey(ctx, ev.Key(), ev.Rune()) {
					return context.Canceled
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-u.wake:
		case <-ticker.C:
			if !u.session.Snapshot().Busy {
				continue
			}
			u.frame++
		}
		u.render(screen)
	}
}

// handleKey applies one key press and reports whether the user asked to quit.
func (u *UI) handleKey(ctx context.Context, key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		return true
	case tcell.KeyEnter:
		if _, err := u.session.Submit(ctx); err != nil && !errors.Is(err, session.ErrEmptyTarget) {
			u.logger.Debug("submit ignored", zap.Error(err))
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		u.session.Backspace()
	case tcell.KeyCtrlU:
		u.session.SetInput("")
	case tcell.KeyUp:
		u.scroll--
	case tcell.KeyDown:
		u.scroll++
	case tcell.KeyPgUp:
		u.scroll -= pageSize
	case tcell.KeyPgDn:
		u.scroll += pageSize
	case tcell.KeyRune:
		u.session.AppendInput(r)
	}
	if u.scroll < 0 {
		u.scroll = 0
	}
	return false
}

func (u *UI) render(screen tcell.Screen) {
	screen.Clear()
	width, height := screen.Size()
	l := buildLayout(u.session.Snapshot(), width, height, u.frame, u.scroll)
	u.scroll = l.scroll
	for y, row := range l.rows {
		drawStyledText(screen, 0, y, width, row)
	}
	if l.cursorX >= 0 {
		screen.ShowCursor(l.cursorX, l.cursorY)
	} else {
		screen.HideCursor()
	}
	screen.Show()
}

type layout struct {
	rows    [][]styledRune
	cursorX int
	cursorY int
	scroll  int
}

// buildLayout lays out view on a width x height screen. Rows are already clipped to width.
func buildLayout(view session.View, width, height, frame, scroll int) layout {
	if width < minWidth || height < minHeight {
		return layout{
			rows:    [][]styledRune{flattenStyledText([]styledText{{text: "window too small", style: dimStyle}}, width)},
			cursorX: -1,
		}
	}

	rows := make([][]styledRune, 0, height)
	add := func(parts ...styledText) {
		rows = append(rows, flattenStyledText(parts, width))
	}

	add(styledText{text: fmt.Sprintf(" pingtap  [%s]  Enter: ping  Esc: quit", view.Variant), style: tcell.StyleDefault.Bold(true)})
	add()

	prompt := " Address: "
	add(styledText{text: prompt, style: tcell.StyleDefault.Bold(true)}, styledText{text: view.Input, style: tcell.StyleDefault})
	cursorX := len([]rune(prompt)) + len([]rune(view.Input))
	if cursorX >= width {
		cursorX = width - 1
	}

	add()
	if view.Busy {
		spin := string(spinnerFrames[frame%len(spinnerFrames)])
		add(styledText{text: " " + buttonBusy + " ", style: dimStyle}, styledText{text: spin + " " + view.Pending, style: tcell.StyleDefault})
	} else {
		add(styledText{text: " " + buttonIdle, style: tcell.StyleDefault.Bold(true).Reverse(true)})
	}

	if view.Notice != "" {
		add(styledText{text: " " + view.Notice, style: failureStyle})
	} else {
		add()
	}
	add(styledText{text: fmt.Sprintf(" Results (%d)", len(view.Entries)), style: tcell.StyleDefault.Underline(true)})

	listHeight := height - headerRows
	maxScroll := maxInt(0, len(view.Entries)-listHeight)
	scroll = minInt(maxInt(scroll, 0), maxScroll)

	if len(view.Entries) == 0 {
		add(styledText{text: " " + emptyHint, style: dimStyle})
	}
	for i := scroll; i < len(view.Entries) && len(rows) < height; i++ {
		entry := view.Entries[i]
		style := successStyle
		if !entry.Result.Success {
			style = failureStyle
		}
		add(styledText{text: " " + entry.Line(), style: style})
	}

	return layout{rows: rows, cursorX: cursorX, cursorY: 2, scroll: scroll}
}

var (
	successStyle = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	failureStyle = tcell.StyleDefault.Foreground(tcell.ColorRed)
	dimStyle     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

type styledText struct {
	text  string
	style tcell.Style
}

type styledRune struct {
	r     []rune
	style tcell.Style
}

func drawStyledText(screen tcell.Screen, x, y, width int, parts []styledRune) {
	if width <= 0 {
		return
	}
	col := x
	for _, part := range parts {
		for _, r := range part.r {
			if col >= x+width {
				return
			}
			screen.SetContent(col, y, r, nil, part.style)
			col++
		}
	}
	for col < x+width {
		screen.SetContent(col, y, ' ', nil, tcell.StyleDefault)
		col++
	}
}

func flattenStyledText(parts []styledText, width int) []styledRune {
	result := make([]styledRune, 0, len(parts))
	used := 0
	for _, part := range parts {
		runes := []rune(part.text)
		if used+len(runes) > width {
			runes = runes[:maxInt(0, width-used)]
		}
		result = append(result, styledRune{r: runes, style: part.style})
		used += len(runes)
		if used >= width {
			break
		}
	}
	return result
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
