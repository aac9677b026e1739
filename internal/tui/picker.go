// Package tui renders the seat grid of a booking session in the terminal.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// Session is the booking session driven by the grid.
type Session interface {
	Key() model.BookingKey
	Grid() [model.GridSize][model.GridSize]model.SeatState
	Toggle(seat string) (model.SeatState, error)
	Selected() []model.SeatID
	Cost() int
	Book(ctx context.Context) (*service.Confirmation, error)
	CancelSeat(ctx context.Context, seat string) (*service.Confirmation, error)
	Clear()
}

type mode int

const (
	modeGrid mode = iota
	modeConfirmClear
)

// Model is the bubbletea model of the seat picker.  All session calls run
// inside Update so the grid is only touched by the update loop.
type Model struct {
	ctx   context.Context
	sess  Session
	input textinput.Model
	mode  mode

	row, col int

	status string
	failed bool

	// Confirmations collects every booking and cancellation made.
	Confirmations []*service.Confirmation
}

// New returns a picker for sess with the cursor on seat "11".
func New(ctx context.Context, sess Session) Model {
	in := textinput.New()
	in.Placeholder = "seat (e.g. 47), book, clear, cancel 47, quit"
	in.CharLimit = 16
	in.Prompt = "> "
	in.Focus()
	return Model{ctx: ctx, sess: sess, input: in}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if m.mode == modeConfirmClear {
		switch strings.ToLower(key.String()) {
		case "y":
			m.sess.Clear()
			m.setStatus("Display cleared. Booked seats still cannot be booked again.", false)
		default:
			m.setStatus("Clear aborted.", false)
		}
		m.mode = modeGrid
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyUp:
		m.row = (m.row + model.GridSize - 1) % model.GridSize
		return m, nil
	case tea.KeyDown:
		m.row = (m.row + 1) % model.GridSize
		return m, nil
	case tea.KeyLeft:
		m.col = (m.col + model.GridSize - 1) % model.GridSize
		return m, nil
	case tea.KeyRight:
		m.col = (m.col + 1) % model.GridSize
		return m, nil
	case tea.KeyEnter:
		line := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if line == "" {
			line = model.MustSeatID(m.row, m.col).String()
		}
		return m.run(line)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// run executes one command line.
func (m Model) run(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(strings.ToLower(line))
	switch fields[0] {
	case "q", "quit", "exit":
		return m, tea.Quit
	case "book":
		conf, err := m.sess.Book(m.ctx)
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.Confirmations = append(m.Confirmations, conf)
		m.setStatus(fmt.Sprintf("Booked %s for %d Rs. Ref %s", joinSeats(conf.Seats), conf.Cost, conf.Reference), false)
	case "clear":
		m.mode = modeConfirmClear
		m.setStatus("Clear all booked seats from the display? (y/n)", false)
	case "cancel":
		if len(fields) != 2 {
			m.setStatus("usage: cancel <seat>", true)
			return m, nil
		}
		conf, err := m.sess.CancelSeat(m.ctx, fields[1])
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.Confirmations = append(m.Confirmations, conf)
		m.setStatus(fmt.Sprintf("Seat %s cancelled, %d Rs refunded.", fields[1], conf.Cost), false)
	default:
		st, err := m.sess.Toggle(fields[0])
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		if id, err := model.ParseSeatID(fields[0]); err == nil {
			m.row, m.col, _ = id.Position()
		}
		m.setStatus(fmt.Sprintf("Seat %s %s. Total %d Rs", fields[0], strings.ToLower(st.String()), m.sess.Cost()), false)
	}
	return m, nil
}

func (m *Model) setStatus(s string, failed bool) {
	m.status, m.failed = s, failed
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	freeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("3")).Bold(true)
	bookedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	cursorStyle   = lipgloss.NewStyle().Underline(true).Reverse(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	hintStyle     = lipgloss.NewStyle().Faint(true)
	screenStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214"))
)

func (m Model) View() string {
	key := m.sess.Key()
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  %s  %s (%d Rs)", key.Movie, key.Day(), key.Class.Label(), key.Class.Price())))
	b.WriteString("\n\n")

	grid := m.sess.Grid()
	for r := 0; r < model.GridSize; r++ {
		for c := 0; c < model.GridSize; c++ {
			cell := m.cell(model.MustSeatID(r, c).String(), grid[r][c])
			if r == m.row && c == m.col {
				cell = cursorStyle.Render(cell)
			}
			b.WriteString(cell)
			if c < model.GridSize-1 {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(screenStyle.Render(centre("SCREEN", model.GridSize*3-1)))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Selected: %s  Total: %d Rs\n", joinSeats(m.sess.Selected()), m.sess.Cost()))
	if m.status != "" {
		if m.failed {
			b.WriteString(errStyle.Render(m.status))
		} else {
			b.WriteString(m.status)
		}
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("arrows move • enter toggles the highlighted seat • esc quits"))
	return b.String()
}

func (m Model) cell(label string, st model.SeatState) string {
	switch st {
	case model.SeatSelected:
		return selectedStyle.Render(label)
	case model.SeatBooked:
		return bookedStyle.Render("XX")
	default:
		return freeStyle.Render(label)
	}
}

func centre(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}

func joinSeats(ids []model.SeatID) string {
	if len(ids) == 0 {
		return "-"
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return strings.Join(out, ", ")
}

// Picker runs the grid as a full-screen program.
type Picker struct {
	In  io.Reader
	Out io.Writer
}

// Pick runs the grid for sess until the user quits and returns the
// confirmations made meanwhile.
func (p Picker) Pick(ctx context.Context, sess *service.Session) ([]*service.Confirmation, error) {
	var opts []tea.ProgramOption
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}
	opts = append(opts, tea.WithContext(ctx), tea.WithAltScreen())

	final, err := tea.NewProgram(New(ctx, sess), opts...).Run()
	if m, ok := final.(Model); ok {
		return m.Confirmations, err
	}
	return nil, err
}
