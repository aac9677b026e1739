package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// LinePicker is the seat picker of --plain mode.  It prints the grid and
// reads one command per line from the same prompter as the menu, so a
// whole booking can be scripted on stdin.
type LinePicker struct {
	In  Prompter
	Out io.Writer
}

const pickPrompt = "SEAT TO TOGGLE, book, clear, cancel <seat> OR quit: "

// Pick runs until the user quits or the input ends and returns the
// confirmations made meanwhile.
func (p LinePicker) Pick(ctx context.Context, sess *service.Session) ([]*service.Confirmation, error) {
	var confs []*service.Confirmation
	for {
		p.printGrid(sess)
		line, err := p.In.Ask(pickPrompt)
		if errors.Is(err, io.EOF) {
			return confs, nil
		}
		if err != nil {
			return confs, err
		}
		fields := strings.Fields(strings.ToLower(line))
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "q", "quit", "exit":
			return confs, nil
		case "book":
			conf, err := sess.Book(ctx)
			if err != nil {
				p.say(capitalise(err.Error()))
				continue
			}
			confs = append(confs, conf)
			p.say(fmt.Sprintf("Booked %s for %d Rs.", seatList(conf.Seats), conf.Cost))
		case "clear":
			answer, err := p.In.Ask("Clear all booked seats from the display? (y/n): ")
			if err != nil && !errors.Is(err, io.EOF) {
				return confs, err
			}
			if strings.EqualFold(answer, "y") {
				sess.Clear()
				p.say("Display cleared. Booked seats still cannot be booked again.")
			} else {
				p.say("Clear aborted.")
			}
		case "cancel":
			if len(fields) != 2 {
				p.say("usage: cancel <seat>")
				continue
			}
			conf, err := sess.CancelSeat(ctx, fields[1])
			if err != nil {
				p.say(capitalise(err.Error()))
				continue
			}
			confs = append(confs, conf)
			p.say(fmt.Sprintf("Seat %s cancelled, %d Rs refunded.", fields[1], conf.Cost))
		default:
			st, err := sess.Toggle(fields[0])
			if err != nil {
				p.say(capitalise(err.Error()))
				continue
			}
			p.say(fmt.Sprintf("Seat %s %s. Total %d Rs", fields[0], strings.ToLower(st.String()), sess.Cost()))
		}
	}
}

// printGrid shows free seats by id, selected ones in brackets and booked
// ones as XX.
func (p LinePicker) printGrid(sess *service.Session) {
	key := sess.Key()
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s (%d Rs)\n", key.Movie, key.Day(), key.Class.Label(), key.Class.Price())
	grid := sess.Grid()
	for r := 0; r < model.GridSize; r++ {
		for c := 0; c < model.GridSize; c++ {
			if c > 0 {
				b.WriteByte(' ')
			}
			id := model.MustSeatID(r, c).String()
			switch grid[r][c] {
			case model.SeatSelected:
				b.WriteString("[" + id + "]")
			case model.SeatBooked:
				b.WriteString(" XX ")
			default:
				b.WriteString(" " + id + " ")
			}
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", model.GridSize*5-1))
	fmt.Fprintf(&b, "SCREEN THIS WAY. SELECTED: %s  TOTAL: %d Rs", seatList(sess.Selected()), sess.Cost())
	p.say(b.String())
}

func (p LinePicker) say(s string) { fmt.Fprintln(p.Out, s) }
