// Package seatmap holds the in-memory seat grid for one booking session.
// It tracks which seats are booked, which ones the user has picked and
// computes the price of the pending selection.  It knows nothing about
// storage or rendering.
package seatmap

import (
	"errors"
	"fmt"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// ErrAlreadyBooked is returned by Toggle when the seat is already booked.
var ErrAlreadyBooked = errors.New("this seat is already booked")

// Selector is a 10x10 grid of seat states plus the ordered list of seats
// selected in the current session.  The zero value is an empty grid.
// Selector is not safe for concurrent use.
type Selector struct {
	states   [model.GridSize][model.GridSize]model.SeatState
	selected []model.SeatID
}

// New returns an empty grid with every seat free.
func New() *Selector { return &Selector{} }

// Load marks each id as booked.  It is called once with the ledger's
// persisted seats before the user starts selecting.  A seat that was
// selected becomes booked and leaves the selection.
func (s *Selector) Load(booked []model.SeatID) error {
	for _, id := range booked {
		row, col, err := id.Position()
		if err != nil {
			return fmt.Errorf("load booked seats: %w", err)
		}
		if s.states[row][col] == model.SeatSelected {
			s.unselect(id)
		}
		s.states[row][col] = model.SeatBooked
	}
	return nil
}

// Toggle flips a seat between free and selected and returns its new
// state.  Booked seats cannot be toggled.
func (s *Selector) Toggle(id model.SeatID) (model.SeatState, error) {
	row, col, err := id.Position()
	if err != nil {
		return model.SeatFree, err
	}
	switch s.states[row][col] {
	case model.SeatBooked:
		return model.SeatBooked, fmt.Errorf("%w: %s", ErrAlreadyBooked, id)
	case model.SeatSelected:
		s.states[row][col] = model.SeatFree
		s.unselect(id)
		return model.SeatFree, nil
	default:
		s.states[row][col] = model.SeatSelected
		s.selected = append(s.selected, id)
		return model.SeatSelected, nil
	}
}

// State returns the state of a seat; unknown ids read as free.
func (s *Selector) State(id model.SeatID) model.SeatState {
	row, col, err := id.Position()
	if err != nil {
		return model.SeatFree
	}
	return s.states[row][col]
}

// Selected returns a copy of the pending selection in toggle order.
func (s *Selector) Selected() []model.SeatID {
	out := make([]model.SeatID, len(s.selected))
	copy(out, s.selected)
	return out
}

// ComputeCost is the number of selected seats times pricePerSeat.
func (s *Selector) ComputeCost(pricePerSeat int) int {
	return len(s.selected) * pricePerSeat
}

// MarkBooked moves the whole selection to booked after it has been
// committed and returns the seats that were moved.
func (s *Selector) MarkBooked() []model.SeatID {
	booked := s.selected
	for _, id := range booked {
		row, col, _ := id.Position()
		s.states[row][col] = model.SeatBooked
	}
	s.selected = nil
	return booked
}

// Release frees a booked seat after its cancellation was persisted.
func (s *Selector) Release(id model.SeatID) error {
	row, col, err := id.Position()
	if err != nil {
		return err
	}
	if s.states[row][col] == model.SeatBooked {
		s.states[row][col] = model.SeatFree
	}
	return nil
}

// Reset clears the booked markers from the grid.  The pending selection
// is kept.  Seats freed this way are still rejected by the ledger when
// committed.
func (s *Selector) Reset() {
	for r := range s.states {
		for c := range s.states[r] {
			if s.states[r][c] == model.SeatBooked {
				s.states[r][c] = model.SeatFree
			}
		}
	}
}

// Grid returns a snapshot of every seat state, row by row.
func (s *Selector) Grid() [model.GridSize][model.GridSize]model.SeatState {
	return s.states
}

func (s *Selector) unselect(id model.SeatID) {
	for i, sel := range s.selected {
		if sel == id {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			return
		}
	}
}
