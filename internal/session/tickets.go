package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
	"github.com/iliyamo/movie-ticket-booking/internal/validate"
)

func (m *Menu) book(ctx context.Context) error {
	m.say("\n****PVR LOGIX IMAX THEATRE BOOKING (AC & NON AC)****")
	for _, c := range model.SeatClasses {
		m.say(fmt.Sprintf("%d. %s  Price=%dRs", c, strings.ToUpper(c.Label()), c.Price()))
	}
	choice, err := m.In.Ask("Enter your choice (1,2,3): ")
	if err != nil {
		return err
	}
	class, err := model.ParseSeatClass(choice)
	if err != nil {
		m.say("Invalid seat type")
		return nil
	}

	date, movies, err := m.askDate()
	if err != nil {
		return err
	}
	if len(movies) == 0 {
		m.say("Movies not available for this date, please try again later")
		return nil
	}
	for i, mv := range movies {
		m.say(fmt.Sprintf("%d. %s", i+1, mv.Name()))
	}
	answer, err := m.In.Ask("Enter the movie number: ")
	if err != nil {
		return err
	}
	n, convErr := strconv.Atoi(answer)
	if convErr != nil || n < 1 || n > len(movies) {
		m.say("Invalid movie choice")
		return nil
	}

	phone, err := m.In.Ask("Enter your phone number (91+): ")
	if err != nil {
		return err
	}
	if !validate.Phone(phone) {
		m.say("Enter a valid phone number")
		return nil
	}
	gender, err := m.In.Ask("Enter your gender (m/f/n): ")
	if err != nil {
		return err
	}
	if !validate.Gender(gender) {
		m.say("Invalid gender")
		return nil
	}
	answer, err = m.In.Ask("Enter number of tickets: ")
	if err != nil {
		return err
	}
	tickets, convErr := strconv.Atoi(answer)
	if convErr != nil || tickets <= 0 || tickets > service.MaxTickets {
		m.say("Invalid number of tickets")
		return nil
	}

	sess, err := m.Bookings.OpenSession(ctx, service.BookingRequest{
		Movie:   movies[n-1].Name(),
		Date:    date,
		Class:   class,
		Phone:   phone,
		Gender:  gender,
		Tickets: tickets,
	})
	if err != nil {
		m.fail(err)
		return nil
	}
	confs, err := m.Picker.Pick(ctx, sess)
	for _, c := range confs {
		m.printConfirmation(c)
	}
	if err != nil {
		m.fail(err)
	}
	return nil
}

// askDate repeats the day, month and year questions until the date is
// bookable and returns it with its programme.
func (m *Menu) askDate() (time.Time, []model.Movie, error) {
	for {
		var parts [3]int
		valid := true
		for i, label := range []string{"Enter day (DD): ", "Enter month (MM): ", "Enter year (YYYY): "} {
			s, err := m.In.Ask(label)
			if err != nil {
				return time.Time{}, nil, err
			}
			if parts[i], err = strconv.Atoi(s); err != nil {
				valid = false
				break
			}
		}
		if !valid {
			m.say("Invalid date, please try again")
			continue
		}
		date, err := service.CalendarDate(parts[2], parts[1], parts[0])
		if err != nil {
			m.say("Invalid date, please try again")
			continue
		}
		movies, err := m.Bookings.Programme(date)
		switch {
		case errors.Is(err, service.ErrDateInPast):
			m.say("Date cannot be in the past")
		case errors.Is(err, service.ErrDateTooFar):
			m.say(fmt.Sprintf("Can only book up to %d days in advance", m.MaxAdvanceDays))
		case err != nil:
			return time.Time{}, nil, err
		default:
			return date, movies, nil
		}
	}
}

func (m *Menu) askPhone() (string, bool, error) {
	phone, err := m.In.Ask("Enter your phone number(91+): ")
	if err != nil {
		return "", false, err
	}
	if !validate.Phone(phone) {
		m.say("Enter a Valid phone number")
		return "", false, nil
	}
	return phone, true, nil
}

// bookedTickets lists the records of phone that still hold seats.
func (m *Menu) bookedTickets(ctx context.Context, phone string) ([]model.BookingRecord, error) {
	recs, err := m.Bookings.Tickets(ctx, phone)
	if err != nil {
		return nil, err
	}
	out := recs[:0]
	for _, r := range recs {
		if len(r.BookedSeats) > 0 {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Menu) checkTickets(ctx context.Context) error {
	phone, ok, err := m.askPhone()
	if err != nil || !ok {
		return err
	}
	recs, err := m.bookedTickets(ctx, phone)
	if err != nil {
		m.say("An error occurred while checking the ticket. Please try again or contact us.")
		m.fail(err)
		return nil
	}
	if len(recs) == 0 {
		m.say("No tickets found for this phone number.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(m.Out)
	t.SetTitle("Ticket Details")
	t.AppendHeader(table.Row{"Movie", "Gender", "Date", "Tickets", "Phone", "Booked seats", "Seat Type"})
	t.Style().Options.SeparateRows = true
	for _, r := range recs {
		t.AppendRow(table.Row{
			r.Key.Movie, r.Gender, r.Key.Day(), r.TicketCount, r.Phone,
			seatList(r.BookedSeats), r.Key.Class.Label(),
		})
	}
	t.Render()
	return nil
}

func (m *Menu) cancelTicket(ctx context.Context) error {
	phone, ok, err := m.askPhone()
	if err != nil || !ok {
		return err
	}
	recs, err := m.bookedTickets(ctx, phone)
	if err != nil {
		m.fail(err)
		return nil
	}
	if len(recs) == 0 {
		m.say("No tickets found for this phone number.")
		return nil
	}
	m.say("\nYour Tickets:")
	for i, r := range recs {
		m.say(fmt.Sprintf("%d. Movie: %s, Date: %s, Seats: %s, Type: %s",
			i+1, r.Key.Movie, r.Key.Day(), seatList(r.BookedSeats), r.Key.Class.Key()))
	}
	answer, err := m.In.Ask("Enter the number of the ticket you want to cancel (0 to abort): ")
	if err != nil {
		return err
	}
	n, convErr := strconv.Atoi(answer)
	switch {
	case convErr != nil || n < 0 || n > len(recs):
		m.say("Invalid choice.")
		return nil
	case n == 0:
		m.say("Cancellation aborted.")
		return nil
	}
	answer, err = m.In.Ask("Are you sure you want to cancel this ticket? (y/n): ")
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") {
		m.say("Cancellation aborted.")
		return nil
	}
	conf, err := m.Bookings.CancelTicket(ctx, recs[n-1].Key, phone)
	if err != nil {
		m.fail(err)
		return nil
	}
	m.printConfirmation(conf)
	m.say("TICKET CANCELLED. YOUR MONEY HAS BEEN REFUNDED SUCCESSFULLY.")
	return nil
}

func (m *Menu) printConfirmation(c *service.Confirmation) {
	m.say(c.Receipt)
	if c.QRPath != "" {
		m.say("UPI QR code generated and saved as " + c.QRPath)
	}
}

func seatList(ids []model.SeatID) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return strings.Join(out, ", ")
}
