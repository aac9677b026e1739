// Package session runs the interactive text menu of the terminal client.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// Accounts is the account directory used by the menu.
type Accounts interface {
	SignUp(ctx context.Context, req service.SignUpRequest) (*model.UserAccount, error)
	SignIn(ctx context.Context, username, password string) (*model.UserAccount, error)
	Details(ctx context.Context, username, password string) (*model.UserAccount, error)
	DeleteAccount(ctx context.Context, username, password string, confirm func(*model.UserAccount) bool) error
}

// Bookings is the booking service used by the menu.
type Bookings interface {
	Programme(date time.Time) ([]model.Movie, error)
	OpenSession(ctx context.Context, req service.BookingRequest) (*service.Session, error)
	Tickets(ctx context.Context, phone string) ([]model.BookingRecord, error)
	CancelTicket(ctx context.Context, key model.BookingKey, phone string) (*service.Confirmation, error)
}

// SeatPicker lets the user pick, book and cancel seats of an open session.
type SeatPicker interface {
	Pick(ctx context.Context, sess *service.Session) ([]*service.Confirmation, error)
}

// Menu is the start menu and, once signed in, the main menu.
type Menu struct {
	Accounts       Accounts
	Bookings       Bookings
	Picker         SeatPicker
	In             Prompter
	Out            io.Writer
	Log            *slog.Logger
	MaxAdvanceDays int
}

const banner = "WELCOME TO PVR LOGIX IMAX THEATRE BOOKING, NEW DELHI (AC & NON AC)"

// Run shows the start menu until the user exits or closes the input.
func (m *Menu) Run(ctx context.Context) error {
	err := m.start(ctx)
	if errors.Is(err, io.EOF) {
		m.say("THANK YOU")
		return nil
	}
	return err
}

func (m *Menu) start(ctx context.Context) error {
	for {
		m.say("\n" + banner)
		m.say("1. SIGN IN")
		m.say("2. SIGN UP")
		m.say("3. DELETE ACCOUNT")
		m.say("4. EXIT")
		choice, err := m.In.Ask("ENTER YOUR CHOICE (1,2,3,4): ")
		if err != nil {
			return err
		}
		var in bool
		switch choice {
		case "1":
			in, err = m.signIn(ctx)
		case "2":
			in, err = m.signUp(ctx)
		case "3":
			err = m.deleteAccount(ctx)
		case "4":
			m.say("THANK YOU")
			return nil
		default:
			m.say("PLEASE ENTER A VALID INPUT, TRY AGAIN")
		}
		if err != nil {
			return err
		}
		if in {
			if err := m.main(ctx); err != nil {
				return err
			}
		}
	}
}

func (m *Menu) main(ctx context.Context) error {
	for {
		m.say("\n1. TICKET BOOKING")
		m.say("2. TICKET CHECKING")
		m.say("3. TICKET CANCELLING")
		m.say("4. ACCOUNT DETAILS")
		m.say("5. LOG OUT")
		choice, err := m.In.Ask("Enter your choice (1,2,3,4,5): ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = m.book(ctx)
		case "2":
			err = m.checkTickets(ctx)
		case "3":
			err = m.cancelTicket(ctx)
		case "4":
			err = m.accountDetails(ctx)
		case "5":
			m.say("THANK YOU")
			return nil
		default:
			m.say("WRONG INPUT")
		}
		if err != nil {
			return err
		}
	}
}

func (m *Menu) signIn(ctx context.Context) (bool, error) {
	user, pass, err := m.credentials()
	if err != nil {
		return false, err
	}
	u, err := m.Accounts.SignIn(ctx, user, pass)
	switch {
	case errors.Is(err, service.ErrAuthentication):
		m.say("ACCOUNT DOES NOT EXIST")
		return false, nil
	case err != nil:
		m.fail(err)
		return false, nil
	}
	m.say("WELCOME " + u.FullName())
	return true, nil
}

func (m *Menu) signUp(ctx context.Context) (bool, error) {
	var req service.SignUpRequest
	var age string
	fields := []struct {
		label  string
		dst    *string
		secret bool
	}{
		{"FIRST NAME: ", &req.FirstName, false},
		{"LAST NAME: ", &req.LastName, false},
		{"USER NAME: ", &req.Username, false},
		{"PASSWORD: ", &req.Password, true},
		{"RE-ENTER YOUR PASSWORD: ", &req.ConfirmPassword, true},
		{"PHONE NUMBER (91+): ", &req.Phone, false},
		{"ENTER YOUR GENDER (m/f/n): ", &req.Gender, false},
		{"DATE OF BIRTH (DD-MM-YYYY): ", &req.DOB, false},
		{"YOUR AGE: ", &age, false},
	}
	for _, f := range fields {
		ask := m.In.Ask
		if f.secret {
			ask = m.In.Secret
		}
		v, err := ask(f.label)
		if err != nil {
			return false, err
		}
		*f.dst = v
	}
	req.Age, _ = strconv.Atoi(age) // zero fails the age check

	u, err := m.Accounts.SignUp(ctx, req)
	switch {
	case err == nil:
		m.say("WELCOME " + u.FullName())
		return true, nil
	case errors.Is(err, service.ErrInvalidPhone):
		m.say("Enter a Valid phone number")
	case errors.Is(err, service.ErrPasswordMismatch):
		m.say("PASSWORDS DO NOT MATCH, PLEASE RETRY")
	case errors.Is(err, service.ErrDuplicateUsername):
		m.say("SORRY, USERNAME ALREADY EXISTS, PLEASE CHOOSE A DIFFERENT USERNAME")
	case errors.Is(err, service.ErrDuplicatePhone):
		m.say("SORRY, THIS PHONE NUMBER IS ALREADY IN USE, PLEASE CHOOSE A DIFFERENT PHONE NUMBER")
	case errors.Is(err, service.ErrInvalidDOB):
		m.say("Invalid date format. Please use DD-MM-YYYY.")
	default:
		m.fail(err)
	}
	return false, nil
}

func (m *Menu) deleteAccount(ctx context.Context) error {
	user, pass, err := m.credentials()
	if err != nil {
		return err
	}
	var askErr error
	err = m.Accounts.DeleteAccount(ctx, user, pass, func(u *model.UserAccount) bool {
		m.say("IS THIS YOUR ACCOUNT?")
		m.say("Name: " + u.FullName())
		m.printAccount(u)
		answer, err := m.In.Ask("Enter 1 to confirm deletion, any other key to cancel: ")
		if err != nil {
			askErr = err
			return false
		}
		return answer == "1"
	})
	if askErr != nil {
		return askErr
	}
	switch {
	case err == nil:
		m.say("ACCOUNT DELETED")
	case errors.Is(err, service.ErrAuthentication):
		m.say("YOUR PASSWORD OR USER NAME IS INCORRECT")
	case errors.Is(err, service.ErrNotConfirmed):
		m.say("ACCOUNT NOT DELETED")
	default:
		m.fail(err)
	}
	return nil
}

func (m *Menu) accountDetails(ctx context.Context) error {
	user, pass, err := m.credentials()
	if err != nil {
		return err
	}
	u, err := m.Accounts.Details(ctx, user, pass)
	switch {
	case errors.Is(err, service.ErrAuthentication):
		m.say("ACCOUNT DOES NOT EXIST")
		return nil
	case err != nil:
		m.fail(err)
		return nil
	}
	m.say("First Name: " + u.FirstName)
	m.say("Last Name: " + u.LastName)
	m.printAccount(u)
	return nil
}

func (m *Menu) printAccount(u *model.UserAccount) {
	m.say("Phone Number: " + u.Phone)
	m.say("Gender: " + u.Gender)
	m.say("Date of Birth: " + u.DOB.Format(model.DateLayout))
	m.say("Age: " + strconv.Itoa(u.Age))
}

func (m *Menu) credentials() (user, pass string, err error) {
	if user, err = m.In.Ask("USER NAME: "); err != nil {
		return "", "", err
	}
	if pass, err = m.In.Secret("PASSWORD: "); err != nil {
		return "", "", err
	}
	return user, pass, nil
}

func (m *Menu) say(s string) { fmt.Fprintln(m.Out, s) }

// fail reports an error that ends the current operation.  Database errors
// are logged in full and shown briefly.
func (m *Menu) fail(err error) {
	if errors.Is(err, service.ErrDatabase) {
		if m.Log != nil {
			m.Log.Error("menu operation failed", "err", err)
		}
		m.say("AN ERROR OCCURRED, PLEASE TRY AGAIN LATER")
		return
	}
	m.say(capitalise(strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")))
}

func capitalise(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
