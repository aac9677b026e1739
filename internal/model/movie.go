package model

// Movie is an entry of the daily programme.
type Movie struct {
	Title   string
	Timings string
}

// Name is the value stored as bookings.mname.
func (m Movie) Name() string { return m.Title + " Timings:" + m.Timings }

// DailyMovies is the fixed programme shown for every bookable date.
var DailyMovies = []Movie{
	{Title: "VENOM ZEHER KA KAEHER (Hindi dub)", Timings: "10am to 1pm"},
	{Title: "JEENE NHI DUNGA (Hindi dub)", Timings: "2pm to 4pm"},
	{Title: "PUSHPA 2 (Hindi dub)", Timings: "7pm to 9pm"},
	{Title: "RED NOTICE 2 (English)", Timings: "10am to 12pm"},
	{Title: "KANCHNA 2 (Horror)", Timings: "1pm to 3pm"},
}

// FindMovie resolves s against the programme, accepting either the stored
// name or the bare title.
func FindMovie(s string) (Movie, bool) {
	for _, m := range DailyMovies {
		if s == m.Name() || s == m.Title {
			return m, true
		}
	}
	return Movie{}, false
}
