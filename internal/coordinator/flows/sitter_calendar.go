package flows

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"petsitter/internal/coordinator/core"
	"petsitter/pkg/client"
	"petsitter/pkg/model"
)

const (
	SitterID  = "sitter_id"
	StartDate = "start"
	EndDate   = "end"

	calendarWindow  = "calendar_window"
	bookingCounts   = "booking_counts"
	availableDates  = "available_dates"
	calendarEntries = "calendar"

	maxCalendarBookings = 200
)

// CalendarDay is one assembled day of a sitter's calendar.
type CalendarDay struct {
	Date         string           `json:"date"`
	BookingCount int              `json:"booking_count"`
	Available    bool             `json:"available"`
	Bookings     []*model.Booking `json:"bookings,omitempty"`
}

type window struct {
	start time.Time
	end   time.Time
}

// SitterCalendar assembles a per-day view of a sitter's schedule from
// the booking service's availability and search endpoints.
type SitterCalendar struct{}

func (SitterCalendar) Name() string { return "sitter_calendar" }

func (SitterCalendar) Steps() []*core.Step {
	return []*core.Step{
		core.NewStep("validate_input", validateCalendarInput),
		core.NewStep("fetch_booking_counts", fetchBookingCounts),
		core.NewStep("fetch_available_dates", fetchAvailableDates),
		core.NewStep("fetch_bookings", fetchSitterBookings),
		core.NewStep("assemble_calendar", assembleCalendar),
	}
}

func validateCalendarInput(ctx *core.FlowContext) error {
	if core.IsMissing(ctx.ExtractString(SitterID)) {
		return core.MissingParamErr(SitterID)
	}

	start, err := ctx.ExtractTime(StartDate)
	if err != nil {
		return err
	}
	end, err := ctx.ExtractTime(EndDate)
	if err != nil {
		return err
	}
	if !end.After(start) {
		return fmt.Errorf("param [%v] must be after [%v]", EndDate, StartDate)
	}

	ctx.Process[calendarWindow] = window{start: start, end: end}
	return nil
}

func fetchBookingCounts(ctx *core.FlowContext) error {
	w := ctx.Process[calendarWindow].(window)

	resp, err := ctx.Client.Bookings.SitterBookingCounts(
		ctx.ExtractString(SitterID),
		w.start.Format(time.RFC3339),
		w.end.Format(time.RFC3339),
	)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("booking count fetch failed: %s", client.GetErrorMessage(resp))
	}

	var payload struct {
		Data map[string]int `json:"data"`
	}
	if err := resp.DecodeJSON(&payload); err != nil {
		return err
	}

	ctx.Process[bookingCounts] = payload.Data
	return nil
}

func fetchAvailableDates(ctx *core.FlowContext) error {
	w := ctx.Process[calendarWindow].(window)

	resp, err := ctx.Client.Bookings.SitterAvailableDates(
		ctx.ExtractString(SitterID),
		w.start.Format(time.RFC3339),
		w.end.Format(time.RFC3339),
	)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("available date fetch failed: %s", client.GetErrorMessage(resp))
	}

	var payload struct {
		Data []string `json:"data"`
	}
	if err := resp.DecodeJSON(&payload); err != nil {
		return err
	}

	available := make(map[string]bool, len(payload.Data))
	for _, date := range payload.Data {
		available[date] = true
	}

	ctx.Process[availableDates] = available
	return nil
}

func fetchSitterBookings(ctx *core.FlowContext) error {
	sitterID := ctx.ExtractString(SitterID)
	active := []*model.Booking{}

	for _, status := range []model.BookingStatus{model.BookingConfirmed, model.BookingInProgress} {
		resp, err := ctx.Client.Bookings.Search("", sitterID, "", string(status), maxCalendarBookings, 0)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("booking search failed: %s", client.GetErrorMessage(resp))
		}

		bookings, _, err := ctx.Client.Bookings.DecodeBookings(resp)
		if err != nil {
			return err
		}
		active = append(active, bookings...)
	}

	ctx.Process["active_bookings"] = active
	return nil
}

func assembleCalendar(ctx *core.FlowContext) error {
	w := ctx.Process[calendarWindow].(window)
	counts := ctx.Process[bookingCounts].(map[string]int)
	available := ctx.Process[availableDates].(map[string]bool)
	active := ctx.Process["active_bookings"].([]*model.Booking)

	firstDay := truncateToDay(w.start)
	lastDay := truncateToDay(w.end)

	days := []CalendarDay{}
	for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		entry := CalendarDay{
			Date:         key,
			BookingCount: counts[key],
			Available:    available[key],
		}
		for _, b := range active {
			if !truncateToDay(b.StartDate).After(day) && !truncateToDay(b.EndDate).Before(day) {
				entry.Bookings = append(entry.Bookings, b)
			}
		}
		days = append(days, entry)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	ctx.Output[calendarEntries] = days
	ctx.Output[SitterID] = ctx.ExtractString(SitterID)
	return nil
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
