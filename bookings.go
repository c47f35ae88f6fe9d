package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// booking is the canonical booking record. Monetary fields are whole pesos.
// origin is only meaningful while reconciliation runs; it is never written
// out.
type booking struct {
	ID      int64
	Trip    time.Time
	Created time.Time
	Email   string
	Service string
	Payment int64 // the abono that created this record; cleaned, not exported
	Paid    int64
	Total   int64
	Due     int64
	Phone   string
	Name    string

	origin bookingOrigin
}

type bookingOrigin int

const (
	originOriginal bookingOrigin = iota
	originNew
)

type joinKeyMismatchError struct {
	payments     string
	appointments string
}

func (e joinKeyMismatchError) Error() string {
	return fmt.Sprintf("no shared join key between %s and %s: "+
		"need \"id reserva\" in both (new exports) or \"email\" in both (old exports)",
		e.payments, e.appointments)
}

// rawTable is a booking-system export: a header row followed by data rows,
// addressed by header name. Unlike bank statements these exports put the
// header in the first row, so no scanning is needed.
type rawTable struct {
	path string
	cols map[string]int
	rows [][]string
}

func readTable(path string) (*rawTable, error) {
	grid, err := readGrid(path)
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return &rawTable{path: path, cols: map[string]int{}}, nil
	}
	return &rawTable{path: path, cols: columnMap(grid[0]), rows: grid[1:]}, nil
}

func (t *rawTable) has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

func (t *rawTable) cell(row []string, name string) string {
	idx, ok := t.cols[name]
	if !ok {
		return ""
	}
	return cellAt(row, idx)
}

// mergeBookings joins the payments and appointments exports into fresh
// canonical bookings. Two incompatible export schemas exist in the wild: the
// newer one keys both files by the numeric booking id, the older one only
// shares the customer email. The join is strictly inner: a payment without
// an appointment, or vice versa, is not a usable booking and is dropped. The
// returned count covers the dropped rows of both sides. Where both sides
// carry the same column, the payment side wins.
func mergeBookings(payments, appointments *rawTable, cfg *config) ([]booking, int, error) {
	var byID bool
	switch {
	case payments.has("id reserva") && appointments.has("id reserva"):
		byID = true
	case payments.has("email") && appointments.has("email"):
		byID = false
	default:
		return nil, 0, joinKeyMismatchError{payments: payments.path, appointments: appointments.path}
	}

	joinKey := func(t *rawTable, row []string) string {
		if byID {
			return t.cell(row, "id reserva")
		}
		return strings.ToLower(t.cell(row, "email"))
	}

	// Index appointments by join key; first occurrence wins.
	appts := make(map[string][]string)
	for _, row := range appointments.rows {
		key := joinKey(appointments, row)
		if key == "" {
			continue
		}
		if _, ok := appts[key]; !ok {
			appts[key] = row
		}
	}

	var out []booking
	seen := make(map[int64]bool)
	consumed := make(map[string]bool)
	var unmatched, joined int
	for _, prow := range payments.rows {
		key := joinKey(payments, prow)
		if key == "" {
			unmatched++
			continue
		}
		arow, ok := appts[key]
		if !ok {
			unmatched++
			continue
		}
		consumed[key] = true
		joined++

		// Old email-keyed payment exports have no id column; the id then
		// comes from the appointment side.
		rawID := firstOf(payments.cell(prow, "id reserva"), appointments.cell(arow, "id reserva"))
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			unmatched++
			continue
		}
		if seen[id] {
			// The join can fan out when a reservation was paid twice;
			// keep the first row per id.
			continue
		}
		seen[id] = true

		b := booking{
			ID:      id,
			Email:   strings.ToLower(firstOf(payments.cell(prow, "email"), appointments.cell(arow, "email"))),
			Service: firstOf(payments.cell(prow, "servicio"), appointments.cell(arow, "servicio")),
			Name:    firstOf(payments.cell(prow, "cliente"), appointments.cell(arow, "cliente")),
			Payment: parseAmount(payments.cell(prow, "abono")),
			Paid:    parseAmount(payments.cell(prow, "pagado")),
			Total:   parseAmount(payments.cell(prow, "total")),
			Due:     parseAmount(payments.cell(prow, "por pagar")),
			Phone: normalizePhone(
				firstOf(payments.cell(prow, "teléfono"), appointments.cell(arow, "teléfono")), cfg),
			Trip:    parseBookingDateTime(appointments.cell(arow, "fecha viaje")),
			Created: parseBookingDateTime(payments.cell(prow, "fecha creación")),
			origin:  originNew,
		}
		out = append(out, b)
	}
	for key := range appts {
		if !consumed[key] {
			unmatched++
		}
	}
	if joined > 0 && len(out) == 0 {
		// Rows joined but not one yielded an id: writing an empty table now
		// would look like a clean run with no bookings.
		return nil, 0, errors.Errorf("%s: %d joined rows but none carries a usable reservation id", payments.path, joined)
	}
	return out, unmatched, nil
}

// firstOf implements the payment-side-wins collision rule: the left value is
// used unless it is empty.
func firstOf(left, right string) string {
	if left != "" {
		return left
	}
	return right
}

// parseBookingDateTime accepts the two combined date-time shapes the booking
// system produces: ISO "2006-01-02 15:04" and local "02/01/2006 15:04", with
// or without the time component. The zero time is returned when nothing
// parses; the reconciler sorts those first rather than failing the pipeline.
func parseBookingDateTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	datePart, timePart := splitDateTime(raw)
	for _, layout := range []string{"2006-01-02", "02/01/2006"} {
		d, err := time.Parse(layout, datePart)
		if err != nil {
			continue
		}
		if timePart != "" {
			if hm, err := time.Parse("15:04", timePart); err == nil {
				return d.Add(time.Duration(hm.Hour())*time.Hour + time.Duration(hm.Minute())*time.Minute)
			}
		}
		return d
	}
	return time.Time{}
}

// splitDateTime splits a combined date-time string into its date and time
// components on the first space. Seconds, when present, are dropped.
func splitDateTime(raw string) (string, string) {
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	timePart := strings.TrimSpace(parts[1])
	if len(timePart) > 5 {
		timePart = timePart[:5]
	}
	return parts[0], timePart
}

// normalizePhone brings customer phone numbers to the canonical 56 9 XXXX
// form. An 8-digit number gets the country and mobile codes, a 9-digit number
// only the country code, and an 11-digit number that already starts with the
// full prefix is left alone. Every other length or prefix passes through
// unchanged: there are 11-digit shapes in the data whose intended handling
// was never decided, and guessing a rule here would corrupt them silently.
func normalizePhone(raw string, cfg *config) string {
	digits := strings.TrimPrefix(strings.TrimSpace(raw), "+")
	digits = strings.NewReplacer(" ", "", "-", "", ".", "").Replace(digits)
	if digits == "" || !allDigits(digits) {
		return raw
	}
	full := cfg.CountryCode + cfg.MobilePrefix // "569"
	switch len(digits) {
	case 8:
		return full + digits
	case 9:
		return cfg.CountryCode + digits
	case 11:
		if strings.HasPrefix(digits, full) {
			return digits
		}
	}
	return raw
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
