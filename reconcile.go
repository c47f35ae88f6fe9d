package main

import (
	"sort"
	"strconv"
)

// reconcile merges the previously accepted booking table with the freshly
// computed one. Ids colliding across the two resolve by a fixed precedence
// rule: the previously accepted row always wins, however incomplete it looks
// next to the recomputed one. This is policy, not correctness: accepted
// history may carry manual fixes the exports will never reproduce, so an id
// collision is never surfaced as an error. Ids without a collision survive
// from either side.
func reconcile(prior, fresh []booking) []booking {
	for i := range prior {
		prior[i].origin = originOriginal
	}
	for i := range fresh {
		fresh[i].origin = originNew
	}

	all := make([]booking, 0, len(prior)+len(fresh))
	all = append(all, prior...)
	all = append(all, fresh...)

	hasOriginal := make(map[int64]bool, len(prior))
	for _, b := range prior {
		hasOriginal[b.ID] = true
	}

	out := make([]booking, 0, len(all))
	for _, b := range all {
		if b.origin == originNew && hasOriginal[b.ID] {
			continue
		}
		b.origin = 0 // the tag is transient; strip it before output
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Trip.Equal(b.Trip) {
			return a.Trip.Before(b.Trip)
		}
		return a.ID < b.ID
	})
	return out
}

const bookingStamp = "2006-01-02 15:04"

// bookingHeader is the fixed canonical column order of the booking table.
var bookingHeader = []string{
	"ID reserva", "Fecha viaje", "Fecha creación", "Email", "Servicio",
	"Pagado", "Total", "Por pagar", "Teléfono", "Cliente",
}

func bookingRows(bookings []booking) [][]interface{} {
	rows := make([][]interface{}, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, []interface{}{
			b.ID, b.Trip.Format(bookingStamp), b.Created.Format(bookingStamp),
			b.Email, b.Service, b.Paid, b.Total, b.Due, b.Phone, b.Name,
		})
	}
	return rows
}

// readBookingTable loads a previously written canonical booking table. Older
// tables exposed the trip date and time as two separate columns; those are
// combined back into the single date-time representation here.
func readBookingTable(path string) ([]booking, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	var out []booking
	for _, row := range t.rows {
		id, err := strconv.ParseInt(t.cell(row, "id reserva"), 10, 64)
		if err != nil {
			continue
		}
		trip := t.cell(row, "fecha viaje")
		if hora := t.cell(row, "hora viaje"); hora != "" {
			trip = trip + " " + hora
		}
		out = append(out, booking{
			ID:      id,
			Trip:    parseBookingDateTime(trip),
			Created: parseBookingDateTime(t.cell(row, "fecha creación")),
			Email:   t.cell(row, "email"),
			Service: t.cell(row, "servicio"),
			Paid:    parseAmount(t.cell(row, "pagado")),
			Total:   parseAmount(t.cell(row, "total")),
			Due:     parseAmount(t.cell(row, "por pagar")),
			Phone:   t.cell(row, "teléfono"),
			Name:    t.cell(row, "cliente"),
		})
	}
	return out, nil
}
