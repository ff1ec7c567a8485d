package db

import (
	"sort"
	"strings"
	"time"

	"github.com/LightsoftTeam/baldoria-backend/internal/models"
)

// Result shaping shared by the Firestore and in-memory repositories. Firestore
// cannot filter inside embedded arrays beyond array-contains, so the final
// projection always happens here.

// ReservationsForDay flattens the reservations of users matching the enterprise and
// day, each annotated with its owner. The second return value lists the IDs of users
// holding more than one matching reservation, which should never happen.
func ReservationsForDay(users []*models.User, enterprise models.Enterprise, day time.Time) ([]models.ReservationWithUser, []string) {
	key := models.ReservationKey(enterprise, day)
	rows := make([]models.ReservationWithUser, 0, len(users))
	var duplicated []string
	for _, u := range users {
		profile := u.Profile()
		matches := 0
		for _, r := range u.Reservations {
			if r.Key() != key {
				continue
			}
			matches++
			rows = append(rows, models.ReservationWithUser{Reservation: r, User: profile})
		}
		if matches > 1 {
			duplicated = append(duplicated, u.ID)
		}
	}
	return rows, duplicated
}

// AggregateVisits counts, per client, the reservations whose day falls inside the
// inclusive [from, to] range, and how many of them were used. Clients without
// reservations in range are left out.
func AggregateVisits(users []*models.User, from, to time.Time) []models.UserVisits {
	from, to = models.Day(from), models.Day(to)
	rows := make([]models.UserVisits, 0)
	for _, u := range users {
		if u.Role != models.RoleClient {
			continue
		}
		row := models.UserVisits{User: u.Profile()}
		inRange := 0
		for _, r := range u.Reservations {
			d := models.Day(r.Date)
			if d.Before(from) || d.After(to) {
				continue
			}
			inRange++
			switch r.Enterprise {
			case models.EnterpriseBaldoria:
				row.BaldoriaReservations++
				if r.IsUsed() {
					row.UsedBaldoriaReservations++
				}
			case models.EnterpriseLov:
				row.LovReservations++
				if r.IsUsed() {
					row.UsedLovReservations++
				}
			}
		}
		if inRange > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

// MatchesSearch reports whether the case-insensitive search term is a substring of
// the user's first name, last name or email. An empty term matches everything.
func MatchesSearch(u *models.User, search string) bool {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return true
	}
	for _, field := range []string{u.FirstName, u.LastName, u.Email} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// FilterUsers keeps the users matching the search term, preserving order.
func FilterUsers(users []*models.User, search string) []*models.User {
	out := make([]*models.User, 0, len(users))
	for _, u := range users {
		if MatchesSearch(u, search) {
			out = append(out, u)
		}
	}
	return out
}

// SortUsers orders users in place by the whitelisted field. Ties are broken by ID
// so that pages are stable across requests.
func SortUsers(users []*models.User, field models.SortField, dir models.SortDirection) {
	less := func(a, b *models.User) int {
		switch field {
		case models.SortByFirstName:
			return strings.Compare(a.FirstName, b.FirstName)
		case models.SortByEmail:
			return strings.Compare(a.Email, b.Email)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	sort.SliceStable(users, func(i, j int) bool {
		c := less(users[i], users[j])
		if c == 0 {
			return users[i].ID < users[j].ID
		}
		if dir == models.SortAsc {
			return c < 0
		}
		return c > 0
	})
}

// Paginate returns the slice of users for the requested page.
func Paginate(users []*models.User, params models.ListUsersParams) []*models.User {
	start := params.Offset()
	if start < 0 || start >= len(users) || params.Limit <= 0 {
		return []*models.User{}
	}
	end := start + params.Limit
	if end > len(users) || end < start {
		end = len(users)
	}
	return users[start:end]
}
