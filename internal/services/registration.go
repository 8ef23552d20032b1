package services

import (
	"context"
	"sort"
	"time"

	"github.com/vyaparsetu/portal/internal/models"
	"github.com/vyaparsetu/portal/internal/store"
)

// DateTimeLayout is the registration form's date-time format.
const DateTimeLayout = "2006-01-02T15:04"

var dateTimeLayouts = []string{
	DateTimeLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseRegistrationTime reads registrationDateTime in loc. ok is false for
// missing or unparseable values.
func ParseRegistrationTime(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CountStats computes {total, paid, pending} over regs.
func CountStats(regs []models.Registration) models.Stats {
	st := models.Stats{Total: len(regs)}
	for _, r := range regs {
		if r.IsPaid() {
			st.Paid++
		}
	}
	st.Pending = st.Total - st.Paid
	return st
}

// InStoreOrder returns the registrations of m in ascending id order.
func InStoreOrder(m map[string]models.Registration) []models.Registration {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]models.Registration, 0, len(ids))
	for _, id := range ids {
		r := m[id]
		r.ID = id
		out = append(out, r)
	}
	return out
}

// SortNewestFirst orders regs by registrationDateTime descending. Missing or
// invalid date-times count as the earliest possible instant; ties fall back
// to id descending so newer appends come first.
func SortNewestFirst(regs []models.Registration, loc *time.Location) {
	type keyed struct {
		reg models.Registration
		at  time.Time
	}
	ks := make([]keyed, len(regs))
	for i, r := range regs {
		t, _ := ParseRegistrationTime(r.RegistrationDateTime, loc)
		ks[i] = keyed{reg: r, at: t}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if !ks[i].at.Equal(ks[j].at) {
			return ks[i].at.After(ks[j].at)
		}
		return ks[i].reg.ID > ks[j].reg.ID
	})
	for i := range ks {
		regs[i] = ks[i].reg
	}
}

func findRegistration(ctx context.Context, st store.Store, agentID, regID string) (*models.Registration, error) {
	a, err := st.FetchAgent(ctx, agentID)
	if err != nil || a == nil {
		return nil, err
	}
	r, ok := a.Registrations[regID]
	if !ok {
		return nil, nil
	}
	r.ID = regID
	return &r, nil
}
