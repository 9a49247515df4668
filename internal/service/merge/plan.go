package merge

import (
	"sort"
	"time"

	"github.com/ignite/contact-manager/internal/domain"
)

// Group is a set of two or more contacts sharing a normalized email.
type Group struct {
	Email    string
	Survivor domain.Contact
	Losers   []domain.Contact
}

// Size is the number of contacts in the group, survivor included.
func (g *Group) Size() int { return len(g.Losers) + 1 }

// GroupByEmail partitions contacts by normalized email and returns only the
// groups with at least two members, in the order each email first appears.
// Within a group members are ordered by creation time; ties keep input order.
func GroupByEmail(contacts []domain.Contact) []Group {
	var order []string
	members := make(map[string][]domain.Contact)
	for _, c := range contacts {
		key := domain.NormalizeEmail(c.Email)
		if _, ok := members[key]; !ok {
			order = append(order, key)
		}
		members[key] = append(members[key], c)
	}

	var groups []Group
	for _, key := range order {
		list := members[key]
		if len(list) < 2 {
			continue
		}
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		})
		groups = append(groups, Group{Email: key, Survivor: list[0], Losers: list[1:]})
	}
	return groups
}

// Reconcile folds every loser into the survivor, in order, and returns the
// survivor's new scalar columns plus the values to copy onto it. g.Survivor
// is updated in place.
func Reconcile(g *Group, now time.Time) (SurvivorUpdate, []ValueInsert) {
	s := &g.Survivor
	s.CustomFieldValues = append([]domain.CustomFieldValue(nil), s.CustomFieldValues...)
	present := make(map[string]bool, len(s.CustomFieldValues))
	for _, v := range s.CustomFieldValues {
		present[v.CustomFieldID] = true
	}

	var inserts []ValueInsert
	for _, l := range g.Losers {
		if !domain.IsBlank(l.FirstName) {
			s.FirstName = l.FirstName
		}
		if !domain.IsBlank(l.LastName) {
			s.LastName = l.LastName
		}
		if l.Phone != nil && !domain.IsBlank(*l.Phone) {
			p := *l.Phone
			s.Phone = &p
		}
		s.UpdatedAt = now

		for _, v := range l.CustomFieldValues {
			if present[v.CustomFieldID] {
				continue
			}
			present[v.CustomFieldID] = true
			s.CustomFieldValues = append(s.CustomFieldValues, v)
			inserts = append(inserts, ValueInsert{
				ContactID:     s.ID,
				CustomFieldID: v.CustomFieldID,
				Value:         v.Value,
			})
		}
	}

	return SurvivorUpdate{
		ContactID: s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Phone:     s.Phone,
		UpdatedAt: s.UpdatedAt,
	}, inserts
}

// BuildPlan reconciles every group and collects the writes into one plan.
func BuildPlan(groups []Group, now time.Time) *Plan {
	plan := &Plan{}
	for i := range groups {
		g := &groups[i]
		upd, inserts := Reconcile(g, now)
		plan.Updates = append(plan.Updates, upd)
		plan.Inserts = append(plan.Inserts, inserts...)
		for _, l := range g.Losers {
			plan.Deletes = append(plan.Deletes, l.ID)
		}
	}
	return plan
}
