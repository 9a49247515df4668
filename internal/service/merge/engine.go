package merge

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ignite/contact-manager/internal/domain"
	"github.com/ignite/contact-manager/internal/pkg/logger"
)

// Engine merges duplicate contacts. It holds no per-request state and is
// safe for concurrent use; overlapping concurrent merges are not
// coordinated.
type Engine struct {
	store Store
	now   func() time.Time
}

// NewEngine creates a merge engine backed by the given store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// Merge groups the resolvable contacts among ids by normalized email and
// folds each group of two or more into its earliest-created member. Unknown
// ids and singleton groups are ignored. Empty or unmergeable input yields an
// empty result, never an error; only store failures are returned.
func (e *Engine) Merge(ctx context.Context, ids []string) (*domain.MergeResult, error) {
	ids = distinct(ids)
	if len(ids) < 2 {
		return domain.NewMergeResult(), nil
	}

	contacts, err := e.store.LoadContacts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load merge candidates: %w", err)
	}
	if len(contacts) < 2 {
		return domain.NewMergeResult(), nil
	}
	sortByRequest(contacts, ids)

	groups := GroupByEmail(contacts)
	if len(groups) == 0 {
		return domain.NewMergeResult(), nil
	}

	plan := BuildPlan(groups, e.now().UTC())
	if err := e.store.Apply(ctx, plan); err != nil {
		return nil, fmt.Errorf("apply merge plan: %w", err)
	}

	survivorIDs := make([]string, len(groups))
	for i, g := range groups {
		survivorIDs[i] = g.Survivor.ID
	}
	merged, err := e.store.LoadContacts(ctx, survivorIDs)
	if err != nil {
		return nil, fmt.Errorf("reload survivors: %w", err)
	}
	byID := make(map[string]domain.Contact, len(merged))
	for _, c := range merged {
		byID[c.ID] = c
	}

	result := domain.NewMergeResult()
	for _, g := range groups {
		result.MergedCountByEmail[g.Email] = g.Size()
		c, ok := byID[g.Survivor.ID]
		if !ok {
			logger.Warn("merge survivor missing after commit", "contact_id", g.Survivor.ID)
			continue
		}
		result.MergedContacts = append(result.MergedContacts, c)
	}

	logger.Info("contacts merged",
		"candidates", len(ids),
		"groups", len(groups),
		"deleted", len(plan.Deletes),
		"values_copied", len(plan.Inserts),
	)
	return result, nil
}

// distinct drops blank and repeated ids, keeping first occurrences.
func distinct(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// sortByRequest orders contacts by the position of their id in ids, which
// makes group discovery order follow the caller's list.
func sortByRequest(contacts []domain.Contact, ids []string) {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[strings.ToLower(id)] = i
	}
	sort.SliceStable(contacts, func(i, j int) bool {
		return pos[strings.ToLower(contacts[i].ID)] < pos[strings.ToLower(contacts[j].ID)]
	})
}
