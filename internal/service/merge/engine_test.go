package merge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ignite/contact-manager/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store. Apply validates the whole plan before
// touching state so a failure leaves nothing half-written.
type fakeStore struct {
	mu         sync.Mutex
	contacts   map[string]domain.Contact
	fieldNames map[string]string
	applyErr   error
	applied    int
	loads      int
}

func newFakeStore(contacts ...domain.Contact) *fakeStore {
	fs := &fakeStore{contacts: map[string]domain.Contact{}, fieldNames: map[string]string{}}
	for _, c := range contacts {
		fs.contacts[c.ID] = c
	}
	return fs
}

func (f *fakeStore) LoadContacts(_ context.Context, ids []string) ([]domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	var out []domain.Contact
	for _, id := range ids {
		c, ok := f.contacts[id]
		if !ok {
			continue
		}
		c.CustomFieldValues = append([]domain.CustomFieldValue(nil), c.CustomFieldValues...)
		for i := range c.CustomFieldValues {
			c.CustomFieldValues[i].CustomFieldName = f.fieldNames[c.CustomFieldValues[i].CustomFieldID]
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) Apply(_ context.Context, p *Plan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied++
	for _, u := range p.Updates {
		c := f.contacts[u.ContactID]
		c.FirstName, c.LastName, c.Phone, c.UpdatedAt = u.FirstName, u.LastName, u.Phone, u.UpdatedAt
		f.contacts[u.ContactID] = c
	}
	for _, ins := range p.Inserts {
		c := f.contacts[ins.ContactID]
		c.CustomFieldValues = append(c.CustomFieldValues, domain.CustomFieldValue{
			CustomFieldID: ins.CustomFieldID,
			Value:         ins.Value,
		})
		f.contacts[ins.ContactID] = c
	}
	for _, id := range p.Deletes {
		delete(f.contacts, id)
	}
	return nil
}

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func contactAt(id, email, first, last string, offset time.Duration, values ...domain.CustomFieldValue) domain.Contact {
	return domain.Contact{
		ID:                id,
		FirstName:         first,
		LastName:          last,
		Email:             email,
		CreatedAt:         t0.Add(offset),
		UpdatedAt:         t0.Add(offset),
		CustomFieldValues: values,
	}
}

func strVal(field, s string) domain.CustomFieldValue {
	return domain.CustomFieldValue{CustomFieldID: field, Value: domain.StringValue(s)}
}

func ptr(s string) *string { return &s }

func newTestEngine(store Store) *Engine {
	e := NewEngine(store)
	e.now = func() time.Time { return t0.Add(24 * time.Hour) }
	return e
}

func TestMerge_EmptyInput(t *testing.T) {
	store := newFakeStore()
	res, err := newTestEngine(store).Merge(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.MergedContacts)
	assert.NotNil(t, res.MergedContacts)
	assert.NotNil(t, res.MergedCountByEmail)
	assert.Zero(t, store.loads)
}

func TestMerge_SingleContact_NoMutation(t *testing.T) {
	a := contactAt("a", "solo@example.com", "Solo", "Contact", 0)
	store := newFakeStore(a)

	res, err := newTestEngine(store).Merge(context.Background(), []string{"a", "a"})
	require.NoError(t, err)
	assert.Empty(t, res.MergedContacts)
	assert.Empty(t, res.MergedCountByEmail)
	assert.Zero(t, store.applied)
	assert.Equal(t, a, store.contacts["a"])
}

func TestMerge_UnknownIDsIgnored(t *testing.T) {
	a := contactAt("a", "x@y.com", "First", "Contact", 0)
	b := contactAt("b", "x@y.com", "Second", "Merged", time.Minute)
	store := newFakeStore(a, b)

	res, err := newTestEngine(store).Merge(context.Background(), []string{"ghost", "a", "b", "nobody"})
	require.NoError(t, err)
	require.Len(t, res.MergedContacts, 1)
	assert.Equal(t, 2, res.MergedCountByEmail["x@y.com"])
}

func TestMerge_OnlyUnknownIDs(t *testing.T) {
	store := newFakeStore()
	res, err := newTestEngine(store).Merge(context.Background(), []string{"ghost", "nobody"})
	require.NoError(t, err)
	assert.Empty(t, res.MergedContacts)
	assert.Zero(t, store.applied)
}

// Two contacts whose emails differ only by case and whitespace merge into
// the earlier one, taking the later one's names.
func TestMerge_TwoContactScenario(t *testing.T) {
	a := contactAt("a", "x@y.com", "First", "Contact", 0)
	b := contactAt("b", "X@Y.COM ", "Second", "Merged", time.Minute)
	store := newFakeStore(a, b)

	res, err := newTestEngine(store).Merge(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, res.MergedContacts, 1)

	got := res.MergedContacts[0]
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, "Second", got.FirstName)
	assert.Equal(t, "Merged", got.LastName)
	assert.Equal(t, "x@y.com", got.Email)
	assert.Equal(t, t0.Add(24*time.Hour), got.UpdatedAt)
	assert.Equal(t, 2, res.MergedCountByEmail["x@y.com"])

	_, stillThere := store.contacts["b"]
	assert.False(t, stillThere, "loser must be deleted")
	_, survivorThere := store.contacts["a"]
	assert.True(t, survivorThere)
}

func TestMerge_SurvivorIsEarliestRegardlessOfRequestOrder(t *testing.T) {
	late := contactAt("late", "dup@example.com", "Late", "", 2*time.Hour)
	early := contactAt("early", "dup@example.com", "Early", "", 0)
	mid := contactAt("mid", "dup@example.com", "Mid", "", time.Hour)
	store := newFakeStore(late, early, mid)

	res, err := newTestEngine(store).Merge(context.Background(), []string{"late", "mid", "early"})
	require.NoError(t, err)
	require.Len(t, res.MergedContacts, 1)
	assert.Equal(t, "early", res.MergedContacts[0].ID)
	assert.Equal(t, "Late", res.MergedContacts[0].FirstName)
	assert.Equal(t, 3, res.MergedCountByEmail["dup@example.com"])
	assert.Len(t, store.contacts, 1)
}

func TestMerge_BlankLoserFieldsNeverOverwrite(t *testing.T) {
	a := contactAt("a", "p@example.com", "Alice", "Smith", 0)
	a.Phone = ptr("555-0100")
	b := contactAt("b", "p@example.com", "   ", "", time.Minute)
	b.Phone = ptr(" ")
	c := contactAt("c", "p@example.com", "", "Jones", 2*time.Minute)
	store := newFakeStore(a, b, c)

	res, err := newTestEngine(store).Merge(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	got := res.MergedContacts[0]
	assert.Equal(t, "Alice", got.FirstName)
	assert.Equal(t, "Jones", got.LastName)
	require.NotNil(t, got.Phone)
	assert.Equal(t, "555-0100", *got.Phone)
}

// Scalars: the LAST non-blank loser wins. Custom fields: the FIRST loser to
// introduce a field wins. Easy to invert by accident.
func TestMerge_ReconciliationAsymmetry(t *testing.T) {
	a := contactAt("a", "m@example.com", "A", "A", 0, strVal("own", "survivor"))
	b := contactAt("b", "m@example.com", "B", "", time.Minute,
		strVal("own", "from-b"), strVal("new", "from-b"))
	c := contactAt("c", "m@example.com", "C", "", 2*time.Minute,
		strVal("new", "from-c"), strVal("other", "from-c"))
	store := newFakeStore(a, b, c)
	store.fieldNames = map[string]string{"own": "Own", "new": "New", "other": "Other"}

	res, err := newTestEngine(store).Merge(context.Background(), []string{"c", "b", "a"})
	require.NoError(t, err)
	got := res.MergedContacts[0]

	assert.Equal(t, "C", got.FirstName, "last non-blank loser wins for scalars")
	assert.Equal(t, "A", got.LastName)

	values := map[string]string{}
	for _, v := range got.CustomFieldValues {
		s, ok := v.Value.String()
		require.True(t, ok)
		values[v.CustomFieldID] = s
	}
	assert.Equal(t, map[string]string{
		"own":   "survivor",
		"new":   "from-b",
		"other": "from-c",
	}, values)

	for _, v := range got.CustomFieldValues {
		assert.NotEmpty(t, v.CustomFieldName, "names resolved on reload")
	}
}

func TestMerge_MultipleGroupsInDiscoveryOrder(t *testing.T) {
	store := newFakeStore(
		contactAt("g1", "one@example.com", "One", "", 0),
		contactAt("g2", "two@example.com", "Two", "", 0),
		contactAt("g1b", "ONE@example.com", "Uno", "", time.Minute),
		contactAt("g2b", "two@example.com", "Dos", "", time.Minute),
		contactAt("solo", "solo@example.com", "Solo", "", 0),
	)

	res, err := newTestEngine(store).Merge(context.Background(), []string{"g2", "g1", "g1b", "solo", "g2b"})
	require.NoError(t, err)
	require.Len(t, res.MergedContacts, 2)
	assert.Equal(t, "g2", res.MergedContacts[0].ID)
	assert.Equal(t, "g1", res.MergedContacts[1].ID)
	assert.Equal(t, map[string]int{"one@example.com": 2, "two@example.com": 2}, res.MergedCountByEmail)
	_, soloThere := store.contacts["solo"]
	assert.True(t, soloThere)
}

func TestMerge_ApplyFailureLeavesStoreUntouched(t *testing.T) {
	a := contactAt("a", "x@y.com", "First", "Contact", 0)
	b := contactAt("b", "x@y.com", "Second", "Merged", time.Minute)
	store := newFakeStore(a, b)
	store.applyErr = errors.New("connection reset")

	res, err := newTestEngine(store).Merge(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, store.applyErr)
	assert.Equal(t, a, store.contacts["a"])
	assert.Equal(t, b, store.contacts["b"])
}

func TestDistinct(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, distinct([]string{"a", " ", "b", "a", ""}))
}
