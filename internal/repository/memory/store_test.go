package memory

import (
	"context"
	"testing"
	"time"

	"github.com/ignite/contact-manager/internal/domain"
	"github.com/ignite/contact-manager/internal/service/contact"
	"github.com/ignite/contact-manager/internal/service/customfield"
	"github.com/ignite/contact-manager/internal/service/merge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func seed(t *testing.T) *Store {
	t.Helper()
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CustomFields().Create(ctx, &domain.CustomField{ID: "f1", Name: "Tier", FieldType: domain.FieldTypeString}))
	for i, name := range []string{"Carol", "alice", "Bob"} {
		c := &domain.Contact{
			ID:        name,
			FirstName: name,
			LastName:  "Test",
			Email:     name + "@example.com",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			UpdatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if name == "Bob" {
			c.CustomFieldValues = []domain.CustomFieldValue{{CustomFieldID: "f1", Value: domain.StringValue("gold")}}
		}
		require.NoError(t, s.Contacts().Create(ctx, c))
	}
	return s
}

func ids(cs []domain.Contact) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestContactRepo_ListSortsAndPages(t *testing.T) {
	s := seed(t)
	repo := s.Contacts()
	ctx := context.Background()

	got, total, err := repo.List(ctx, contact.ListFilter{SortBy: contact.SortByCreatedAt, Desc: true, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"Bob", "alice"}, ids(got))

	got, _, err = repo.List(ctx, contact.ListFilter{SortBy: contact.SortByFirstName, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "Carol", "alice"}, ids(got), "byte order, no case folding")

	got, total, err = repo.List(ctx, contact.ListFilter{SortBy: contact.SortByCreatedAt, Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, got)
}

func TestContactRepo_ListOutOfRangeOffset(t *testing.T) {
	repo := seed(t).Contacts()
	ctx := context.Background()

	for _, off := range []int{-100, 3, 1 << 40} {
		got, total, err := repo.List(ctx, contact.ListFilter{Limit: 100, Offset: off})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Empty(t, got, "offset %d", off)
	}
}

func TestContactRepo_FilterIsCaseSensitive(t *testing.T) {
	s := seed(t)
	got, total, err := s.Contacts().List(context.Background(), contact.ListFilter{FirstName: "Al", Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, got)

	got, _, err = s.Contacts().List(context.Background(), contact.ListFilter{FirstName: "al", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, ids(got))
}

func TestContactRepo_CreateRejectsDuplicateEmail(t *testing.T) {
	s := seed(t)
	err := s.Contacts().Create(context.Background(), &domain.Contact{ID: "dup", Email: "BOB@example.com "})
	assert.ErrorIs(t, err, contact.ErrEmailExists)
}

func TestCustomFieldRepo_DeleteCascades(t *testing.T) {
	s := seed(t)
	ctx := context.Background()
	bob, err := s.Contacts().Get(ctx, "Bob")
	require.NoError(t, err)
	require.Len(t, bob.CustomFieldValues, 1)
	assert.Equal(t, "Tier", bob.CustomFieldValues[0].CustomFieldName)

	require.NoError(t, s.CustomFields().Delete(ctx, "f1"))
	assert.ErrorIs(t, s.CustomFields().Delete(ctx, "f1"), customfield.ErrNotFound)

	bob, err = s.Contacts().Get(ctx, "Bob")
	require.NoError(t, err)
	assert.Empty(t, bob.CustomFieldValues)
}

func TestMergeRepo_ApplyIsAllOrNothing(t *testing.T) {
	s := seed(t)
	ctx := context.Background()
	plan := &merge.Plan{
		Updates: []merge.SurvivorUpdate{{ContactID: "Carol", FirstName: "Changed"}},
		Deletes: []string{"alice", "ghost"},
	}
	require.Error(t, s.Merge().Apply(ctx, plan))

	carol, err := s.Contacts().Get(ctx, "Carol")
	require.NoError(t, err)
	assert.Equal(t, "Carol", carol.FirstName)
	_, err = s.Contacts().Get(ctx, "alice")
	assert.NoError(t, err)
}

func TestMergeRepo_ApplyRespectsCancellation(t *testing.T) {
	s := seed(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Merge().Apply(ctx, &merge.Plan{Deletes: []string{"alice"}})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Contacts().Get(context.Background(), "alice")
	assert.NoError(t, err)
}

func TestMergeRepo_ApplyEmptyPlan(t *testing.T) {
	s := seed(t)
	require.NoError(t, s.Merge().Apply(context.Background(), &merge.Plan{}))
	got, total, err := s.Contacts().List(context.Background(), contact.ListFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, got, 3)
}

func TestMergeRepo_LoadContactsSkipsUnknown(t *testing.T) {
	s := seed(t)
	got, err := s.Merge().LoadContacts(context.Background(), []string{"ghost", "Bob", "Bob"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, ids(got))
	assert.Equal(t, "Tier", got[0].CustomFieldValues[0].CustomFieldName)
}
