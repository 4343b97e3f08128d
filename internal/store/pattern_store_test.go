package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fiscalsim/engine/internal/domain"
	"github.com/fiscalsim/engine/internal/simerr"
	"github.com/fiscalsim/engine/internal/store"
)

func rentPattern(id string) domain.Pattern {
	return domain.Pattern{
		ID:         id,
		Name:       "Office rent",
		Kind:       domain.PatternExpense,
		Amount:     domain.NewMoney(1200),
		Frequency:  domain.FrequencyMonthly,
		StartMonth: 1,
		Category:   domain.CategoryRent,
	}
}

func TestMemoryPatternStore_RoundTripsAPattern(t *testing.T) {
	s := store.NewMemoryPatternStore()

	require.NoError(t, s.Save("co-1", rentPattern("p-1")))

	got, err := s.Get("co-1", "p-1")
	require.NoError(t, err)
	require.Equal(t, "Office rent", got.Name)
	require.Equal(t, "1200.00", got.Amount.String())
}

func TestMemoryPatternStore_GetMissingReturnsNotFound(t *testing.T) {
	s := store.NewMemoryPatternStore()

	_, err := s.Get("co-1", "absent")

	var nf *simerr.NotFound
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "pattern", nf.Kind)
}

func TestMemoryPatternStore_ListIsScopedToOneCompany(t *testing.T) {
	s := store.NewMemoryPatternStore()
	require.NoError(t, s.Save("co-1", rentPattern("p-1")))
	require.NoError(t, s.Save("co-1", rentPattern("p-2")))
	require.NoError(t, s.Save("co-2", rentPattern("p-3")))

	patterns, err := s.List("co-1")
	require.NoError(t, err)
	require.Len(t, patterns, 2)
}

func TestBoltPatternStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.db")

	s, err := store.NewBoltPatternStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save("co-1", rentPattern("p-1")))
	require.NoError(t, s.Close())

	reopened, err := store.NewBoltPatternStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get("co-1", "p-1")
	require.NoError(t, err)
	require.Equal(t, "p-1", got.ID)
}

func TestBoltPatternStore_ListPrefixDoesNotLeakAcrossCompanies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.db")
	s, err := store.NewBoltPatternStore(path)
	require.NoError(t, err)
	defer s.Close()

	// "co-1" is a key prefix of "co-10"; List must not mix them up.
	require.NoError(t, s.Save("co-1", rentPattern("p-1")))
	require.NoError(t, s.Save("co-10", rentPattern("p-2")))

	patterns, err := s.List("co-1")
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	require.Equal(t, "p-1", patterns[0].ID)
}

func TestBoltPatternStore_DeleteMissingReturnsNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.db")
	s, err := store.NewBoltPatternStore(path)
	require.NoError(t, err)
	defer s.Close()

	var nf *simerr.NotFound
	require.ErrorAs(t, s.Delete("co-1", "absent"), &nf)
}

func TestMemoryResultSink_RoundTripsARunStatus(t *testing.T) {
	sink := store.NewMemoryResultSink()

	sink.Put(store.RunStatus{ID: "sim-1", Status: domain.StatusCompleted})

	rs, err := sink.Get("sim-1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, rs.Status)

	_, err = sink.Get("absent")
	require.Error(t, err)
}
