package missions

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	require.Equal(t, 13, c.Len())

	counts := map[Category]int{}
	for _, m := range c.All() {
		counts[m.Category]++
		assert.Positive(t, m.Target, "mission %s", m.ID)
		assert.NotEmpty(t, m.Title, "mission %s", m.ID)
	}
	assert.Equal(t, map[Category]int{
		CategoryDaily:       5,
		CategoryWeekly:      4,
		CategoryProgression: 4,
	}, counts)
}

func TestDefaultCatalog_CoversEveryEvent(t *testing.T) {
	c := DefaultCatalog()
	for _, kind := range AllKinds() {
		e, err := ParseEvent(kind, 1)
		require.NoError(t, err)
		for _, eff := range e.effects() {
			_, ok := c.Get(eff.missionID)
			assert.True(t, ok, "%s targets %s which is not in the catalog", kind, eff.missionID)
		}
	}
}

func TestParseCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `[{`},
		{"not an array", `{"id": "a"}`},
		{"missing target", `[{"id":"a","title":"A","xpReward":1,"category":"daily"}]`},
		{"zero target", `[{"id":"a","title":"A","target":0,"xpReward":1,"category":"daily"}]`},
		{"fractional target", `[{"id":"a","title":"A","target":1.5,"xpReward":1,"category":"daily"}]`},
		{"unknown category", `[{"id":"a","title":"A","target":1,"xpReward":1,"category":"monthly"}]`},
		{"empty id", `[{"id":"","title":"A","target":1,"xpReward":1,"category":"daily"}]`},
		{"duplicate id", `[
			{"id":"a","title":"A","target":1,"xpReward":1,"category":"daily"},
			{"id":"a","title":"B","target":2,"xpReward":1,"category":"weekly"}
		]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCatalog), "err = %v", err)
		})
	}
}

func TestParseCatalog_Valid(t *testing.T) {
	c, err := ParseCatalog([]byte(`[
		{"id":"a","title":"A","description":"first","target":2,"xpReward":5,"category":"daily"},
		{"id":"b","title":"B","target":1,"xpReward":0,"category":"progression"}
	]`))
	require.NoError(t, err)

	a, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, Mission{ID: "a", Title: "A", Description: "first", Target: 2, XPReward: 5, Category: CategoryDaily}, a)
	assert.Len(t, c.ByCategory(CategoryProgression), 1)
	assert.Empty(t, c.ByCategory(CategoryWeekly))

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCatalogAllReturnsCopy(t *testing.T) {
	c := DefaultCatalog()
	all := c.All()
	all[0].Target = 9999

	first, _ := c.Get(all[0].ID)
	assert.NotEqual(t, 9999, first.Target)
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missions.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`[{"id":"x","title":"X","target":1,"xpReward":3,"category":"weekly"}]`), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestLoadCatalogOrEmpty(t *testing.T) {
	assert.Equal(t, DefaultCatalog(), LoadCatalogOrEmpty("", nil), "empty path uses the built-in catalog")

	missing := LoadCatalogOrEmpty(filepath.Join(t.TempDir(), "nope.json"), nil)
	assert.Equal(t, 0, missing.Len())

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`not json`), 0o644))
	assert.Equal(t, 0, LoadCatalogOrEmpty(bad, nil).Len())
}

func TestDefaultCatalog_WeeklyOpenCountsOpens(t *testing.T) {
	m, ok := DefaultCatalog().Get(MissionWeeklyOpen)
	require.True(t, ok)
	assert.Equal(t, "Open the app 5 times this week.", m.Description)
	assert.Equal(t, 5, m.Target)
}
