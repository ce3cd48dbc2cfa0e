package rewards

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var testTiers = []Tier{
	{Threshold: 5, Reward: "Shave Cream"},
	{Threshold: 10, Reward: "Truman Handle w/ Blade"},
	{Threshold: 25, Reward: "Winston Shave Set"},
	{Threshold: 50, Reward: "One Year Free Blades"},
}

func TestEvaluateZeroUnlocksNothing(t *testing.T) {
	res := Evaluate(0, testTiers)
	require.Empty(t, res.Unlocked)
	require.Nil(t, res.Best)
	require.NotNil(t, res.Next)
	require.Equal(t, "Shave Cream", res.Next.Reward)
	require.Equal(t, int64(5), res.Remaining)
}

func TestEvaluateExactThreshold(t *testing.T) {
	res := Evaluate(10, testTiers)
	require.Len(t, res.Unlocked, 2)
	require.Equal(t, "Truman Handle w/ Blade", res.Best.Reward)
	require.Equal(t, "Winston Shave Set", res.Next.Reward)
	require.Equal(t, int64(15), res.Remaining)

	below := Evaluate(9, testTiers)
	require.Len(t, below.Unlocked, 1)
	require.Equal(t, "Shave Cream", below.Best.Reward)
}

func TestEvaluateAllUnlocked(t *testing.T) {
	res := Evaluate(1000, testTiers)
	require.Equal(t, testTiers, res.Unlocked)
	require.Equal(t, "One Year Free Blades", res.Best.Reward)
	require.Nil(t, res.Next)
	require.Zero(t, res.Remaining)
}

func TestEvaluateEmptyTable(t *testing.T) {
	for _, count := range []int64{0, 1, 500} {
		res := Evaluate(count, nil)
		require.Empty(t, res.Unlocked)
		require.Nil(t, res.Best)
		require.Nil(t, res.Next)
	}
}

func TestEvaluateTieLastListedWins(t *testing.T) {
	tiers := []Tier{
		{Threshold: 1, Reward: "sticker"},
		{Threshold: 3, Reward: "mug"},
		{Threshold: 3, Reward: "t-shirt"},
	}
	res := Evaluate(3, tiers)
	require.Len(t, res.Unlocked, 3)
	require.Equal(t, "t-shirt", res.Best.Reward)
}

func TestEvaluateIsPure(t *testing.T) {
	first := Evaluate(7, testTiers)
	first.Best.Reward = "mutated"
	first.Unlocked[0].Reward = "mutated"

	second := Evaluate(7, testTiers)
	require.Equal(t, "Shave Cream", second.Best.Reward)
	require.Equal(t, "Shave Cream", testTiers[0].Reward)
}

func TestDefaultTable(t *testing.T) {
	table := Default()
	require.NotEmpty(t, table.Version)
	require.Len(t, table.Tiers, 5)
	require.Equal(t, int64(2), table.Tiers[0].Threshold)
	require.Equal(t, int64(100), table.Tiers[4].Threshold)
	require.NoError(t, table.Validate())

	res := table.Evaluate(5)
	require.Equal(t, "1 Week of Kobot Pro", res.Best.Reward)
	require.Len(t, res.Unlocked[0].Features, 3)
}

func TestParseRejectsUnsortedTable(t *testing.T) {
	_, err := Parse([]byte(`
version: bad
tiers:
  - count: 10
    reward: b
  - count: 5
    reward: a
`))
	require.ErrorContains(t, err, "below previous")

	_, err = Parse([]byte(`
tiers:
  - count: 1
    reward: ""
`))
	require.ErrorContains(t, err, "reward is empty")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "v2"
tiers:
  - count: 1
    reward: Early access
`), 0o600))

	table, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "v2", table.Version)
	require.Equal(t, []Tier{{Threshold: 1, Reward: "Early access"}}, table.Tiers)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "not found")

	def, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), def)
}
