package menu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kbukum/streamfork/forker"
	"github.com/kbukum/streamfork/logger"
	"github.com/kbukum/streamfork/pipeline"
)

func run(t *testing.T, src pipeline.Iterator[Dish], opts ...forker.Option) *forker.Results[string] {
	t.Helper()
	opts = append([]forker.Option{forker.WithLogger(logger.Nop())}, opts...)
	f := Register(forker.New[string](src, opts...))
	require.NoError(t, f.Err())

	res, err := f.Dispatch(context.Background())
	require.NoError(t, err)
	return res
}

func TestMenuStats(t *testing.T) {
	ctx := context.Background()
	stats, err := Collect(ctx, run(t, Source(ctx)))
	require.NoError(t, err)

	require.Equal(t, 9, stats.Count)
	require.Equal(t, "pork, beef, chicken, french fries, rice, season fruit, pizza, prawns, salmon", stats.ShortMenu)
	require.Equal(t, 4300, stats.TotalCalories)
	require.Equal(t, "pork", stats.MostCaloricDish.Name)
	require.Equal(t, 800, stats.MostCaloricDish.Calories)
	require.Equal(t, 4, stats.VegetarianCount)

	require.Len(t, stats.DishesByType[Meat], 3)
	require.Len(t, stats.DishesByType[Other], 4)
	require.Len(t, stats.DishesByType[Fish], 2)
	require.Equal(t, "prawns", stats.DishesByType[Fish][0].Name)
	require.Equal(t, "salmon", stats.DishesByType[Fish][1].Name)
}

func TestMenuStats_MatchesDirectComputation(t *testing.T) {
	ctx := context.Background()
	stats, err := Collect(ctx, run(t, Source(ctx), forker.WithMaxConcurrency(2)))
	require.NoError(t, err)

	total := 0
	for _, d := range Dishes() {
		total += d.Calories
	}
	require.Equal(t, total, stats.TotalCalories)
	require.Equal(t, len(Dishes()), stats.Count)
}

func TestMenuStats_EmptyMenu(t *testing.T) {
	ctx := context.Background()
	res := run(t, pipeline.FromSlice([]Dish(nil)).Iter(ctx))

	n, err := forker.GetAs[int](ctx, res, KeyCount)
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = Collect(ctx, res)
	require.Error(t, err, "most caloric dish of an empty menu must fail")
}

func TestReport(t *testing.T) {
	ctx := context.Background()
	stats, err := Collect(ctx, run(t, Source(ctx)))
	require.NoError(t, err)

	report := stats.Report()
	require.Contains(t, report, "Total calories: 4300")
	require.Contains(t, report, "Most caloric dish: pork (800 kcal, MEAT)")
	require.Contains(t, report, "  FISH: prawns, salmon")
}

func TestDishes_ReturnsCopy(t *testing.T) {
	d := Dishes()
	d[0].Name = "changed"
	require.Equal(t, "pork", Dishes()[0].Name)
}
