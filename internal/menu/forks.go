package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbukum/streamfork/errors"
	"github.com/kbukum/streamfork/forker"
	"github.com/kbukum/streamfork/pipeline"
)

// Fork keys.
const (
	KeyCount           = "count"
	KeyShortMenu       = "shortMenu"
	KeyTotalCalories   = "totalCalories"
	KeyMostCaloricDish = "mostCaloricDish"
	KeyVegetarianCount = "vegetarianCount"
	KeyDishesByType    = "dishesByType"
)

// Register adds the menu statistics forks to f.
func Register(f *forker.Forker[string, Dish]) *forker.Forker[string, Dish] {
	return f.
		Fork(KeyCount, forker.Typed(pipeline.Count[Dish])).
		Fork(KeyShortMenu, forker.Typed(shortMenu)).
		Fork(KeyTotalCalories, forker.Typed(totalCalories)).
		Fork(KeyMostCaloricDish, forker.Typed(mostCaloricDish)).
		Fork(KeyVegetarianCount, forker.Typed(vegetarianCount)).
		Fork(KeyDishesByType, forker.Typed(dishesByType))
}

func shortMenu(ctx context.Context, p *pipeline.Pipeline[Dish]) (string, error) {
	return pipeline.Join(ctx, p, ", ", func(d Dish) string { return d.Name })
}

func totalCalories(ctx context.Context, p *pipeline.Pipeline[Dish]) (int, error) {
	return pipeline.Sum(ctx, p, func(d Dish) int { return d.Calories })
}

func mostCaloricDish(ctx context.Context, p *pipeline.Pipeline[Dish]) (Dish, error) {
	d, ok, err := pipeline.MaxBy(ctx, p, func(d Dish) int { return d.Calories })
	if err != nil {
		return Dish{}, err
	}
	if !ok {
		return Dish{}, errors.New(errors.ErrCodeInvalidInput, "menu is empty")
	}
	return d, nil
}

func vegetarianCount(ctx context.Context, p *pipeline.Pipeline[Dish]) (int, error) {
	return pipeline.Count(ctx, pipeline.Filter(p, func(d Dish) bool { return d.Vegetarian }))
}

func dishesByType(ctx context.Context, p *pipeline.Pipeline[Dish]) (map[Type][]Dish, error) {
	return pipeline.GroupBy(ctx, p, func(d Dish) Type { return d.Type })
}

// Stats is the typed view of the menu forks.
type Stats struct {
	Count           int
	ShortMenu       string
	TotalCalories   int
	MostCaloricDish Dish
	VegetarianCount int
	DishesByType    map[Type][]Dish
}

// Collect waits for every menu fork and gathers the results.
func Collect(ctx context.Context, res *forker.Results[string]) (Stats, error) {
	var (
		s   Stats
		err error
	)
	if s.Count, err = forker.GetAs[int](ctx, res, KeyCount); err != nil {
		return s, err
	}
	if s.ShortMenu, err = forker.GetAs[string](ctx, res, KeyShortMenu); err != nil {
		return s, err
	}
	if s.TotalCalories, err = forker.GetAs[int](ctx, res, KeyTotalCalories); err != nil {
		return s, err
	}
	if s.MostCaloricDish, err = forker.GetAs[Dish](ctx, res, KeyMostCaloricDish); err != nil {
		return s, err
	}
	if s.VegetarianCount, err = forker.GetAs[int](ctx, res, KeyVegetarianCount); err != nil {
		return s, err
	}
	if s.DishesByType, err = forker.GetAs[map[Type][]Dish](ctx, res, KeyDishesByType); err != nil {
		return s, err
	}
	return s, nil
}

// Report renders the stats as plain text lines.
func (s Stats) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dishes: %d\n", s.Count)
	fmt.Fprintf(&b, "Short menu: %s\n", s.ShortMenu)
	fmt.Fprintf(&b, "Total calories: %d\n", s.TotalCalories)
	fmt.Fprintf(&b, "Most caloric dish: %s\n", s.MostCaloricDish)
	fmt.Fprintf(&b, "Vegetarian dishes: %d\n", s.VegetarianCount)
	b.WriteString("Dishes by type:\n")
	for _, t := range Types {
		names := make([]string, len(s.DishesByType[t]))
		for i, d := range s.DishesByType[t] {
			names[i] = d.Name
		}
		fmt.Fprintf(&b, "  %s: %s\n", t, strings.Join(names, ", "))
	}
	return b.String()
}
