// Package menu holds the demonstration data set and the forks computed over it.
package menu

import (
	"context"
	"fmt"

	"github.com/kbukum/streamfork/pipeline"
)

// Type is the dish category.
type Type string

const (
	Meat  Type = "MEAT"
	Fish  Type = "FISH"
	Other Type = "OTHER"
)

// Types lists every category in display order.
var Types = []Type{Meat, Fish, Other}

// Dish is one menu entry.
type Dish struct {
	Name       string `json:"name"`
	Vegetarian bool   `json:"vegetarian"`
	Calories   int    `json:"calories"`
	Type       Type   `json:"type"`
}

func (d Dish) String() string {
	return fmt.Sprintf("%s (%d kcal, %s)", d.Name, d.Calories, d.Type)
}

var dishes = []Dish{
	{Name: "pork", Vegetarian: false, Calories: 800, Type: Meat},
	{Name: "beef", Vegetarian: false, Calories: 700, Type: Meat},
	{Name: "chicken", Vegetarian: false, Calories: 400, Type: Meat},
	{Name: "french fries", Vegetarian: true, Calories: 530, Type: Other},
	{Name: "rice", Vegetarian: true, Calories: 350, Type: Other},
	{Name: "season fruit", Vegetarian: true, Calories: 120, Type: Other},
	{Name: "pizza", Vegetarian: true, Calories: 550, Type: Other},
	{Name: "prawns", Vegetarian: false, Calories: 400, Type: Fish},
	{Name: "salmon", Vegetarian: false, Calories: 450, Type: Fish},
}

// Dishes returns a copy of the menu in serving order.
func Dishes() []Dish {
	out := make([]Dish, len(dishes))
	copy(out, dishes)
	return out
}

// Source returns a read-once iterator over the menu.
func Source(ctx context.Context) pipeline.Iterator[Dish] {
	return pipeline.FromSlice(Dishes()).Iter(ctx)
}
