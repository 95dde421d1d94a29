package stdlib

import (
	"fmt"
	"math"

	"github.com/thomasrohde/lox/pkg/evaluator"
)

func numberArg(fn string, args []evaluator.Value, i int) (float64, error) {
	n, ok := args[i].(evaluator.Number)
	if !ok {
		return 0, fmt.Errorf("%s: argument %d must be a number", fn, i+1)
	}
	return n.Value, nil
}

// max(a, b) → number
func stdlibMax(args []evaluator.Value) (evaluator.Value, error) {
	a, err := numberArg("max", args, 0)
	if err != nil {
		return nil, err
	}
	b, err := numberArg("max", args, 1)
	if err != nil {
		return nil, err
	}
	return evaluator.NewNumber(math.Max(a, b)), nil
}

// min(a, b) → number
func stdlibMin(args []evaluator.Value) (evaluator.Value, error) {
	a, err := numberArg("min", args, 0)
	if err != nil {
		return nil, err
	}
	b, err := numberArg("min", args, 1)
	if err != nil {
		return nil, err
	}
	return evaluator.NewNumber(math.Min(a, b)), nil
}

// floor(n) → the largest whole number not above n
func stdlibFloor(args []evaluator.Value) (evaluator.Value, error) {
	n, err := numberArg("floor", args, 0)
	if err != nil {
		return nil, err
	}
	return evaluator.NewNumber(math.Floor(n)), nil
}
