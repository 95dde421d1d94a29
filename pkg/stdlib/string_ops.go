package stdlib

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/thomasrohde/lox/pkg/evaluator"
)

func stringArg(fn string, args []evaluator.Value, i int) (string, error) {
	s, ok := args[i].(evaluator.String)
	if !ok {
		return "", fmt.Errorf("%s: argument %d must be a string", fn, i+1)
	}
	return s.Value, nil
}

// len(s) → number of characters in s
func stdlibLen(args []evaluator.Value) (evaluator.Value, error) {
	s, err := stringArg("len", args, 0)
	if err != nil {
		return nil, err
	}
	return evaluator.NewNumber(float64(utf8.RuneCountInString(s))), nil
}

// num(s) → the number s spells, or nil
func stdlibNum(args []evaluator.Value) (evaluator.Value, error) {
	switch v := args[0].(type) {
	case evaluator.Number:
		return v, nil
	case evaluator.String:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64)
		if err != nil {
			return evaluator.NewNil(), nil
		}
		return evaluator.NewNumber(n), nil
	}
	return evaluator.NewNil(), nil
}

// contains(s, sub) → bool
func stdlibContains(args []evaluator.Value) (evaluator.Value, error) {
	s, err := stringArg("contains", args, 0)
	if err != nil {
		return nil, err
	}
	sub, err := stringArg("contains", args, 1)
	if err != nil {
		return nil, err
	}
	return evaluator.NewBool(strings.Contains(s, sub)), nil
}

// startsWith(s, prefix) → bool
func stdlibStartsWith(args []evaluator.Value) (evaluator.Value, error) {
	s, err := stringArg("startsWith", args, 0)
	if err != nil {
		return nil, err
	}
	prefix, err := stringArg("startsWith", args, 1)
	if err != nil {
		return nil, err
	}
	return evaluator.NewBool(strings.HasPrefix(s, prefix)), nil
}

// endsWith(s, suffix) → bool
func stdlibEndsWith(args []evaluator.Value) (evaluator.Value, error) {
	s, err := stringArg("endsWith", args, 0)
	if err != nil {
		return nil, err
	}
	suffix, err := stringArg("endsWith", args, 1)
	if err != nil {
		return nil, err
	}
	return evaluator.NewBool(strings.HasSuffix(s, suffix)), nil
}

// replace(s, from, to) → s with every from replaced by to
func stdlibReplace(args []evaluator.Value) (evaluator.Value, error) {
	s, err := stringArg("replace", args, 0)
	if err != nil {
		return nil, err
	}
	from, err := stringArg("replace", args, 1)
	if err != nil {
		return nil, err
	}
	to, err := stringArg("replace", args, 2)
	if err != nil {
		return nil, err
	}
	return evaluator.NewString(strings.ReplaceAll(s, from, to)), nil
}
