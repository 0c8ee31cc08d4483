package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var errDivisionByZero = errors.New("division by zero")

// binaryOps reduce left to right over their arguments.
var binaryOps = map[string]func(a, b any) (any, error){
	"add":      numAdd,
	"sub":      numSub,
	"mul":      numMul,
	"truediv":  numTrueDiv,
	"div":      numTrueDiv,
	"floordiv": numFloorDiv,
	"mod":      numMod,
	"pow":      numPow,
	"min":      numMin,
	"max":      numMax,
}

var unaryOps = map[string]func(a any) (any, error){
	"sqrt": numSqrt,
	"abs":  numAbs,
}

func isMathOp(op string) bool {
	_, binary := binaryOps[op]
	_, unary := unaryOps[op]
	return binary || unary
}

// evalMath applies op to the comma-separated numeric args. Integral float
// results collapse to int.
func evalMath(op, arg string) (any, error) {
	parts := strings.Split(arg, ",")
	nums := make([]any, 0, len(parts))
	for _, p := range parts {
		n, ok := parseNumber(p)
		if !ok {
			return nil, fmt.Errorf("%s: argument %q is not a number", op, strings.TrimSpace(p))
		}
		nums = append(nums, n)
	}

	if fn, ok := unaryOps[op]; ok {
		if len(nums) != 1 {
			return nil, fmt.Errorf("%s takes exactly one argument, got %d", op, len(nums))
		}
		r, err := fn(nums[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return collapse(r), nil
	}

	fn := binaryOps[op]
	acc := nums[0]
	for _, n := range nums[1:] {
		r, err := fn(acc, n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		acc = r
	}
	return collapse(acc), nil
}

func collapse(v any) any {
	if f, ok := v.(float64); ok {
		return collapseFloat(f)
	}
	return v
}

func bothInts(a, b any) (int, int, bool) {
	x, ok1 := a.(int)
	y, ok2 := b.(int)
	return x, y, ok1 && ok2
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case int:
		return float64(t)
	case float64:
		return t
	}
	return math.NaN()
}

// addInt, subInt and mulInt report false when the result does not fit in
// an int; callers then fall back to float64.
func addInt(x, y int) (int, bool) {
	s := x + y
	if (x > 0 && y > 0 && s < 0) || (x < 0 && y < 0 && s >= 0) {
		return 0, false
	}
	return s, true
}

func subInt(x, y int) (int, bool) {
	d := x - y
	if (x >= 0 && y < 0 && d < 0) || (x < 0 && y > 0 && d >= 0) {
		return 0, false
	}
	return d, true
}

func mulInt(x, y int) (int, bool) {
	if x == 0 || y == 0 {
		return 0, true
	}
	if (x == -1 && y == math.MinInt) || (y == -1 && x == math.MinInt) {
		return 0, false
	}
	p := x * y
	if p/y != x {
		return 0, false
	}
	return p, true
}

// powInt computes x**y by squaring.
func powInt(x, y int) (int, bool) {
	result := 1
	for y > 0 {
		if y&1 == 1 {
			r, ok := mulInt(result, x)
			if !ok {
				return 0, false
			}
			result = r
		}
		y >>= 1
		if y > 0 {
			sq, ok := mulInt(x, x)
			if !ok {
				return 0, false
			}
			x = sq
		}
	}
	return result, true
}

func numAdd(a, b any) (any, error) {
	if x, y, ok := bothInts(a, b); ok {
		if s, ok := addInt(x, y); ok {
			return s, nil
		}
	}
	return toFloat(a) + toFloat(b), nil
}

func numSub(a, b any) (any, error) {
	if x, y, ok := bothInts(a, b); ok {
		if d, ok := subInt(x, y); ok {
			return d, nil
		}
	}
	return toFloat(a) - toFloat(b), nil
}

func numMul(a, b any) (any, error) {
	if x, y, ok := bothInts(a, b); ok {
		if p, ok := mulInt(x, y); ok {
			return p, nil
		}
	}
	return toFloat(a) * toFloat(b), nil
}

func numTrueDiv(a, b any) (any, error) {
	d := toFloat(b)
	if d == 0 {
		return nil, errDivisionByZero
	}
	return toFloat(a) / d, nil
}

func numFloorDiv(a, b any) (any, error) {
	if x, y, ok := bothInts(a, b); ok && !(x == math.MinInt && y == -1) {
		if y == 0 {
			return nil, errDivisionByZero
		}
		q := x / y
		if (x%y != 0) && ((x < 0) != (y < 0)) {
			q--
		}
		return q, nil
	}
	d := toFloat(b)
	if d == 0 {
		return nil, errDivisionByZero
	}
	return math.Floor(toFloat(a) / d), nil
}

// numMod follows floored division: the result takes the divisor's sign.
func numMod(a, b any) (any, error) {
	if x, y, ok := bothInts(a, b); ok {
		if y == 0 {
			return nil, errDivisionByZero
		}
		r := x % y
		if r != 0 && ((r < 0) != (y < 0)) {
			r += y
		}
		return r, nil
	}
	d := toFloat(b)
	if d == 0 {
		return nil, errDivisionByZero
	}
	r := math.Mod(toFloat(a), d)
	if r != 0 && ((r < 0) != (d < 0)) {
		r += d
	}
	return r, nil
}

func numPow(a, b any) (any, error) {
	if x, y, ok := bothInts(a, b); ok && y >= 0 {
		if r, ok := powInt(x, y); ok {
			return r, nil
		}
	}
	return math.Pow(toFloat(a), toFloat(b)), nil
}

func numMin(a, b any) (any, error) {
	if toFloat(b) < toFloat(a) {
		return b, nil
	}
	return a, nil
}

func numMax(a, b any) (any, error) {
	if toFloat(b) > toFloat(a) {
		return b, nil
	}
	return a, nil
}

func numSqrt(a any) (any, error) {
	f := toFloat(a)
	if f < 0 {
		return nil, fmt.Errorf("negative argument %v", a)
	}
	return math.Sqrt(f), nil
}

func numAbs(a any) (any, error) {
	if x, ok := a.(int); ok && x != math.MinInt {
		if x < 0 {
			return -x, nil
		}
		return x, nil
	}
	return math.Abs(toFloat(a)), nil
}
