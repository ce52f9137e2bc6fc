package evaluator

import "math"

// Checked 64-bit arithmetic (spec.md §4.4, testable property "arithmetic
// overflow laws"). No third-party big-integer or checked-arithmetic library
// fits lumen's single machine-int64 type — see DESIGN.md for the
// stdlib-only justification.

func checkedAdd(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

func checkedSub(a, b int64) (int64, bool) {
	diff := a - b
	if (b < 0 && diff < a) || (b > 0 && diff > a) {
		return 0, false
	}
	return diff, true
}

func checkedMul(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	result := a * b
	if result/b != a {
		return 0, false
	}
	if a == -1 && b == math.MinInt64 || b == -1 && a == math.MinInt64 {
		return 0, false
	}
	return result, true
}

func checkedDiv(a, b int64) (int64, bool) {
	if b == 0 {
		return 0, false
	}
	if a == math.MinInt64 && b == -1 {
		return 0, false
	}
	return a / b, true
}
