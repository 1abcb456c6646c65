package runtime

import "math"

// Math and comparison natives. The operators are infix: the evaluator's
// lookahead feeds them their left argument. Integer arithmetic checks for
// overflow and escalates; mixed integer/decimal promotes to decimal.

var mathParams = []ParamDef{
	{Name: "value1", Class: ParamNormal, Types: []string{"any-number?", "char!"}},
	{Name: "value2", Class: ParamNormal, Types: []string{"any-number?", "char!"}},
}

var compareParams = []ParamDef{
	{Name: "value1", Class: ParamNormal},
	{Name: "value2", Class: ParamNormal},
}

func (rt *Runtime) registerMathNatives() {
	infix := func(d *Details) {
		d.Infix = true
		rt.RegisterNative(d)
	}

	infix(rt.MakeNative("+", mathParams, addNative))
	infix(rt.MakeNative("-", mathParams, subtractNative))
	infix(rt.MakeNative("*", mathParams, multiplyNative))
	infix(rt.MakeNative("/", mathParams, divideNative))

	infix(rt.MakeNative("=", compareParams, func(rt *Runtime, L *Level) Bounce {
		*L.Out = rt.LogicCell(rt.EqualCells(L.Arg("value1", rt), L.Arg("value2", rt), false))
		return BounceDone
	}))
	infix(rt.MakeNative("<>", compareParams, func(rt *Runtime, L *Level) Bounce {
		*L.Out = rt.LogicCell(!rt.EqualCells(L.Arg("value1", rt), L.Arg("value2", rt), false))
		return BounceDone
	}))

	ordered := func(name string, keep func(int) bool) {
		infix(rt.MakeNative(name, compareParams, func(rt *Runtime, L *Level) Bounce {
			cmp, err := rt.CompareCells(L.Arg("value1", rt), L.Arg("value2", rt), false)
			if err != nil {
				return rt.PanicThrow(err)
			}
			*L.Out = rt.LogicCell(keep(cmp))
			return BounceDone
		}))
	}
	ordered("<", func(c int) bool { return c < 0 })
	ordered(">", func(c int) bool { return c > 0 })
	ordered("<=", func(c int) bool { return c <= 0 })
	ordered(">=", func(c int) bool { return c >= 0 })

	rt.RegisterNative(rt.MakeNative("negate", []ParamDef{
		{Name: "value", Class: ParamNormal, Types: []string{"any-number?"}},
	}, func(rt *Runtime, L *Level) Bounce {
		v := L.Arg("value", rt)
		if IsInteger(v) {
			if v.Num == math.MinInt64 {
				return rt.PanicThrow(rt.NewError("overflow"))
			}
			*L.Out = IntCell(-v.Num)
		} else {
			*L.Out = DecimalCell(-v.Dec)
		}
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("even?", []ParamDef{
		{Name: "value", Class: ParamNormal, Types: []string{"integer!"}},
	}, func(rt *Runtime, L *Level) Bounce {
		*L.Out = rt.LogicCell(L.Arg("value", rt).Num%2 == 0)
		return BounceDone
	}))

	rt.RegisterNative(rt.MakeNative("odd?", []ParamDef{
		{Name: "value", Class: ParamNormal, Types: []string{"integer!"}},
	}, func(rt *Runtime, L *Level) Bounce {
		*L.Out = rt.LogicCell(L.Arg("value", rt).Num%2 != 0)
		return BounceDone
	}))
}

func bothInts(a, b *Cell) bool { return IsInteger(a) && IsInteger(b) }

func addNative(rt *Runtime, L *Level) Bounce {
	a, b := L.Arg("value1", rt), L.Arg("value2", rt)
	if bothInts(a, b) {
		sum := a.Num + b.Num
		if (sum > a.Num) != (b.Num > 0) {
			return rt.PanicThrow(rt.NewError("overflow"))
		}
		*L.Out = IntCell(sum)
		return BounceDone
	}
	*L.Out = DecimalCell(numValue(a) + numValue(b))
	return BounceDone
}

func subtractNative(rt *Runtime, L *Level) Bounce {
	a, b := L.Arg("value1", rt), L.Arg("value2", rt)
	if bothInts(a, b) {
		diff := a.Num - b.Num
		if (diff < a.Num) != (b.Num > 0) {
			return rt.PanicThrow(rt.NewError("overflow"))
		}
		*L.Out = IntCell(diff)
		return BounceDone
	}
	*L.Out = DecimalCell(numValue(a) - numValue(b))
	return BounceDone
}

func multiplyNative(rt *Runtime, L *Level) Bounce {
	a, b := L.Arg("value1", rt), L.Arg("value2", rt)
	if bothInts(a, b) {
		if a.Num != 0 && b.Num != 0 {
			prod := a.Num * b.Num
			if prod/b.Num != a.Num {
				return rt.PanicThrow(rt.NewError("overflow"))
			}
			*L.Out = IntCell(prod)
		} else {
			*L.Out = IntCell(0)
		}
		return BounceDone
	}
	*L.Out = DecimalCell(numValue(a) * numValue(b))
	return BounceDone
}

func divideNative(rt *Runtime, L *Level) Bounce {
	a, b := L.Arg("value1", rt), L.Arg("value2", rt)
	if numValue(b) == 0 {
		return rt.PanicThrow(rt.NewError("zero-divide"))
	}
	if bothInts(a, b) && a.Num%b.Num == 0 {
		*L.Out = IntCell(a.Num / b.Num)
		return BounceDone
	}
	*L.Out = DecimalCell(numValue(a) / numValue(b))
	return BounceDone
}
