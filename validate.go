package tsstat

import (
	"math"
	"slices"
)

var nan = math.NaN()

// validate checks in against the entry's preconditions and returns the input
// the adapter should see. The returned input is a copy when missing values
// were dropped.
func validate(in *Input, e *Entry, o *Options) (*Input, error) {
	if in == nil {
		return nil, invalid(e.ID, Empty, "no input")
	}
	if in.parseErr != nil {
		err := *in.parseErr.(*InvalidInputError)
		err.Test = e.ID
		return nil, &err
	}
	if len(in.x) == 0 {
		return nil, invalid(e.ID, Empty, "series is empty")
	}
	if !slices.Contains(e.Shapes, in.shape) {
		return nil, invalid(e.ID, WrongDimensionality, "%s input, want %s", in.shape, shapeList(e.Shapes))
	}
	if err := checkLengths(in, e.ID); err != nil {
		return nil, err
	}

	if e.Gaps && o.DropMissing && hasNaN(in) {
		in = dropMissing(in)
		if len(in.x) == 0 {
			return nil, invalid(e.ID, Empty, "series is empty after dropping missing values")
		}
	}

	if need := e.minLength(in, o); in.Len() < need {
		return nil, invalid(e.ID, TooShort, "%d observations, need at least %d", in.Len(), need)
	}
	if err := checkFinite(in, e); err != nil {
		return nil, err
	}
	return in, nil
}

func checkLengths(in *Input, id TestID) error {
	switch in.shape {
	case ShapeBivariate:
		if len(in.y) != len(in.x) {
			return invalid(id, LengthMismatch, "series of length %d and %d", len(in.x), len(in.y))
		}
	case ShapeRegression:
		if len(in.exog) != len(in.x) {
			return invalid(id, LengthMismatch, "%d observations, %d regressor rows", len(in.x), len(in.exog))
		}
		k := in.exogWidth()
		if k == 0 {
			return invalid(id, WrongDimensionality, "no regressors")
		}
		for i, r := range in.exog {
			if len(r) != k {
				return invalid(id, LengthMismatch, "regressor row %d has %d columns, want %d", i, len(r), k)
			}
		}
	}
	return nil
}

func checkFinite(in *Input, e *Entry) error {
	check := func(what string, v []float64) error {
		for i, x := range v {
			if math.IsInf(x, 0) {
				return invalid(e.ID, NonFinite, "%s[%d] is infinite", what, i)
			}
			if math.IsNaN(x) {
				if e.Gaps {
					return invalid(e.ID, NonFinite, "%s[%d] is missing; pass DropMissing to drop gaps", what, i)
				}
				return invalid(e.ID, NonFinite, "%s[%d] is missing", what, i)
			}
		}
		return nil
	}
	if err := check("x", in.x); err != nil {
		return err
	}
	if err := check("y", in.y); err != nil {
		return err
	}
	for _, r := range in.exog {
		if err := check("exog", r); err != nil {
			return err
		}
	}
	return nil
}

func hasNaN(in *Input) bool {
	return slices.ContainsFunc(in.x, math.IsNaN) || slices.ContainsFunc(in.y, math.IsNaN)
}

// dropMissing removes every observation where any series is NaN.
func dropMissing(in *Input) *Input {
	out := &Input{shape: in.shape}
	for i, v := range in.x {
		if math.IsNaN(v) || (in.y != nil && math.IsNaN(in.y[i])) {
			continue
		}
		out.x = append(out.x, v)
		if in.y != nil {
			out.y = append(out.y, in.y[i])
		}
		if in.exog != nil {
			out.exog = append(out.exog, in.exog[i])
		}
	}
	return out
}

func shapeList(shapes []Shape) string {
	s := ""
	for i, sh := range shapes {
		if i > 0 {
			s += " or "
		}
		s += sh.String()
	}
	return s
}
