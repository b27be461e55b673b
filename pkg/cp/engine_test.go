package cp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func solve(t *testing.T, model *Model, params Parameters) Response {
	t.Helper()
	if params.MaxTime == 0 {
		params.MaxTime = 10 * time.Second
	}
	response, err := NewNativeEngine().Solve(context.Background(), model, params)
	require.NoError(t, err)
	return response
}

func TestLinear(t *testing.T) {
	t.Run("Maximize over an equality", func(t *testing.T) {
		// Arrange
		model := NewModel("linear")
		x := model.NewIntVar(0, 10, "x")
		y := model.NewIntVar(0, 3, "y")
		model.AddEquality(Sum(x, y), 10)
		model.Maximize(Scaled(x, 2).Add(y))

		// Act
		response := solve(t, model, DefaultParameters())

		// Assert
		assert.Equal(t, Optimal, response.Status)
		assert.Equal(t, int64(10), response.Value(x))
		assert.Equal(t, int64(0), response.Value(y))
		assert.Equal(t, int64(20), response.Objective)
	})

	t.Run("Minimize", func(t *testing.T) {
		// Arrange
		model := NewModel("minimize")
		x := model.NewIntVar(-5, 10, "x")
		y := model.NewIntVar(0, 3, "y")
		model.AddGreaterOrEqual(Sum(x, y), 4)
		model.Minimize(Sum(x).Add(y).Add(y))

		// Act
		response := solve(t, model, DefaultParameters())

		// Assert
		assert.Equal(t, Optimal, response.Status)
		assert.Equal(t, int64(4), response.Objective)
		assert.Equal(t, int64(4), response.Value(x))
	})

	t.Run("Infeasible at the root", func(t *testing.T) {
		// Arrange
		model := NewModel("infeasible")
		x := model.NewIntVar(0, 10, "x")
		y := model.NewIntVar(0, 10, "y")
		model.AddGreaterOrEqual(Sum(x, y), 30)

		// Act
		response := solve(t, model, DefaultParameters())

		// Assert
		assert.Equal(t, Infeasible, response.Status)
		assert.Nil(t, response.Values)
	})
}

func TestEnforcement(t *testing.T) {
	t.Run("Reified bounds", func(t *testing.T) {
		// Arrange
		model := NewModel("reified")
		b := model.NewBoolVar("b")
		x := model.NewIntVar(0, 10, "x")
		model.AddGreaterOrEqual(Sum(x), 5).OnlyEnforceIf(b)
		model.AddLessOrEqual(Sum(x), 2).OnlyEnforceIf(b.Not())
		model.Maximize(Scaled(b.IntVar(), 10).AddTerm(x, -1))

		// Act
		response := solve(t, model, DefaultParameters())

		// Assert
		assert.Equal(t, Optimal, response.Status)
		assert.True(t, response.BoolValue(b))
		assert.Equal(t, int64(5), response.Value(x))
		assert.Equal(t, int64(5), response.Objective)
	})

	t.Run("Violated constraint turns its literal off", func(t *testing.T) {
		// Arrange
		model := NewModel("off")
		b := model.NewBoolVar("b")
		x := model.NewIntVar(0, 3, "x")
		model.AddGreaterOrEqual(Sum(x), 5).OnlyEnforceIf(b)
		model.Maximize(SumBools(b))

		// Act
		response := solve(t, model, DefaultParameters())

		// Assert
		assert.Equal(t, Optimal, response.Status)
		assert.False(t, response.BoolValue(b))
	})

	t.Run("Clauses", func(t *testing.T) {
		// Arrange
		model := NewModel("clauses")
		a := model.NewBoolVar("a")
		b := model.NewBoolVar("b")
		c := model.NewBoolVar("c")
		model.AddExactlyOne(a, b, c)
		model.AddImplication(a, b)
		model.AddBoolOr(a.Not(), c.Not())
		model.Maximize(NewLinearExpr().AddLiteral(c, 1).AddLiteral(b.Not(), 1))

		// Act
		response := solve(t, model, DefaultParameters())

		// Assert
		assert.Equal(t, Optimal, response.Status)
		assert.False(t, response.BoolValue(a))
		assert.False(t, response.BoolValue(b))
		assert.True(t, response.BoolValue(c))
		assert.Equal(t, int64(2), response.Objective)
	})

	t.Run("Unsupported enforcement is a model error", func(t *testing.T) {
		// Arrange
		model := NewModel("invalid")
		b := model.NewBoolVar("b")
		index := model.NewIntVar(0, 1, "index")
		target := model.NewIntVar(0, 9, "target")
		model.AddElement(index, []int64{1, 2}, target).OnlyEnforceIf(b)

		// Act
		response, err := NewNativeEngine().Solve(context.Background(), model, DefaultParameters())

		// Assert
		assert.Error(t, err)
		assert.Equal(t, ModelInvalid, response.Status)
	})
}

func TestGlobalConstraints(t *testing.T) {
	t.Run("Element", func(t *testing.T) {
		// Arrange
		model := NewModel("element")
		index := model.NewIntVar(0, 3, "index")
		target := model.NewIntVar(0, 100, "target")
		model.AddElement(index, []int64{5, 1, 7, 3}, target)
		model.Maximize(Sum(target))

		// Act
		response := solve(t, model, DefaultParameters())

		// Assert
		assert.Equal(t, Optimal, response.Status)
		assert.Equal(t, int64(2), response.Value(index))
		assert.Equal(t, int64(7), response.Value(target))
	})

	t.Run("Absolute value", func(t *testing.T) {
		// Arrange
		model := NewModel("abs")
		x := model.NewIntVar(-7, 4, "x")
		target := model.NewIntVar(0, 20, "target")
		model.AddAbsEquality(target, x)
		model.Maximize(Sum(target))

		// Act
		response := solve(t, model, DefaultParameters())

		// Assert
		assert.Equal(t, Optimal, response.Status)
		assert.Equal(t, int64(-7), response.Value(x))
		assert.Equal(t, int64(7), response.Value(target))
	})

	t.Run("Min and max", func(t *testing.T) {
		// Arrange
		model := NewModel("minmax")
		a := model.NewIntVar(0, 9, "a")
		b := model.NewIntVar(0, 9, "b")
		low := model.NewIntVar(0, 9, "low")
		high := model.NewIntVar(0, 9, "high")
		model.AddLessOrEqual(Sum(a, b), 9)
		model.AddMinEquality(low, []IntVar{a, b})
		model.AddMaxEquality(high, []IntVar{a, b})
		model.Maximize(Scaled(low, 10).AddTerm(high, -1))

		// Act
		response := solve(t, model, DefaultParameters())

		// Assert
		assert.Equal(t, Optimal, response.Status)
		assert.Equal(t, int64(4), response.Value(low))
		assert.Equal(t, int64(4), response.Value(high))
		assert.Equal(t, int64(36), response.Objective)
	})

	t.Run("Division", func(t *testing.T) {
		// Arrange
		model := NewModel("division")
		x := model.NewIntVar(11, 11, "x")
		quotient := model.NewIntVar(0, 20, "quotient")
		model.AddDivisionEquality(quotient, Sum(x), 3)

		// Act
		response := solve(t, model, DefaultParameters())

		// Assert
		assert.Equal(t, Optimal, response.Status)
		assert.Equal(t, int64(3), response.Value(quotient))
	})

	t.Run("Point capacity forces its guard off", func(t *testing.T) {
		// Arrange
		model := NewModel("capacity")
		guard := model.NewBoolVar("guard")
		var points []Point
		for range 3 {
			points = append(points, Point{X: model.NewIntVar(2, 2, "x"), Y: model.NewIntVar(0, 1, "y")})
		}
		for _, p := range points {
			model.AddEquality(Sum(p.Y), 1)
		}
		model.AddPointCapacity(points, Region{X0: 0, Y0: 0, X1: 4, Y1: 4}, 2).OnlyEnforceIf(guard)
		model.Maximize(SumBools(guard))

		// Act
		response := solve(t, model, DefaultParameters())

		// Assert
		assert.Equal(t, Optimal, response.Status)
		assert.False(t, response.BoolValue(guard))
	})
}

func squares(model *Model, count int, size, side int64) []Rect {
	rects := make([]Rect, count)
	for i := range rects {
		rects[i] = Rect{
			X:      model.NewIntVar(0, side-size, "x"),
			Width:  model.NewConstant(size),
			Y:      model.NewIntVar(0, side-size, "y"),
			Height: model.NewConstant(size),
		}
	}
	return rects
}

func TestNoOverlap2D(t *testing.T) {
	t.Run("Four squares tile the grid", func(t *testing.T) {
		// Arrange
		model := NewModel("tiles")
		rects := squares(model, 4, 2, 4)
		model.AddNoOverlap2D(rects)

		// Act
		response := solve(t, model, DefaultParameters())

		// Assert
		require.True(t, response.Status.Feasible())
		for i, a := range rects {
			for _, b := range rects[i+1:] {
				ax, ay := response.Value(a.X), response.Value(a.Y)
				bx, by := response.Value(b.X), response.Value(b.Y)
				disjoint := ax+2 <= bx || bx+2 <= ax || ay+2 <= by || by+2 <= ay
				assert.True(t, disjoint)
			}
		}
	})

	t.Run("Five squares do not fit", func(t *testing.T) {
		// Arrange
		model := NewModel("overfull")
		model.AddNoOverlap2D(squares(model, 5, 2, 4))

		// Act
		response := solve(t, model, DefaultParameters())

		// Assert
		assert.Equal(t, Infeasible, response.Status)
	})
}

func TestSolve(t *testing.T) {
	t.Run("Portfolio agrees with a single worker", func(t *testing.T) {
		build := func() (*Model, []IntVar) {
			model := NewModel("knapsack")
			weights := []int64{4, 7, 3, 9, 5, 6}
			values := []int64{5, 9, 4, 10, 6, 7}
			items := make([]IntVar, len(weights))
			capacity := NewLinearExpr()
			objective := NewLinearExpr()
			for i := range items {
				items[i] = model.NewBoolVar("item").IntVar()
				capacity = capacity.AddTerm(items[i], weights[i])
				objective = objective.AddTerm(items[i], values[i])
			}
			model.AddLessOrEqual(capacity, 17)
			model.AddDecisionStrategy(items, SelectMax)
			model.Maximize(objective)
			return model, items
		}

		// Arrange
		single, _ := build()
		portfolio, _ := build()
		params := DefaultParameters()
		params.Workers = 4
		params.Portfolio = true
		params.Randomize = true
		params.Seed = 7

		// Act
		first := solve(t, single, DefaultParameters())
		second := solve(t, portfolio, params)

		// Assert
		assert.Equal(t, Optimal, first.Status)
		assert.Equal(t, Optimal, second.Status)
		assert.Equal(t, first.Objective, second.Objective)
		assert.Equal(t, 4, second.Stats.Workers)
	})

	t.Run("Deadline is honored", func(t *testing.T) {
		// Arrange
		model := NewModel("deadline")
		rects := squares(model, 30, 3, 60)
		model.AddNoOverlap2D(rects)
		objective := NewLinearExpr()
		for _, r := range rects {
			objective = objective.Add(r.X).Add(r.Y)
		}
		model.Maximize(objective)
		params := DefaultParameters()
		params.MaxTime = 100 * time.Millisecond
		params.Workers = 2

		// Act
		start := time.Now()
		response, err := NewNativeEngine().Solve(context.Background(), model, params)

		// Assert
		assert.NoError(t, err)
		assert.Less(t, time.Since(start), 5*time.Second)
		assert.Contains(t, []Status{Feasible, Optimal, Unknown}, response.Status)
	})

	t.Run("Cancellation is reported", func(t *testing.T) {
		// Arrange
		model := NewModel("cancel")
		model.AddNoOverlap2D(squares(model, 30, 3, 60))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// Act
		_, err := NewNativeEngine().Solve(ctx, model, DefaultParameters())

		// Assert
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Empty domain is a model error", func(t *testing.T) {
		// Arrange
		model := NewModel("empty")
		model.NewIntVar(3, 1, "x")

		// Act
		response, err := NewNativeEngine().Solve(context.Background(), model, DefaultParameters())

		// Assert
		assert.Error(t, err)
		assert.Equal(t, ModelInvalid, response.Status)
	})
}

func TestStatus(t *testing.T) {
	for _, status := range []Status{Unknown, ModelInvalid, Feasible, Infeasible, Optimal} {
		parsed, err := ParseStatus(status.String())
		assert.Nil(t, err)
		assert.Equal(t, status, parsed)
	}
	assert.True(t, Optimal.Feasible())
	assert.True(t, Feasible.Feasible())
	assert.False(t, Unknown.Feasible())
}
