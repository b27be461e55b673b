package cp

import "slices"

type Term struct {
	Var  IntVar
	Coef int64
}

// LinearExpr is Σ Coef·Var + Offset. Every method returns a new expression.
type LinearExpr struct {
	Terms  []Term
	Offset int64
}

func NewLinearExpr() LinearExpr { return LinearExpr{} }

func Sum(vars ...IntVar) LinearExpr {
	terms := make([]Term, len(vars))
	for i, v := range vars {
		terms[i] = Term{v, 1}
	}
	return LinearExpr{Terms: terms}
}

func SumBools(bools ...BoolVar) LinearExpr {
	return Sum(Bools(bools...)...)
}

func Scaled(v IntVar, coef int64) LinearExpr {
	return NewLinearExpr().AddTerm(v, coef)
}

func Constant(value int64) LinearExpr {
	return LinearExpr{Offset: value}
}

func (e LinearExpr) Add(v IntVar) LinearExpr {
	return e.AddTerm(v, 1)
}

func (e LinearExpr) AddTerm(v IntVar, coef int64) LinearExpr {
	if coef == 0 {
		return e
	}
	terms := make([]Term, len(e.Terms), len(e.Terms)+1)
	copy(terms, e.Terms)
	return LinearExpr{Terms: append(terms, Term{v, coef}), Offset: e.Offset}
}

// AddLiteral adds coef when the literal is true: a negated literal contributes coef·(1-v).
func (e LinearExpr) AddLiteral(l Lit, coef int64) LinearExpr {
	lit := l.literal()
	if lit.Negated() {
		return e.AddTerm(lit.Var(), -coef).AddConstant(coef)
	}
	return e.AddTerm(lit.Var(), coef)
}

func (e LinearExpr) AddConstant(value int64) LinearExpr {
	return LinearExpr{Terms: e.Terms, Offset: e.Offset + value}
}

func (e LinearExpr) AddExpr(other LinearExpr) LinearExpr {
	terms := make([]Term, 0, len(e.Terms)+len(other.Terms))
	terms = append(terms, e.Terms...)
	terms = append(terms, other.Terms...)
	return LinearExpr{Terms: terms, Offset: e.Offset + other.Offset}
}

func (e LinearExpr) Sub(other LinearExpr) LinearExpr {
	return e.AddExpr(other.Scale(-1))
}

func (e LinearExpr) Scale(factor int64) LinearExpr {
	if factor == 0 {
		return LinearExpr{}
	}
	terms := slices.Clone(e.Terms)
	for i := range terms {
		terms[i].Coef *= factor
	}
	return LinearExpr{Terms: terms, Offset: e.Offset * factor}
}

// Evaluate computes the expression for a full assignment.
func (e LinearExpr) Evaluate(values []int64) int64 {
	value := e.Offset
	for _, term := range e.Terms {
		value += term.Coef * values[term.Var]
	}
	return value
}

// normalized merges repeated variables and drops zero coefficients.
func (e LinearExpr) normalized() LinearExpr {
	index := make(map[IntVar]int, len(e.Terms))
	terms := make([]Term, 0, len(e.Terms))
	for _, term := range e.Terms {
		if i, ok := index[term.Var]; ok {
			terms[i].Coef += term.Coef
			continue
		}
		index[term.Var] = len(terms)
		terms = append(terms, term)
	}
	terms = slices.DeleteFunc(terms, func(term Term) bool { return term.Coef == 0 })
	return LinearExpr{Terms: terms, Offset: e.Offset}
}
