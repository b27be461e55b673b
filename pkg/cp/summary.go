package cp

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// ModelStats counts variables and constraints of a Model by kind.
type ModelStats struct {
	Variables   int
	Booleans    int
	Constraints map[string]int
	Strategies  int
	Objective   bool
}

func (m *Model) Stats() ModelStats {
	return ModelStats{
		Variables: len(m.domains),
		Booleans: lo.CountBy(m.domains, func(d domain) bool {
			return d.lo == 0 && d.hi == 1
		}),
		Constraints: lo.CountValuesBy(m.constraints, func(c *Constraint) string {
			return c.kind
		}),
		Strategies: len(m.strategies),
		Objective:  m.objective != nil,
	}
}

// WriteSummary writes a plain-text dump of the model, one line per variable group
// and constraint kind, headed by a "p cp <variables> <constraints>" line.
func (m *Model) WriteSummary(w io.Writer) error {
	stats := m.Stats()
	var builder strings.Builder
	fmt.Fprintf(&builder, "c model %s\n", m.name)
	fmt.Fprintf(&builder, "p cp %d %d\n", stats.Variables, len(m.constraints))
	fmt.Fprintf(&builder, "v booleans %d\n", stats.Booleans)
	kinds := lo.Keys(stats.Constraints)
	slices.Sort(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(&builder, "k %s %d\n", kind, stats.Constraints[kind])
	}
	fmt.Fprintf(&builder, "s strategies %d\n", stats.Strategies)
	if m.objective != nil {
		sense := "max"
		if m.minimize {
			sense = "min"
		}
		fmt.Fprintf(&builder, "o %s %d terms\n", sense, len(m.objective.Terms))
	}
	_, err := io.WriteString(w, builder.String())
	return err
}
