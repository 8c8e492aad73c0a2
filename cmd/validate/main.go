// Command validate performs integrity checks on the built-in weather
// catalog: every village/season table present, required axes non-empty,
// sane weights, well-formed conditions, and ordered intensity lists.
//
// Usage:
//
//	go run ./cmd/validate
package main

import (
	"fmt"
	"os"

	"github.com/rootsofthewild/village-weather/internal/domain"
)

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	catalog := domain.DefaultCatalog()

	phases := []*phase{
		checkCoverage(catalog),
		checkWeights(catalog),
		checkConditions(catalog),
		checkOrdering(catalog),
		checkDuplicates(catalog),
	}

	failed := false
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		failed = true
		fmt.Printf("FAIL %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	if failed {
		os.Exit(1)
	}
	fmt.Println("catalog ok")
}

// checkCoverage verifies every village has every season, and every table
// has non-empty required axes. An empty special list is reported too: a
// season that never rolls specials should be an explicit decision.
func checkCoverage(catalog domain.Catalog) *phase {
	p := &phase{name: "coverage"}
	for _, v := range domain.Villages() {
		seasons, ok := catalog[v]
		if !ok {
			p.errorf("village %s missing from catalog", v)
			continue
		}
		for _, s := range domain.Seasons() {
			table, ok := seasons[s]
			if !ok {
				p.errorf("%s/%s missing", v, s)
				continue
			}
			if len(table.Temperatures) == 0 {
				p.errorf("%s/%s has no temperature candidates", v, s)
			}
			if len(table.Winds) == 0 {
				p.errorf("%s/%s has no wind candidates", v, s)
			}
			if len(table.Precipitation) == 0 {
				p.errorf("%s/%s has no precipitation candidates", v, s)
			}
			if len(table.Specials) == 0 {
				p.errorf("%s/%s has no special candidates", v, s)
			}
		}
	}
	return p
}

func checkWeights(catalog domain.Catalog) *phase {
	p := &phase{name: "weights"}
	forEachAxis(catalog, func(v domain.Village, s domain.Season, axis domain.Axis, cands []domain.Candidate) {
		var total float64
		for _, c := range cands {
			if c.Weight < 0 {
				p.errorf("%s/%s %s %q has negative weight %v", v, s, axis, c.Label, c.Weight)
			}
			total += c.Weight
		}
		if len(cands) > 0 && total <= 0 {
			p.errorf("%s/%s %s has non-positive total weight", v, s, axis)
		}
	})
	return p
}

func checkConditions(catalog domain.Catalog) *phase {
	p := &phase{name: "conditions"}
	forEachAxis(catalog, func(v domain.Village, s domain.Season, axis domain.Axis, cands []domain.Candidate) {
		for _, c := range cands {
			for _, cond := range c.Conditions {
				switch cond.Axis {
				case domain.AxisTemperature, domain.AxisWind:
					if cond.Op != domain.OpAtLeast && cond.Op != domain.OpAtMost {
						p.errorf("%s/%s %s %q: bad numeric op %q", v, s, axis, c.Label, cond.Op)
					}
				case domain.AxisPrecipitation:
					if cond.Op != domain.OpIs {
						p.errorf("%s/%s %s %q: precipitation condition must use label equality", v, s, axis, c.Label)
					}
					if cond.Label == "" {
						p.errorf("%s/%s %s %q: precipitation condition missing label", v, s, axis, c.Label)
					}
				default:
					p.errorf("%s/%s %s %q: bad condition axis %q", v, s, axis, c.Label, cond.Axis)
				}
			}
		}
	})
	return p
}

// checkOrdering verifies temperature and wind lists ascend by value, which
// the adjacency smoother depends on.
func checkOrdering(catalog domain.Catalog) *phase {
	p := &phase{name: "ordering"}
	forEachTable(catalog, func(v domain.Village, s domain.Season, table domain.SeasonTable) {
		for i := 1; i < len(table.Temperatures); i++ {
			if table.Temperatures[i].Value <= table.Temperatures[i-1].Value {
				p.errorf("%s/%s temperatures not ascending at %q", v, s, table.Temperatures[i].Label)
			}
		}
		for i := 1; i < len(table.Winds); i++ {
			if table.Winds[i].Value <= table.Winds[i-1].Value {
				p.errorf("%s/%s winds not ascending at %q", v, s, table.Winds[i].Label)
			}
		}
	})
	return p
}

func checkDuplicates(catalog domain.Catalog) *phase {
	p := &phase{name: "duplicates"}
	forEachAxis(catalog, func(v domain.Village, s domain.Season, axis domain.Axis, cands []domain.Candidate) {
		seen := make(map[string]bool, len(cands))
		for _, c := range cands {
			if seen[c.Label] {
				p.errorf("%s/%s %s has duplicate label %q", v, s, axis, c.Label)
			}
			seen[c.Label] = true
		}
	})
	return p
}

func forEachTable(catalog domain.Catalog, fn func(domain.Village, domain.Season, domain.SeasonTable)) {
	for _, v := range domain.Villages() {
		for _, s := range domain.Seasons() {
			if table, ok := catalog[v][s]; ok {
				fn(v, s, table)
			}
		}
	}
}

func forEachAxis(catalog domain.Catalog, fn func(domain.Village, domain.Season, domain.Axis, []domain.Candidate)) {
	forEachTable(catalog, func(v domain.Village, s domain.Season, table domain.SeasonTable) {
		fn(v, s, domain.AxisTemperature, table.Temperatures)
		fn(v, s, domain.AxisWind, table.Winds)
		fn(v, s, domain.AxisPrecipitation, table.Precipitation)
		fn(v, s, domain.AxisSpecial, table.Specials)
	})
}
