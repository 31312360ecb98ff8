package cli

import (
	"context"
	"sort"
	"strconv"
	"strings"
)

// Stats prints the auth client's request counters and the circuit breaker
// state.
func (a *App) Stats(_ context.Context) error {
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}

	var lines []string
	for _, mf := range families {
		if mf.GetName() != "auth_client_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			lines = append(lines, "  "+strings.Join(labels, " ")+"  "+strconv.FormatFloat(m.GetCounter().GetValue(), 'f', -1, 64))
		}
	}
	sort.Strings(lines)

	a.println("Requests:")
	if len(lines) == 0 {
		a.println("  none yet")
	}
	for _, l := range lines {
		a.println(l)
	}
	a.println("Circuit breaker:", a.api.BreakerState().String())
	return nil
}
