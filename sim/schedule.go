package sim

import (
	"fmt"
	"strconv"
	"strings"
)

// Schedule is an ordered sequence of tick segments.  Proc state persists
// across the ticks of one segment and resets to its initializer at each
// segment boundary; channel queues are continuous across the whole
// schedule.
type Schedule []int

// ParseSchedule parses the comma-separated segment form, e.g. "2" or "1,1".
func ParseSchedule(s string) (Schedule, error) {
	parts := strings.Split(s, ",")
	sched := make(Schedule, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid tick segment %q in schedule %q", p, s)
		}
		sched = append(sched, n)
	}
	return sched, nil
}

// TotalTicks is the sum of all segment lengths.
func (s Schedule) TotalTicks() (total int) {
	for _, n := range s {
		total += n
	}
	return total
}

func (s Schedule) String() string {
	parts := make([]string, len(s))
	for i, n := range s {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
