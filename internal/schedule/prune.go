package schedule

// PruneEmptyWeeks removes whole weeks with no available slot from the
// half-open week range [startWeek, endWeek). Weeks outside the range are
// kept regardless, so the pickup calendar can keep its current week visible
// even when every slot in it has passed. The operation is idempotent.
func (g *Grid) PruneEmptyWeeks(startWeek, endWeek int) {
	weeks := len(g.Days) / daysPerWeek
	if startWeek < 0 {
		startWeek = 0
	}
	if endWeek > weeks {
		endWeek = weeks
	}
	kept := make([]Day, 0, len(g.Days))
	for week := 0; week < weeks; week++ {
		days := g.Days[week*daysPerWeek : (week+1)*daysPerWeek]
		if week >= startWeek && week < endWeek && weekEmpty(days) {
			continue
		}
		kept = append(kept, days...)
	}
	g.Days = kept
}

func weekEmpty(days []Day) bool {
	for _, day := range days {
		for _, s := range day.Slots {
			if s.Available {
				return false
			}
		}
	}
	return true
}
