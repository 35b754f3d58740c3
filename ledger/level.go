package ledger

// LevelFor returns how many thresholds are at or below points.
// Thresholds must ascend from 0, so any non-negative points yield at least level 1.
func LevelFor(points int, thresholds []int) int {
	level := 0
	for _, t := range thresholds {
		if t > points {
			break
		}
		level++
	}
	if level == 0 {
		return 1
	}
	return level
}

// nextThreshold returns the points needed for the level after level, or the
// top threshold once the table is exhausted.
func nextThreshold(level int, thresholds []int) (int, bool) {
	if len(thresholds) == 0 {
		return 0, true
	}
	if level < len(thresholds) {
		return thresholds[level], false
	}
	return thresholds[len(thresholds)-1], true
}

func progressPercent(points, next int) int {
	if next <= 0 {
		return 100
	}
	p := 100 * points / next
	return min(100, max(0, p))
}
