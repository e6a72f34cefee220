package ratelimit

import (
	"slices"
	"strconv"
	"time"
)

// window is one identity's accepted request times, oldest first.
type window struct {
	stamps []int64
	// pruned is set when parsing dropped stale or unparseable members.
	pruned bool
}

func parseWindow(members []string, nowMs int64, retention time.Duration) window {
	cutoff := nowMs - retention.Milliseconds()
	w := window{stamps: make([]int64, 0, len(members)+1)}
	for _, m := range members {
		ts, err := strconv.ParseInt(m, 10, 64)
		if err != nil || ts < cutoff {
			w.pruned = true
			continue
		}
		w.stamps = append(w.stamps, ts)
	}
	slices.Sort(w.stamps)
	return w
}

// since counts entries newer than cutoff and returns the oldest of them.
func (w window) since(cutoff int64) (count int, oldest int64) {
	i, _ := slices.BinarySearch(w.stamps, cutoff+1)
	if i == len(w.stamps) {
		return 0, 0
	}
	return len(w.stamps) - i, w.stamps[i]
}

// add records nowMs. Members form a set, so a request landing on an already
// used millisecond is recorded one millisecond after the newest entry.
func (w *window) add(nowMs int64) {
	ts := nowMs
	if n := len(w.stamps); n > 0 && w.stamps[n-1] >= ts {
		ts = w.stamps[n-1] + 1
	}
	w.stamps = append(w.stamps, ts)
}

func (w window) members() []string {
	out := make([]string, len(w.stamps))
	for i, ts := range w.stamps {
		out[i] = strconv.FormatInt(ts, 10)
	}
	return out
}
