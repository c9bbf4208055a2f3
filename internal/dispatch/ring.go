package dispatch

// errorWindow is a fixed-size ring of attempt outcomes. Only the most
// recent size outcomes count, so the failure budget is exhausted exactly
// when the last size attempts all failed.
type errorWindow struct {
	slots []bool
	pos   int
	sum   int
}

func newErrorWindow(size int) *errorWindow {
	if size <= 0 {
		size = 1
	}
	return &errorWindow{slots: make([]bool, size)}
}

// record pushes one attempt outcome, evicting the oldest.
func (w *errorWindow) record(failed bool) {
	if w.slots[w.pos] {
		w.sum--
	}
	w.slots[w.pos] = failed
	if failed {
		w.sum++
	}
	w.pos = (w.pos + 1) % len(w.slots)
}

// failures returns the number of failed attempts currently in the window.
func (w *errorWindow) failures() int {
	return w.sum
}

// exhausted reports whether every slot in the window holds a failure.
func (w *errorWindow) exhausted() bool {
	return w.sum >= len(w.slots)
}
