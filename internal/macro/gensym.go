package macro

import (
	"strconv"
	"sync"
)

// gensymCounter produces a fresh symbol per expansion site (4.C). Counting
// is process-wide, mirroring the teacher's global renamer.NumberRenamer
// counter in spirit: deterministic, monotonic, never reused.
var gensymCounter struct {
	mu sync.Mutex
	n  int
}

func gensym(prefix string) string {
	gensymCounter.mu.Lock()
	gensymCounter.n++
	n := gensymCounter.n
	gensymCounter.mu.Unlock()
	if prefix == "" {
		prefix = "G"
	}
	return prefix + "__" + strconv.Itoa(n)
}

// resetGensymCounter restarts numbering from zero. Nothing calls it:
// ResetRuntime leaves the counter running, so generated names are never
// reused within a process.
func resetGensymCounter() {
	gensymCounter.mu.Lock()
	gensymCounter.n = 0
	gensymCounter.mu.Unlock()
}
