package crowd

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum active-agent count for parallel
// stepping. Below this, single-threaded is faster than the goroutine
// handoff.
const parallelThreshold = 64

// intent holds one agent's integrated results, applied to the store
// after the compute phase.
type intent struct {
	Slot int
	Acc  Vec3
	Vel  Vec3
	Pos  Vec3
}

// workChunk is a snapshot index range for one worker.
type workChunk struct {
	start, end int
	dt         float32
}

// stepState holds the reusable tick buffers and the persistent worker
// pool.
type stepState struct {
	snapshots  []agentSnapshot
	intents    []intent
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal chunk completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true while workers are up

	// Per-tick inputs, set before dispatch and read-only during it.
	params    SteerParams
	leader    Vec3
	attractor Vec3
}

func newStepState() *stepState {
	return &stepState{
		numWorkers: runtime.GOMAXPROCS(0),
		snapshots:  make([]agentSnapshot, 0, 512),
		intents:    make([]intent, 0, 512),
	}
}

// startWorkers launches the persistent worker goroutines.
func (st *stepState) startWorkers() {
	if st.running {
		return
	}

	st.workChan = make(chan workChunk, st.numWorkers)
	st.doneChan = make(chan struct{}, st.numWorkers)
	st.stopChan = make(chan struct{})
	st.running = true

	for i := 0; i < st.numWorkers; i++ {
		st.wg.Add(1)
		go st.worker()
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (st *stepState) stopWorkers() {
	if !st.running {
		return
	}

	close(st.stopChan)
	st.wg.Wait()
	close(st.workChan)
	close(st.doneChan)
	st.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (st *stepState) worker() {
	defer st.wg.Done()

	for {
		select {
		case <-st.stopChan:
			return
		case chunk, ok := <-st.workChan:
			if !ok {
				return
			}
			st.computeChunk(chunk.start, chunk.end, chunk.dt)
			st.doneChan <- struct{}{}
		}
	}
}

// computeChunk runs the kernel and integration for snapshot indices
// [i0, i1). It reads only the snapshot and writes only its own intent
// slots, so results are identical however the range is split across
// workers.
func (st *stepState) computeChunk(i0, i1 int, dt float32) {
	p := st.params

	for i := i0; i < i1; i++ {
		snap := &st.snapshots[i]

		acc := steerAgent(i, st.snapshots, p, st.leader, st.attractor)

		// Velocity carries direction in this model: any agent with
		// acceleration history moves at exactly the configured speed.
		vel := snap.Vel.Add(acc.Scale(dt))
		if !vel.IsZero() {
			vel = vel.Normalized().Scale(p.Speed)
		}
		pos := snap.Pos.Add(vel.Scale(dt))

		st.intents[i] = intent{Slot: snap.Slot, Acc: acc, Vel: vel, Pos: pos}
	}
}

// computeParallel dispatches the snapshot range to the worker pool in
// contiguous chunks and waits for all of them.
func (st *stepState) computeParallel(n int, dt float32) {
	if !st.running {
		st.startWorkers()
	}

	chunkSize := (n + st.numWorkers - 1) / st.numWorkers

	dispatched := 0
	for w := 0; w < st.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		st.workChan <- workChunk{start: start, end: end, dt: dt}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-st.doneChan
	}
}
