package commentary

// ExecutionPhase is the visualization state of one workflow run.
type ExecutionPhase string

const (
	PhasePreExecution   ExecutionPhase = "pre_execution"
	PhaseInitializing   ExecutionPhase = "initializing"
	PhaseRunning        ExecutionPhase = "running"
	PhaseStepTransition ExecutionPhase = "step_transition"
	PhaseWaitingInput   ExecutionPhase = "waiting_input"
	PhaseErrorHandling  ExecutionPhase = "error_handling"
	PhaseCleanup        ExecutionPhase = "cleanup"
	PhaseCompleted      ExecutionPhase = "completed"
	PhaseCancelled      ExecutionPhase = "cancelled"
)

// transitions is the legal phase graph. CANCELLED is reachable from any
// non-terminal phase and handled separately.
var transitions = map[ExecutionPhase][]ExecutionPhase{
	PhasePreExecution:   {PhaseInitializing},
	PhaseInitializing:   {PhaseRunning},
	PhaseRunning:        {PhaseStepTransition, PhaseWaitingInput, PhaseErrorHandling, PhaseCleanup},
	PhaseStepTransition: {PhaseRunning, PhaseWaitingInput, PhaseErrorHandling},
	PhaseWaitingInput:   {PhaseRunning},
	PhaseErrorHandling:  {PhaseRunning, PhaseCleanup},
	PhaseCleanup:        {PhaseCompleted},
	PhaseCompleted:      {},
	PhaseCancelled:      {},
}

// Terminal reports whether no further transitions are legal.
func (p ExecutionPhase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseCancelled
}

// CanTransition reports whether a single step from p to next is legal.
func (p ExecutionPhase) CanTransition(next ExecutionPhase) bool {
	if next == PhaseCancelled {
		return !p.Terminal()
	}
	for _, candidate := range transitions[p] {
		if candidate == next {
			return true
		}
	}
	return false
}

// pathTo finds the shortest legal transition path from p to target,
// excluding p itself. Returns nil when the target is unreachable. The
// phase graph is tiny, so a breadth-first walk is plenty.
func (p ExecutionPhase) pathTo(target ExecutionPhase) []ExecutionPhase {
	if p == target {
		return []ExecutionPhase{}
	}
	if target == PhaseCancelled {
		if p.Terminal() {
			return nil
		}
		return []ExecutionPhase{PhaseCancelled}
	}

	type walk struct {
		phase ExecutionPhase
		path  []ExecutionPhase
	}
	visited := map[ExecutionPhase]bool{p: true}
	queue := []walk{{phase: p}}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range transitions[current.phase] {
			if visited[next] {
				continue
			}
			path := append(append([]ExecutionPhase{}, current.path...), next)
			if next == target {
				return path
			}
			visited[next] = true
			queue = append(queue, walk{phase: next, path: path})
		}
	}
	return nil
}
