package anyvrp

import "log"

// A Logger receives status information produced while
// rolling out.
type Logger interface {
	// LogStep is called after every batched step with
	// the raw (unnormalized) rewards and the mean policy
	// entropy.
	LogStep(step int, rewards []float64, entropy float64)

	// LogWindow is called at the end of every rollout.
	LogWindow(r *RolloutResult)
}

// StandardLogger is a Logger which uses the log package.
//
// A Field of name <N> controls whether or not the Log<N>
// method does anything.
type StandardLogger struct {
	Step   bool
	Window bool
}

// LogStep logs the mean reward of a step.
func (s *StandardLogger) LogStep(step int, rewards []float64, entropy float64) {
	if s.Step {
		log.Printf("step %d: mean_reward=%f entropy=%f", step, meanOf(rewards), entropy)
	}
}

// LogWindow logs the summary of a rollout.
func (s *StandardLogger) LogWindow(r *RolloutResult) {
	if s.Window {
		log.Printf("rollout %s: samples=%d mean_reward=%f entropy=%f mean_cost=%f best_cost=%f",
			r.ID, len(r.Samples), r.MeanReward, r.MeanEntropy, r.MeanCost(), r.MeanBestCost())
	}
}

// MultiLogger forwards every call to each of its Loggers.
type MultiLogger []Logger

// LogStep calls LogStep on every Logger.
func (m MultiLogger) LogStep(step int, rewards []float64, entropy float64) {
	for _, l := range m {
		l.LogStep(step, rewards, entropy)
	}
}

// LogWindow calls LogWindow on every Logger.
func (m MultiLogger) LogWindow(r *RolloutResult) {
	for _, l := range m {
		l.LogWindow(r)
	}
}
