package trial

import "log"

// Reporter receives the results of a trial for the tuning controller.
type Reporter interface {
	ReportIntermediate(value float64) error
	ReportFinal(value float64) error
}

// LogReporter reports to a logger, for runs without a tuning controller.
type LogReporter struct {
	Logger *log.Logger
}

func (r LogReporter) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

func (r LogReporter) ReportIntermediate(value float64) error {
	r.logger().Printf("intermediate result: %.2f", value)
	return nil
}

func (r LogReporter) ReportFinal(value float64) error {
	r.logger().Printf("final result: %.2f", value)
	return nil
}

// SearchSpaceDue reports whether the trial with the given sequence number
// should refresh the search space, which happens every every trials after
// the first.
func SearchSpaceDue(sequenceID, every int) bool {
	return every > 0 && sequenceID > 0 && sequenceID%every == 0
}
