package core

import log "github.com/sirupsen/logrus"

// logEventSink is the default EventSink: one structured log line per event,
// matching the teacher's convention of logging lifecycle transitions via
// logrus (core/ledger.go's logrus.Infof on genesis/block application).
type logEventSink struct{}

// NewLogEventSink returns the default EventSink used when no other sink is
// configured on a Store.
func NewLogEventSink() EventSink { return logEventSink{} }

func (logEventSink) Emit(event string, payload any) {
	logger().WithFields(log.Fields{
		"event": event,
	}).Info(payload)
}
