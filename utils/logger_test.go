package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// recordingWALogger merekam pesan error yang lolos filter
type recordingWALogger struct {
	errors []string
}

func (r *recordingWALogger) Errorf(format string, args ...interface{}) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}
func (r *recordingWALogger) Warnf(format string, args ...interface{})  {}
func (r *recordingWALogger) Infof(format string, args ...interface{})  {}
func (r *recordingWALogger) Debugf(format string, args ...interface{}) {}
func (r *recordingWALogger) Sub(module string) waLog.Logger            { return r }

func TestFilteredLoggerMutesKnownNoise(t *testing.T) {
	sink := &recordingWALogger{}
	fl := &FilteredLogger{Logger: sink}

	// Noise berkala dari session yang sehat, tidak boleh sampai ke log
	fl.Errorf("Mismatching LTHash for group state update")
	fl.Errorf("Failed to sync app state: unknown mutation")
	fl.Errorf("Failed to send retry receipt for %s", "ABC123")
	assert.Empty(t, sink.errors)

	// Error lain tetap diteruskan apa adanya
	fl.Errorf("websocket closed unexpectedly: %v", "EOF")
	assert.Equal(t, []string{"websocket closed unexpectedly: EOF"}, sink.errors)
}

func TestFilteredLoggerSubKeepsFilter(t *testing.T) {
	sink := &recordingWALogger{}
	sub := (&FilteredLogger{Logger: sink}).Sub("Client")

	sub.Errorf("mismatching LTHash")
	assert.Empty(t, sink.errors)

	sub.Errorf("stream error")
	assert.Len(t, sink.errors, 1)
}
