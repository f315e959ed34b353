// Package zlog logs the runtime's observer events with zerolog.
package zlog

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/NetPo4ki/go-nursery/task"
)

// Observer implements async.Observer by emitting structured log events.
type Observer struct {
	log zerolog.Logger
}

// New wraps an existing logger.
func New(log zerolog.Logger) *Observer {
	return &Observer{log: log}
}

// NewConsole builds an observer with a console writer, for demos and local
// debugging.
func NewConsole() *Observer {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return New(zerolog.New(output).With().Timestamp().Str("app", "nursery").Logger())
}

func (o *Observer) TaskStarted(id uint64) {
	o.log.Debug().Uint64("task", id).Msg("task started")
}

func (o *Observer) TaskFinished(id uint64, dur time.Duration, state task.State, err error) {
	ev := o.log.Debug().Uint64("task", id).Dur("dur", dur).Str("state", state.String())
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("task finished")
}

func (o *Observer) TaskDropped(id uint64) {
	o.log.Warn().Uint64("task", id).Msg("detached task dropped at admission")
}

func (o *Observer) CancelRequested(id uint64, reason task.Reason) {
	o.log.Debug().Uint64("task", id).Str("reason", reason.String()).Msg("cancellation requested")
}

func (o *Observer) NurseryOpened(id, mode string) {
	o.log.Debug().Str("nursery", id).Str("mode", mode).Msg("nursery opened")
}

func (o *Observer) NurseryClosed(id string, dur time.Duration) {
	o.log.Debug().Str("nursery", id).Dur("dur", dur).Msg("nursery closed")
}
