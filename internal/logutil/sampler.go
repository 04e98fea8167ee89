package logutil

import (
	"github.com/rs/zerolog"
)

// LevelSampler keeps events at or above Level, so debug logs of the command
// line tools only show up when asked for.
type LevelSampler struct {
	Level zerolog.Level
}

func (l LevelSampler) Sample(lvl zerolog.Level) bool {
	return lvl >= l.Level
}
