package database

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// gooseLogger routes goose output through zerolog instead of the std logger.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	log.Info().Str("component", "migrate").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (gooseLogger) Fatalf(format string, v ...any) {
	log.Fatal().Str("component", "migrate").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
