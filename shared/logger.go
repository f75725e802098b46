package shared

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
		return
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
		FormatCaller: func(i interface{}) string {
			path := i.(string)
			relPath, err := filepath.Rel(wd, path)
			if err != nil {
				relPath = path
			}
			return fmt.Sprintf("[%s]", relPath)
		},
		NoColor: false,
	}
	log.Logger = zerolog.New(consoleWriter).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Caller().
		Logger()
}
