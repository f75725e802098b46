package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"screensmith/mcpserver"
	_ "screensmith/shared"
)

func main() {
	if len(os.Args) < 2 {
		log.Error().Msg("usage: refmcp <accessible-root> [more-roots...]")
		os.Exit(1)
	}
	s, err := mcpserver.NewServer(os.Args[1:])
	if err != nil {
		log.Error().Err(err).Msg("Create server failed")
		os.Exit(1)
	}
	err = s.Run()
	if err != nil {
		log.Error().Err(err).Msg("Run server failed")
		os.Exit(1)
	}
}
