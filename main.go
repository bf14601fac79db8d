package main

import (
	"github.com/rs/zerolog/log"

	"github.com/signalnine/mapfbench/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("mapfbench failed")
	}
}
