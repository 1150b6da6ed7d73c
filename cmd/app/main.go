// Command app runs the desktop UI serving ./frontend from disk, for development.
package main

import (
	"video-compressor/internal/bootstrap"
	applog "video-compressor/internal/log"
)

func main() {
	app, err := bootstrap.New()
	if err != nil {
		applog.Base().Fatal().Err(err).Msg("bootstrap app")
	}

	if err := app.Run(); err != nil {
		applog.Base().Fatal().Err(err).Msg("run app")
	}
}
