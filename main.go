/*
Tessera sandbox application. Loads the TOML configuration, boots the
engine and runs the testbed model viewer.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/tessera/engine"
	"github.com/spaghettifunk/tessera/engine/config"
	"github.com/spaghettifunk/tessera/testbed"
)

func main() {
	configPath := flag.String("config", "tessera.toml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	game := testbed.NewGame()

	eng, err := engine.New(cfg, game)
	if err != nil {
		panic(err)
	}

	if err := eng.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		<-sigCh
		_ = eng.Shutdown()
	}()

	if err := eng.Run(); err != nil {
		panic(err)
	}
}
