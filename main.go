/*
Vesta draws instanced geometry with Vulkan. The testbed package provides
the demo scene.
*/
package main

import (
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/vesta/engine"
	"github.com/spaghettifunk/vesta/engine/core"
	"github.com/spaghettifunk/vesta/testbed"
)

func main() {
	configPath := flag.String("config", "config.toml", "TOML or YAML application config")
	flag.Parse()

	config := engine.DefaultApplicationConfig()
	if _, err := os.Stat(*configPath); err == nil {
		config, err = engine.LoadApplicationConfig(*configPath)
		if err != nil {
			os.Exit(1)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		core.LogFatal(err.Error())
	}

	tb := testbed.NewTestGame(config)

	e, err := engine.New(tb.Game)
	if err != nil {
		os.Exit(1)
	}

	if err := e.Initialize(); err != nil {
		shutdown(e)
		os.Exit(1)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		<-sigCh
		e.Stop()
	}()

	runErr := e.Run()
	shutdown(e)
	if runErr != nil {
		os.Exit(1)
	}
}

// shutdown releases the engine and logs the failure, if any. Returns
// whether shutdown was clean.
func shutdown(e interface{ Shutdown() error }) bool {
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown failed: %s", err)
		return false
	}
	return true
}
