package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-oauth-bridge/connector"
	"github.com/jrsteele09/go-oauth-bridge/gateway"
	"github.com/jrsteele09/go-oauth-bridge/gateway/webapi"
	"github.com/jrsteele09/go-oauth-bridge/internal/config"
	"github.com/jrsteele09/go-oauth-bridge/provider"
	"github.com/jrsteele09/go-oauth-bridge/server"
	"github.com/jrsteele09/go-oauth-bridge/server/websession"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	providerClient, err := provider.New(context.Background(), c)
	if err != nil {
		return fmt.Errorf("provider.New %w", err)
	}

	accounts := gateway.NewAccounts(func() gateway.Gateway { return webapi.New(c) }, c)
	connectorFactory := func() connector.Connector { return connector.NewWebConnector(c) }

	bridge := server.New(c, providerClient, accounts, connectorFactory, websession.NewInMemoryRepo())

	httpServer := &http.Server{Addr: c.GetPort(), Handler: bridge}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
