package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"

	"github.com/Shahrukh-jamil/pong/server"
)

type Server struct {
	router     *way.Router
	GameServer *server.GameServer
}

func main() {
	// optional .env, absence is fine
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded .env")
	}

	srv := Server{
		GameServer: server.NewGameServer(),
	}
	go srv.GameServer.LoopKeepAlive()
	srv.routes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
		log.Printf("Defaulting to port %s", port)
	}

	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: srv.router,
	}
	go func() {
		log.Printf("pong server listening on :%s", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalln(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Printf("shutting down")
	srv.GameServer.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Warnf("http shutdown err %v", err)
	}
}
