package main

import (
	"net/http"

	"github.com/matryer/way"
)

const (
	URI_ROOT   = "/"
	URI_HEALTH = "/healthz"
	URI_WS     = "/play"
)

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", URI_ROOT, plainText("pong-server-ok"))
	s.router.HandleFunc("GET", URI_HEALTH, plainText("ok"))
	s.router.HandleFunc("GET", URI_WS, s.GameServer.HandleHttpCall())
}

func plainText(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}
}
