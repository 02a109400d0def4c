package routing

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"authserver/pkg/auth"
	"authserver/pkg/credentials"
	"authserver/pkg/handlers"
	"authserver/pkg/session"
)

func InitRoutes(r *mux.Router, creds credentials.Source, registry *session.Registry, logger *slog.Logger) {

	verifier := credentials.NewVerifier(creds)
	service := auth.NewService(verifier, registry)
	authHandler := handlers.NewAuthHandler(service, logger)

	/* -+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+ */

	r.HandleFunc("/", authHandler.Health).Methods("GET").Name("health")

	/* session lifecycle routers */
	r.HandleFunc("/auth", authHandler.Auth).Methods("GET", "POST").Name("auth")
	r.HandleFunc("/check", authHandler.Check).Methods("GET").Name("check")
	r.HandleFunc("/touch", authHandler.Touch).Methods("POST").Name("touch")
	r.HandleFunc("/logout", authHandler.Logout).Methods("GET", "POST").Name("logout")
}

func StartServer(r *mux.Router, addr string) {
	fmt.Println("\n\033[32m", "The auth server is running on "+addr, "\033[0m")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal("Server failed:", err)
	}
}
