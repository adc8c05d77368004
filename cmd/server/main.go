package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codingconcepts/env"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/subivo/gatehouse/internal/health"
	"github.com/subivo/gatehouse/internal/idp"
	"github.com/subivo/gatehouse/internal/logins"
	"github.com/subivo/gatehouse/internal/profile"
	"github.com/subivo/gatehouse/internal/server"
	"github.com/subivo/gatehouse/internal/session"
	"github.com/subivo/gatehouse/internal/store"
	"github.com/subivo/gatehouse/internal/token"
)

type Config struct {
	BindAddr   string `env:"BIND_ADDR"`
	ListenPort uint16 `env:"LISTEN_PORT" default:"5000"`

	CorsAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" default:"http://localhost:5173"`

	KeycloakTokenUrl     string `env:"KEYCLOAK_TOKEN_URL" default:"http://localhost:8080/realms/realm-adduser/protocol/openid-connect/token"`
	KeycloakClientId     string `env:"KEYCLOAK_CLIENT_ID" default:"adduser-client"`
	KeycloakClientSecret string `env:"KEYCLOAK_CLIENT_SECRET" required:"true"`

	BackendApiUrl   string `env:"BACKEND_API_URL" required:"true"`
	TokenSigningKey string `env:"TOKEN_SIGNING_KEY" required:"true"`

	// If unset, credential bundles are held in process memory and sessions
	// will not survive a restart
	RedisUrl string `env:"REDIS_URL"`

	// Login auditing is enabled only when a database is configured
	DatabaseHost     string `env:"PGHOST"`
	DatabasePort     int    `env:"PGPORT"`
	DatabaseName     string `env:"PGDATABASE"`
	DatabaseUser     string `env:"PGUSER"`
	DatabasePassword string `env:"PGPASSWORD"`
	DatabaseSslMode  string `env:"PGSSLMODE"`
}

func main() {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Fatalf("error loading .env file: %v", err)
	}
	config := Config{}
	if err := env.Set(&config); err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	ctx, close := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill, syscall.SIGTERM)
	defer close()

	idpClient := idp.NewClient(config.KeycloakTokenUrl, config.KeycloakClientId, config.KeycloakClientSecret)
	minter := token.NewMinter(config.TokenSigningKey)
	profileClient := profile.NewClient(config.BackendApiUrl, minter)

	var newStore server.StoreFactory
	if config.RedisUrl != "" {
		opts, err := redis.ParseURL(config.RedisUrl)
		if err != nil {
			log.Fatalf("error parsing REDIS_URL: %v", err)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("error connecting to redis: %v", err)
		}
		newStore = func(sessionID string) store.Store {
			return store.NewRedis(redisClient, sessionID)
		}
	} else {
		log.Printf("REDIS_URL is not set; sessions will not survive a restart")
		newStore = func(sessionID string) store.Store {
			return store.NewMemory()
		}
	}

	var audit session.Auditor
	if config.DatabaseHost != "" {
		connectionString := formatConnectionString(
			config.DatabaseHost,
			config.DatabasePort,
			config.DatabaseName,
			config.DatabaseUser,
			config.DatabasePassword,
			config.DatabaseSslMode,
		)
		db, err := sql.Open("postgres", connectionString)
		if err != nil {
			log.Fatalf("error opening database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Fatalf("error connecting to database: %v", err)
		}
		audit = logins.NewRecorder(db)
	} else {
		log.Printf("PGHOST is not set; login auditing is disabled")
	}

	r := mux.NewRouter()
	srv := server.NewServer(idpClient, profileClient, newStore, audit)
	srv.RegisterRoutes(r)
	r.Path("/health").Methods("GET").Handler(health.NewServer(
		pingUrl(config.KeycloakTokenUrl),
		pingUrl(config.BackendApiUrl),
	))

	withCors := cors.New(cors.Options{
		AllowedOrigins:   []string{config.CorsAllowedOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"content-type"},
		AllowCredentials: true,
	}).Handler(r)

	addr := fmt.Sprintf("%s:%d", config.BindAddr, config.ListenPort)
	httpServer := &http.Server{Addr: addr, Handler: withCors}

	fmt.Printf("Listening on %s...\n", addr)
	var wg errgroup.Group
	wg.Go(httpServer.ListenAndServe)

	select {
	case <-ctx.Done():
		fmt.Printf("Received signal; closing server...\n")
		httpServer.Shutdown(context.Background())
	}

	err = wg.Wait()
	if err == http.ErrServerClosed {
		fmt.Printf("Server closed.\n")
	} else {
		log.Fatalf("error running server: %v", err)
	}
}

// pingUrl builds a reachability check for a dependency: any response at all
// counts as reachable; only transport-level failures count against it.
func pingUrl(rawUrl string) health.PingFunc {
	httpClient := &http.Client{Timeout: 5 * time.Second}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawUrl, nil)
		if err != nil {
			return err
		}
		res, err := httpClient.Do(req)
		if err != nil {
			return err
		}
		res.Body.Close()
		return nil
	}
}

func formatConnectionString(host string, port int, dbname string, user string, password string, sslmode string) string {
	s := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s", host, port, dbname, user, password)
	if sslmode != "" {
		s += fmt.Sprintf(" sslmode=%s", sslmode)
	}
	return s
}
