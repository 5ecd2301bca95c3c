package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/michat/michat-api/api"
	"github.com/michat/michat-api/api/scheduler"
	"github.com/michat/michat-api/cache"
	"github.com/michat/michat-api/config"
	"github.com/michat/michat-api/databases"
	"github.com/michat/michat-api/models"
	"github.com/michat/michat-api/realtime"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Scheduler *scheduler.Scheduler

	dbHelper   databases.DatabaseHelper
	userCache  cache.Cache
	registry   *realtime.Registry
	chatRouter *realtime.Router
	userLoader *realtime.CachedUserLoader
	auth       api.Auth
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	counterDB := databases.NewCounterDatabase(a.dbHelper)
	userDB := databases.NewUserDatabase(a.dbHelper, counterDB)
	messageDB := databases.NewMessageDatabase(a.dbHelper, counterDB)
	tokenDB := databases.NewTokenDatabase(a.dbHelper)

	issuer := api.TokenIssuer{Secret: []byte(a.Config.JWTSecret)}
	a.auth = api.Auth{Users: userDB, Tokens: tokenDB, Issuer: issuer}

	a.userLoader = realtime.NewCachedUserLoader(userDB, a.userCache)
	a.registry = realtime.NewRegistry()
	a.chatRouter = realtime.NewRouter(a.userLoader, messageDB, a.registry)

	u := User{DB: userDB, TDB: tokenDB, Issuer: issuer, Conf: a.Config}
	adm := Admin{DB: userDB, TDB: tokenDB, Loader: a.userLoader, Registry: a.registry}
	msg := Message{DB: messageDB, Chat: a.chatRouter}
	sock := Socket{Auth: a.auth, Chat: a.chatRouter}

	r := mux.NewRouter()

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	r.Handle("/register", http.HandlerFunc(u.RegisterHandler)).Methods("POST")
	r.Handle("/login", http.HandlerFunc(u.LoginHandler)).Methods("POST")
	r.Handle("/me", a.auth.Middleware(http.HandlerFunc(u.MeHandler))).Methods("GET")
	r.Handle("/users", a.auth.Middleware(http.HandlerFunc(u.ListUsersHandler))).Methods("GET")

	// global feed is public, matching the observed client behavior
	r.Handle("/messages", http.HandlerFunc(msg.GlobalMessagesHandler)).Methods("GET")
	r.Handle("/messages", a.auth.Middleware(http.HandlerFunc(msg.SendMessageHandler))).Methods("POST")
	r.Handle("/private/messages", a.auth.Middleware(http.HandlerFunc(msg.PrivateMessagesHandler))).Methods("GET")

	r.Handle("/admin/users", a.auth.Middleware(http.HandlerFunc(adm.ListUsersHandler))).Methods("GET")
	r.Handle("/admin/users/{user_id}/mute", a.auth.Middleware(http.HandlerFunc(adm.MuteHandler))).Methods("POST")
	r.Handle("/admin/users/{user_id}/unmute", a.auth.Middleware(http.HandlerFunc(adm.UnmuteHandler))).Methods("POST")
	r.Handle("/admin/users/{user_id}/ban", a.auth.Middleware(http.HandlerFunc(adm.BanHandler))).Methods("POST")
	r.Handle("/admin/users/{user_id}/unban", a.auth.Middleware(http.HandlerFunc(adm.UnbanHandler))).Methods("POST")
	r.Handle("/users/{user_id}", a.auth.Middleware(http.HandlerFunc(adm.DeleteUserHandler))).Methods("DELETE")

	r.HandleFunc("/ws", sock.ServeWS)

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect(nil)
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("michat-api has connected to the database")

	if a.Config.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(a.Config.RedisURL)
		if err != nil {
			zap.S().With(err).Error("failed to connect to redis")
			return err
		}
		a.userCache = redisCache
	} else {
		zap.S().Info("REDIS_URL not set, using in-process user cache")
		a.userCache = cache.NewMemoryCache()
	}

	// initialize api router
	a.initializeRoutes()

	// bootstrap the admin account before accepting traffic
	u := User{
		DB:     databases.NewUserDatabase(a.dbHelper, databases.NewCounterDatabase(a.dbHelper)),
		Conf:   a.Config,
		Issuer: api.TokenIssuer{Secret: []byte(a.Config.JWTSecret)},
	}
	if err := u.EnsureAdmin(); err != nil {
		zap.S().With(err).Error("failed to bootstrap admin user")
		return err
	}

	a.Scheduler = scheduler.NewScheduler(databases.NewTokenDatabase(a.dbHelper))
	a.Scheduler.Start()

	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
