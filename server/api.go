package server

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto"
	"encoding/json"
	"fmt"
	"github.com/dgrijalva/jwt-go"
	"github.com/globalsign/mgo"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"net"
	"net/http"
	"strings"
)

type ctxUserIDKey struct{}

type Server struct {
	grpcServer *grpc.Server
	healthServer *health.Server
	httpServer *http.Server
	config *Config
	db *mgo.Session
	gameHolder *GameHolder
	leaderboard *Leaderboard
	logger *Logger
}

func (s *Server) Stop() {
	s.healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	if err := s.httpServer.Shutdown(context.Background()); err != nil {
		s.logger.Errorw("Couldn't shutdown http server", "error", err)
	}

	s.grpcServer.GracefulStop()
}

func StartServer(sessionHolder *SessionHolder, gameHolder *GameHolder, config *Config, db *mgo.Session, pipeline *Pipeline, leaderboard *Leaderboard, stats *Stats, logger *Logger) *Server {

	port := config.Port

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	s := &Server{
		grpcServer: grpcServer,
		healthServer: healthServer,
		config: config,
		db: db,
		gameHolder: gameHolder,
		leaderboard: leaderboard,
		logger: logger,
	}

	logger.Infof("Starting server for gRPC requests on port %d", port-1)
	go func() {
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port-1))
		if err != nil {
			logger.Fatalw("Error while creating listener for gRPC server", "error", err)
		}
		if err := grpcServer.Serve(listener); err != nil && err != grpc.ErrServerStopped {
			logger.Fatalw("Error while binding listener to gRPC server", "error", err)
		}
	}()

	router := mux.NewRouter()
	// Special case routes. Do NOT enable compression on WebSocket route, it results in "http: response.Write on hijacked connection" errors.
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) }).Methods("GET")
	router.HandleFunc("/ws", NewSocketAcceptor(sessionHolder, config, gameHolder, pipeline, stats, logger)).Methods("GET")
	router.Handle("/metrics", stats.Handler()).Methods("GET")

	router.Handle("/v1/account/fingerprint", decompressHandler(http.HandlerFunc(s.AuthenticateFingerprintHandler))).Methods("POST")
	router.Handle("/v1/matches", s.authenticated(decompressHandler(http.HandlerFunc(s.ListMatches)))).Methods("GET")
	router.Handle("/v1/leaderboard", s.authenticated(decompressHandler(http.HandlerFunc(s.GetLeaderboard)))).Methods("GET")

	// Enable CORS on all requests.
	CORSHeaders := handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "User-Agent"})
	CORSOrigins := handlers.AllowedOrigins([]string{"*"})
	CORSMethods := handlers.AllowedMethods([]string{"GET", "HEAD", "POST", "PUT", "DELETE"})
	handlerWithCORS := handlers.CORS(CORSHeaders, CORSOrigins, CORSMethods)(router)

	s.httpServer = &http.Server{
		MaxHeaderBytes: 5120,
		Handler: handlerWithCORS,
	}

	logger.Infof("Starting server for HTTP requests on port %d", port)
	go func() {
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			logger.Fatalw("Error while creating listener for http server", "error", err)
		}
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("Error while serving http server", "error", err)
		}
	}()

	return s

}

//authenticated lets requests through only with a valid bearer token
func (s *Server) authenticated(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _, _, ok := parseBearerAuth([]byte(s.config.AuthConfig.JWTSecret), r.Header.Get("Authorization"))
		if !ok {
			writeJSON(w, http.StatusUnauthorized, &Error{Code: ERROR_BAD_INPUT, Message: "Auth token invalid"})
			return
		}
		h.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserIDKey{}, userID)))
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func parseBearerAuth(hmacSecretByte []byte, auth string) (userID string, username string, exp int64, ok bool) {
	if auth == "" {
		return
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return
	}
	return parseToken(hmacSecretByte, string(auth[len(prefix):]))
}

func parseToken(hmacSecretByte []byte, tokenString string) (userID string, username string, exp int64, ok bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if s, ok := token.Method.(*jwt.SigningMethodHMAC); !ok || s.Hash != crypto.SHA256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return hmacSecretByte, nil
	})
	if err != nil {
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", 0, false
	}
	userID, ok = claims["uid"].(string)
	if !ok {
		return
	}
	username, _ = claims["usn"].(string)
	expiry, ok := claims["exp"].(float64)
	if !ok {
		return "", "", 0, false
	}
	return userID, username, int64(expiry), true
}

//ConnectDB returns nil session when mongo is not configured
func ConnectDB(config *Config) (*mgo.Session, error) {
	if config.DBConfig.ConnString == "" {
		return nil, nil
	}
	conn, err := mgo.Dial(config.DBConfig.ConnString)
	if err != nil {
		return nil, errors.Wrap(err, "Cannot dial mongo")
	}
	return conn, nil
}

func decompressHandler(h http.Handler) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Content-Encoding") {
		case "gzip":
			gr, err := gzip.NewReader(r.Body)
			if err != nil {
				break
			}
			r.Body = gr
		case "deflate":
			r.Body = flate.NewReader(r.Body)
		default:
			// No request compression.
		}
		h.ServeHTTP(w, r)
	})
}
