package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jason-s-yu/quizboard/internal/auth"
	"github.com/jason-s-yu/quizboard/internal/game"
	"github.com/jason-s-yu/quizboard/internal/middleware"
	"github.com/sirupsen/logrus"
)

// outboundBuffer is how many events a console may lag behind before it is dropped.
const outboundBuffer = 64

// BoardServer exposes one board session to host consoles.
type BoardServer struct {
	Session *game.Session
	Auth    *auth.HostAuth
	Logger  logrus.FieldLogger

	mu      sync.Mutex
	clients map[*boardClient]struct{}
}

type boardClient struct {
	conn    *websocket.Conn
	out     chan []byte
	dropped chan struct{}
	once    sync.Once
}

// drop signals the write pump to close the connection as a slow consumer.
func (c *boardClient) drop() {
	c.once.Do(func() { close(c.dropped) })
}

// NewBoardServer registers itself as the session's broadcaster.
func NewBoardServer(sess *game.Session, hostAuth *auth.HostAuth, logger logrus.FieldLogger) *BoardServer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	bs := &BoardServer{
		Session: sess,
		Auth:    hostAuth,
		Logger:  logger,
		clients: make(map[*boardClient]struct{}),
	}
	sess.BroadcastFn = bs.broadcast
	return bs
}

// Routes builds the console router.
func (bs *BoardServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.LogMiddleware(bs.Logger))
	r.Use(chimw.Recoverer)

	r.Post("/host/login", bs.handleLogin)
	r.Get("/board/ws", BoardWSHandler(bs))

	r.Group(func(r chi.Router) {
		r.Use(bs.requireHost)
		r.Get("/board/state", bs.handleState)
		r.Get("/board/leaderboard", bs.handleLeaderboard)
		r.Get("/board/backup", bs.handleExportBackup)
		r.Post("/board/backup", bs.handleImportBackup)
	})
	return r
}

func (bs *BoardServer) requireHost(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := bs.Auth.Verify(requestToken(r)); err != nil {
			writeError(w, bs.Logger, http.StatusUnauthorized, "host login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (bs *BoardServer) addClient(c *boardClient) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.clients[c] = struct{}{}
}

func (bs *BoardServer) removeClient(c *boardClient) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	delete(bs.clients, c)
}

// clientCount is used by tests to wait for registration.
func (bs *BoardServer) clientCount() int {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return len(bs.clients)
}

// broadcast runs with the session lock held. It must never call back into
// the session and never block on a socket.
func (bs *BoardServer) broadcast(ev game.BoardEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		bs.Logger.WithError(err).WithField("event", ev.Type).Error("failed to marshal board event")
		return
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()
	for c := range bs.clients {
		select {
		case c.out <- data:
		default:
			bs.Logger.Warn("console outbound queue full, dropping connection")
			c.drop()
		}
	}
}
