package annotation

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	workspaceCookie = "parelha_ws"
	workspaceIdle   = 12 * time.Hour
)

type contextKey string

const workspaceKey contextKey = "workspace"

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// Notice is a transient message shown to one browser
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Workspace is the state of one browser: its open task and its notices
type Workspace struct {
	ID     string
	Walker *Walker

	store     *Workspaces
	noticeTTL time.Duration
	signedIn  bool
}

// SignIn marks the browser as the one that logged the session in
func (ws *Workspace) SignIn() {
	ws.store.mu.Lock()
	defer ws.store.mu.Unlock()
	ws.signedIn = true
}

// SignedIn reports whether this browser may act for the session
func (ws *Workspace) SignedIn() bool {
	ws.store.mu.Lock()
	defer ws.store.mu.Unlock()
	return ws.signedIn
}

// Notify queues a notice that disappears after the notice TTL
func (ws *Workspace) Notify(kind NoticeKind, message string) {
	ws.store.mu.Lock()
	defer ws.store.mu.Unlock()
	var notices []Notice
	if v, ok := ws.store.notices.Get(ws.ID); ok {
		notices = v.([]Notice)
	}
	notices = append(notices, Notice{Kind: kind, Message: message})
	ws.store.notices.Set(ws.ID, notices, ws.noticeTTL)
}

// Notices returns the notices that have not expired yet
func (ws *Workspace) Notices() []Notice {
	ws.store.mu.Lock()
	defer ws.store.mu.Unlock()
	if v, ok := ws.store.notices.Get(ws.ID); ok {
		return append([]Notice(nil), v.([]Notice)...)
	}
	return nil
}

// Workspaces keeps one Workspace per browser, dropped after half a day of idling
type Workspaces struct {
	mu        sync.Mutex
	items     *cache.Cache
	notices   *cache.Cache
	noticeTTL time.Duration
	newWalker func() *Walker
}

func NewWorkspaces(noticeTTL time.Duration, newWalker func() *Walker) *Workspaces {
	return &Workspaces{
		items:     cache.New(workspaceIdle, time.Hour),
		notices:   cache.New(noticeTTL, time.Minute),
		noticeTTL: noticeTTL,
		newWalker: newWalker,
	}
}

// Get returns the workspace of id, creating it when needed
func (s *Workspaces) Get(id string) *Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.items.Get(id); ok {
		ws := v.(*Workspace)
		s.items.SetDefault(id, ws)
		return ws
	}
	ws := &Workspace{ID: id, Walker: s.newWalker(), store: s, noticeTTL: s.noticeTTL}
	s.items.SetDefault(id, ws)
	return ws
}

// Reset forgets every workspace, used when the session ends
func (s *Workspaces) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items.Flush()
	s.notices.Flush()
}

func WithWorkspace(ctx context.Context, ws *Workspace) context.Context {
	return context.WithValue(ctx, workspaceKey, ws)
}

func GetWorkspace(ctx context.Context) *Workspace {
	if ws, ok := ctx.Value(workspaceKey).(*Workspace); ok {
		return ws
	}
	return nil
}

// workspaceMiddleware binds each request to the workspace named by its cookie
func workspaceMiddleware(store *Workspaces, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if cookie, err := r.Cookie(workspaceCookie); err == nil {
			if _, err := uuid.Parse(cookie.Value); err == nil {
				id = cookie.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     workspaceCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ws := store.Get(id)
		next.ServeHTTP(w, r.WithContext(WithWorkspace(r.Context(), ws)))
	})
}
