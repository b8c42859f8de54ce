package annotation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lewtec/parelha/internal/domain"
	"github.com/lewtec/parelha/internal/history"
	"github.com/lewtec/parelha/internal/session"
)

// AnnotatorApp is the web front of the annotator
type AnnotatorApp struct {
	Config      *Config
	Sessions    *session.Manager
	Auth        domain.AuthService
	Tasks       domain.TaskService
	Annotations domain.AnnotationService
	// Refresher and Journal are optional
	Refresher Refresher
	Journal   domain.SubmissionLog

	once        sync.Once
	workspaces  *Workspaces
	board       *Board
	coordinator *Coordinator
}

func (a *AnnotatorApp) init() {
	a.once.Do(func() {
		if a.Config == nil {
			a.Config = DefaultConfig()
		}
		store := NewTaskPairStore(a.Tasks)
		a.workspaces = NewWorkspaces(a.Config.UI.NoticeTTL, func() *Walker {
			return NewWalker(store, a.Tasks)
		})
		a.board = NewBoard(a.Tasks, a.Config.UI.BoardConcurrency)
		a.coordinator = NewCoordinator(a.Annotations, a.Refresher, a.Journal)
	})
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func taskURL(id domain.ID) string {
	return "/tasks/" + url.PathEscape(id.String())
}

func (a *AnnotatorApp) render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	data["Session"] = a.Sessions.Current()
	if err := RenderPage(w, r, status, page, data); err != nil {
		log.Printf("error: http: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// endSession drops the session and everything cached for its user
func (a *AnnotatorApp) endSession() {
	if err := a.Sessions.Clear(); err != nil {
		log.Printf("error: http: %s", err)
	}
	a.workspaces.Reset()
	if a.Refresher != nil {
		a.Refresher.InvalidateTasks()
		a.Refresher.InvalidateHistory()
	}
}

// fail surfaces err as a notice and goes back. An expired session sends the
// user to the login page instead.
func (a *AnnotatorApp) fail(w http.ResponseWriter, r *http.Request, err error, back string) {
	if errors.Is(err, domain.ErrSuperseded) {
		redirect(w, r, back)
		return
	}
	ws := GetWorkspace(r.Context())
	if errors.Is(err, domain.ErrUnauthenticated) {
		log.Printf("http: session rejected by the server, logging out")
		a.endSession()
		ws.Notify(NoticeError, localizeError(r.Context(), err))
		redirect(w, r, "/login")
		return
	}
	log.Printf("http: %s %s: %s", r.Method, r.URL.Path, err)
	ws.Notify(NoticeError, localizeError(r.Context(), err))
	redirect(w, r, back)
}

// signedIn reports whether the request comes from the browser that logged
// the current session in
func (a *AnnotatorApp) signedIn(r *http.Request) bool {
	if !a.Sessions.Current().Authenticated() {
		return false
	}
	ws := GetWorkspace(r.Context())
	return ws != nil && ws.SignedIn()
}

func (a *AnnotatorApp) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.signedIn(r) {
			redirect(w, r, "/login")
			return
		}
		next(w, r)
	}
}

func (a *AnnotatorApp) GetHTTPHandler() http.Handler {
	a.init()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /assets/style.css", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		fmt.Fprint(w, cssContent)
	})
	mux.HandleFunc("GET /favicon.svg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		fmt.Fprint(w, GetFavicon())
	})

	mux.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		if a.signedIn(r) {
			redirect(w, r, "/tasks")
			return
		}
		a.render(w, r, http.StatusOK, "login", nil)
	})
	mux.HandleFunc("POST /login", a.handleLogin)
	mux.HandleFunc("POST /logout", a.requireSession(func(w http.ResponseWriter, r *http.Request) {
		a.endSession()
		GetWorkspace(r.Context()).Notify(NoticeInfo, LocalizeWithContext(r.Context(), "logout.done"))
		redirect(w, r, "/login")
	}))

	mux.HandleFunc("GET /{$}", a.requireSession(func(w http.ResponseWriter, r *http.Request) {
		redirect(w, r, "/tasks")
	}))
	mux.HandleFunc("GET /tasks", a.requireSession(a.handleTasks))
	mux.HandleFunc("GET /tasks/{id}", a.requireSession(a.handleTask))
	mux.HandleFunc("POST /tasks/{id}", a.requireSession(a.handleTaskAction))
	mux.HandleFunc("GET /history", a.requireSession(a.handleHistory))

	var handler http.Handler = mux
	handler = workspaceMiddleware(a.workspaces, handler)
	handler = sameOriginMiddleware(handler)
	handler = i18nMiddleware(a.Config.UI.Language, handler)
	handler = HTTPLogger(handler)
	return handler
}

func (a *AnnotatorApp) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	creds := domain.Credentials{
		Login:    strings.TrimSpace(r.PostFormValue("login")),
		Password: r.PostFormValue("password"),
	}
	data := map[string]any{"Login": creds.Login}
	if err := validate.Struct(creds); err != nil {
		data["Error"] = LocalizeWithContext(r.Context(), "login.invalid")
		a.render(w, r, http.StatusBadRequest, "login", data)
		return
	}

	result, err := a.Auth.Login(r.Context(), creds)
	if err != nil {
		log.Printf("http: login of %s failed: %s", creds.Login, err)
		data["Error"] = localizeError(r.Context(), err)
		status := http.StatusBadGateway
		if errors.Is(err, domain.ErrUnauthenticated) {
			status = http.StatusUnauthorized
		}
		a.render(w, r, status, "login", data)
		return
	}

	username := result.Username
	if username == "" {
		username = creds.Login
	}
	// a previous user's listings must not leak into this session
	a.endSession()
	err = a.Sessions.Set(session.Session{Token: result.Token, Username: username, Role: result.Role})
	if err != nil {
		log.Printf("error: http: %s", err)
		http.Error(w, "could not save session", http.StatusInternalServerError)
		return
	}
	// endSession dropped every workspace, this browser gets a fresh one
	ws := a.workspaces.Get(GetWorkspace(r.Context()).ID)
	ws.SignIn()
	ws.Notify(NoticeSuccess, LocalizeWithContext(r.Context(), "login.welcome", "Username", username))
	redirect(w, r, "/tasks")
}

func (a *AnnotatorApp) handleTasks(w http.ResponseWriter, r *http.Request) {
	entries, err := a.board.Load(r.Context())
	if errors.Is(err, domain.ErrUnauthenticated) {
		a.fail(w, r, err, "/login")
		return
	}
	data := map[string]any{"Entries": entries}
	if err != nil {
		log.Printf("http: task list: %s", err)
		data["Error"] = localizeError(r.Context(), err)
	}
	a.render(w, r, http.StatusOK, "tasks", data)
}

func (a *AnnotatorApp) handleTask(w http.ResponseWriter, r *http.Request) {
	id := domain.ID(r.PathValue("id"))
	walker := GetWorkspace(r.Context()).Walker

	snap := walker.Snapshot()
	if r.URL.Query().Has("open") || snap.TaskID != id || snap.State == StateIdle {
		if r.URL.Query().Has("open") && a.Refresher != nil {
			a.Refresher.InvalidateClasses(id)
		}
		err := walker.OpenTask(r.Context(), id)
		if errors.Is(err, domain.ErrUnauthenticated) {
			a.fail(w, r, err, "/login")
			return
		}
		if err != nil && !errors.Is(err, domain.ErrSuperseded) {
			log.Printf("http: open task %s: %s", id, err)
		}
		snap = walker.Snapshot()
	}

	data := map[string]any{"Snap": snap}
	status := http.StatusOK
	if snap.State == StateFailed && snap.Err != nil {
		data["Error"] = localizeError(r.Context(), snap.Err)
		switch {
		case errors.Is(snap.Err, domain.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(snap.Err, domain.ErrNotAuthorized):
			status = http.StatusForbidden
		}
	}
	if snap.State == StateCompleted && r.URL.Query().Has("done") {
		data["RefreshSeconds"] = int(a.Config.UI.SubmitRefreshDelay / time.Second)
	}
	a.render(w, r, status, "task", data)
}

func (a *AnnotatorApp) handleTaskAction(w http.ResponseWriter, r *http.Request) {
	id := domain.ID(r.PathValue("id"))
	back := taskURL(id)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	ws := GetWorkspace(r.Context())
	walker := ws.Walker
	if walker.Snapshot().TaskID != id {
		a.fail(w, r, domain.ErrNotReady, back)
		return
	}

	switch r.PostFormValue("action") {
	case "previous":
		if err := walker.Navigate(r.Context(), Previous); err != nil {
			a.fail(w, r, err, back)
			return
		}
	case "next":
		if err := walker.Navigate(r.Context(), Next); err != nil {
			a.fail(w, r, err, back)
			return
		}
	case "submit":
		class := domain.ID(r.PostFormValue("class"))
		notes := r.PostFormValue("notes")
		// the outcome must be reconciled even if the browser goes away
		res, err := a.coordinator.SubmitWith(context.WithoutCancel(r.Context()), walker, class, notes)
		if res != nil {
			ws.Notify(NoticeSuccess, resultMessage(r.Context(), res))
		}
		if err != nil {
			a.fail(w, r, err, back)
			return
		}
		if res.Completed {
			redirect(w, r, back+"?done=1")
			return
		}
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}
	redirect(w, r, back)
}

func resultMessage(ctx context.Context, res *domain.AnnotateResult) string {
	if res.Completed {
		if res.CompletionMessage != "" {
			return res.CompletionMessage
		}
		return LocalizeWithContext(ctx, "task.completed")
	}
	if res.Message != "" {
		return res.Message
	}
	return LocalizeWithContext(ctx, "submit.saved")
}

func (a *AnnotatorApp) handleHistory(w http.ResponseWriter, r *http.Request) {
	number, _ := strconv.Atoi(r.URL.Query().Get("page"))
	records, err := a.Annotations.History(r.Context())
	if errors.Is(err, domain.ErrUnauthenticated) {
		a.fail(w, r, err, "/login")
		return
	}
	data := map[string]any{}
	if err != nil {
		log.Printf("http: history: %s", err)
		data["Error"] = localizeError(r.Context(), err)
	}
	data["Page"] = history.Paginate(records, number, a.Config.UI.HistoryPageSize)
	a.render(w, r, http.StatusOK, "history", data)
}

// Serve runs the web front on addr until ctx is done
func (a *AnnotatorApp) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           a.GetHTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		log.Printf("http: listening on %s", addr)
		errs <- server.ListenAndServe()
	}()
	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("while shutting down http server: %w", err)
	}
	return nil
}
