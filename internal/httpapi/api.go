// ABOUTME: REST surface around the real-time core: credential issuance, history, user list
// ABOUTME: Thin handlers over the store; the chat core consumes the tokens minted here

package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/deskchat/deskchat/internal/auth"
	"github.com/deskchat/deskchat/internal/store"
)

// dummyHash is compared against when a login names an unknown user, so the
// response time does not reveal whether the username exists.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// API exposes the CRUD endpoints surrounding the real-time core.
type API struct {
	store    store.Store
	tokens   *auth.JWTVerifier
	tokenTTL time.Duration
	logger   *slog.Logger
}

// New creates the API. Pass nil logger for default.
func New(st store.Store, tokens *auth.JWTVerifier, tokenTTL time.Duration, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		store:    st,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   logger.With("component", "httpapi"),
	}
}

// Routes registers all HTTP handlers on mux. The gate handles GET /ws.
// When staticDir is non-empty it is served at "/".
func (a *API) Routes(mux *http.ServeMux, gate http.Handler, staticDir string) {
	mux.HandleFunc("POST /api/auth/register", a.handleRegister)
	mux.HandleFunc("POST /api/auth/login", a.handleLogin)
	mux.HandleFunc("GET /api/users", a.requirePrincipal(a.handleListUsers))
	mux.HandleFunc("GET /api/messages", a.requirePrincipal(a.handleHistory))
	mux.Handle("GET /ws", gate)

	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleRegister creates a regular user account. Admin accounts are created
// only through the bootstrap command; registration never grants the role.
func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "hashing password")
		return
	}

	user := &store.User{
		Username:     req.Username,
		PasswordHash: string(hash),
	}
	if err := a.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			writeError(w, http.StatusConflict, "username already exists")
			return
		}
		a.logger.Error("creating user", "error", err)
		writeError(w, http.StatusInternalServerError, "creating user")
		return
	}

	a.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":       user.ID,
		"username": user.Username,
	})
}

// handleLogin verifies credentials and mints a session token the websocket
// handshake consumes.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := a.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		// Do a dummy bcrypt comparison to maintain constant timing
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(req.Password))
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := a.tokens.Generate(&auth.Principal{
		ID:       user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}, a.tokenTTL)
	if err != nil {
		a.logger.Error("minting token", "error", err)
		writeError(w, http.StatusInternalServerError, "minting token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

type userJSON struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// handleListUsers returns all regular users. Admin only; this is the list
// the admin UI shows conversations for.
func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request, p *auth.Principal) {
	if !p.IsAdmin {
		writeError(w, http.StatusForbidden, "admin only")
		return
	}

	users, err := a.store.ListUsers(r.Context(), false)
	if err != nil {
		a.logger.Error("listing users", "error", err)
		writeError(w, http.StatusInternalServerError, "listing users")
		return
	}

	out := make([]userJSON, 0, len(users))
	for _, u := range users {
		out = append(out, userJSON{ID: u.ID, Username: u.Username})
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out})
}

type messageJSON struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
}

// handleHistory returns the persisted conversation between the admin and one
// user, ordered by timestamp. The admin picks the user with ?with=<userID>;
// regular users always read their own admin thread regardless of parameters.
func (a *API) handleHistory(w http.ResponseWriter, r *http.Request, p *auth.Principal) {
	ctx := r.Context()

	limit := 0
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	otherID := ""
	if p.IsAdmin {
		otherID = r.URL.Query().Get("with")
		if otherID == "" {
			writeError(w, http.StatusBadRequest, "with parameter is required")
			return
		}
	} else {
		admin, err := a.store.FindAdmin(ctx)
		if errors.Is(err, store.ErrNoAdmin) {
			writeJSON(w, http.StatusOK, map[string]any{"messages": []messageJSON{}})
			return
		}
		if err != nil {
			a.logger.Error("resolving admin", "error", err)
			writeError(w, http.StatusInternalServerError, "resolving admin")
			return
		}
		otherID = admin.ID
	}

	messages, err := a.store.MessagesBetween(ctx, p.ID, otherID, limit)
	if err != nil {
		a.logger.Error("loading history", "error", err)
		writeError(w, http.StatusInternalServerError, "loading history")
		return
	}

	out := make([]messageJSON, 0, len(messages))
	for _, msg := range messages {
		out = append(out, messageJSON{
			ID:          msg.ID,
			SenderID:    msg.SenderID,
			RecipientID: msg.RecipientID,
			Text:        msg.Body,
			Timestamp:   msg.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": out})
}

// requirePrincipal wraps a handler with bearer-token authentication.
func (a *API) requirePrincipal(next func(http.ResponseWriter, *http.Request, *auth.Principal)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "missing credential")
			return
		}
		principal, err := a.tokens.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r, principal)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
