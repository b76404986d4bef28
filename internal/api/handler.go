package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mygcc-backend/internal/extract"
	"mygcc-backend/internal/failure"
	"mygcc-backend/internal/token"

	"github.com/google/uuid"
)

const (
	WelcomeMessage   = "Welcome to the Unofficial myGCC API"
	bearerPrefix     = "Bearer "
	requestIdHeader  = "X-Request-Id"
	maxLoginBodySize = 1 << 16
)

var errMissingAuthorization = errors.New("authorization header empty or does not exist")

type errorBody struct {
	Message string `json:"message"`
	Date    int64  `json:"date"`
}

type dataBody[T any] struct {
	Data T `json:"data"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	IsValid bool `json:"isValid"`
}

type Handler struct {
	service Service
	mux     *http.ServeMux
}

func NewHandler(service Service) Handler {
	h := Handler{service: service, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /{$}", h.welcome)
	h.mux.HandleFunc("POST /1/auth", h.login)
	h.mux.HandleFunc("GET /1/auth/verify", h.verify)

	h.mux.Handle("GET /1/user/{$}", resource(h, func(ctx context.Context, e extract.Extractor, _ *http.Request) (extract.Biography, error) {
		return e.Biography(ctx)
	}))
	h.mux.Handle("GET /1/user/schedule", resource(h, func(ctx context.Context, e extract.Extractor, _ *http.Request) (dataBody[[]extract.Course], error) {
		courses, err := e.Schedule(ctx)
		return dataBody[[]extract.Course]{Data: courses}, err
	}))
	h.mux.Handle("GET /1/user/chapel", resource(h, func(ctx context.Context, e extract.Extractor, _ *http.Request) (extract.Chapel, error) {
		return e.Chapel(ctx)
	}))
	h.mux.Handle("GET /1/user/ccash", resource(h, func(ctx context.Context, e extract.Extractor, _ *http.Request) (extract.CrimsonCash, error) {
		return e.CrimsonCash(ctx)
	}))
	h.mux.Handle("GET /1/user/contact", resource(h, func(ctx context.Context, e extract.Extractor, _ *http.Request) (extract.Contact, error) {
		return e.Contact(ctx)
	}))
	h.mux.Handle("GET /1/user/insurance", resource(h, func(ctx context.Context, e extract.Extractor, _ *http.Request) (extract.Insurance, error) {
		return e.Insurance(ctx)
	}))

	h.mux.Handle("GET /1/class/{course}/homework", resource(h, func(ctx context.Context, e extract.Extractor, r *http.Request) (dataBody[[]extract.HomeworkSection], error) {
		sections, err := e.Homework(ctx, r.PathValue("course"))
		return dataBody[[]extract.HomeworkSection]{Data: sections}, err
	}))
	h.mux.Handle("GET /1/class/{course}/files", resource(h, func(ctx context.Context, e extract.Extractor, r *http.Request) (dataBody[[]extract.File], error) {
		files, err := e.Files(ctx, r.PathValue("course"))
		return dataBody[[]extract.File]{Data: files}, err
	}))
	h.mux.Handle("GET /1/class/{course}/collaboration", resource(h, func(ctx context.Context, e extract.Extractor, r *http.Request) (dataBody[[]extract.Classmate], error) {
		classmates, err := e.Collaboration(ctx, r.PathValue("course"))
		return dataBody[[]extract.Classmate]{Data: classmates}, err
	}))

	return h
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	w.Header().Set(requestIdHeader, id)

	start := time.Now()
	recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.mux.ServeHTTP(recorder, r)

	slog.Debug(
		"request",
		"id", id,
		"method", r.Method,
		"path", r.URL.Path,
		"status", recorder.status,
		"duration", time.Since(start),
	)
}

// authorization reads the token from the Authorization header, with or
// without its bearer prefix.
func authorization(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	header = strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if header == "" {
		return "", errMissingAuthorization
	}
	return header, nil
}

func status(kind failure.Kind) (int, string) {
	switch kind {
	case failure.KindInvalidCredentials:
		return http.StatusUnauthorized, "Invalid myGCC credentials"
	case failure.KindInvalidToken:
		return http.StatusUnauthorized, "Invalid token"
	case failure.KindNetworkError:
		return http.StatusBadGateway, "myGCC is unavailable"
	case failure.KindExpiredSession:
		return http.StatusBadRequest, "Session expired"
	case failure.KindClassDoesNotExist:
		return http.StatusNotFound, "Class does not exist"
	case failure.KindStudentNotInClass:
		return http.StatusForbidden, "Student not enrolled in class"
	}
	return http.StatusBadGateway, "Unexpected response from myGCC"
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Warn("write response", "err", err)
	}
}

func (h Handler) writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorBody{
		Message: message,
		Date:    h.service.time.Now().Unix(),
	})
}

func (h Handler) writeError(w http.ResponseWriter, err error) {
	statusCode, message := status(failure.KindOf(err))
	h.writeMessage(w, statusCode, message)
}

// resource adapts an extractor call into a handler that authorizes the
// request first.
func resource[T any](h Handler, read func(context.Context, extract.Extractor, *http.Request) (T, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, err := authorization(r)
		if err != nil {
			h.writeMessage(w, http.StatusUnauthorized, "Authorization header empty or does not exist.")
			return
		}
		extractor, err := h.service.Extractor(tok)
		if err != nil {
			h.writeError(w, err)
			return
		}
		record, err := read(r.Context(), extractor, r)
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	})
}

func (h Handler) welcome(w http.ResponseWriter, _ *http.Request) {
	h.writeMessage(w, http.StatusOK, WelcomeMessage)
}

func (h Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBodySize)).Decode(&req)
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	tok, err := h.service.Login(r.Context(), token.Credential{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: tok})
}

func (h Handler) verify(w http.ResponseWriter, r *http.Request) {
	tok, err := authorization(r)
	if err != nil {
		h.writeMessage(w, http.StatusUnauthorized, "Authorization header empty or does not exist.")
		return
	}
	err = h.service.Verify(tok)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{IsValid: true})
}
