package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/usecase"
	"github.com/optimatax/reliefdesk/pkg/utils/errutil"
	"github.com/optimatax/reliefdesk/pkg/utils/logging"
)

// multipartOverhead is allowed on top of the upload size for form fields and
// multipart framing
const multipartOverhead = 1 << 20

type AuthUseCase = usecase.AuthUseCaseInterface

type Server struct {
	router      *chi.Mux
	uc          *usecase.UseCases
	authUC      AuthUseCase
	maxBodySize int64
}

type Options func(*Server)

// WithAuth overrides the authenticator of the use cases
func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

// WithMaxBodySize limits the size of request bodies
func WithMaxBodySize(size int64) Options {
	return func(s *Server) {
		s.maxBodySize = size
	}
}

func New(uc *usecase.UseCases, opts ...Options) (*Server, error) {
	r := chi.NewRouter()

	s := &Server{
		router:      r,
		uc:          uc,
		authUC:      uc.Auth,
		maxBodySize: uc.Policy().MaxUploadSize + multipartOverhead,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.authUC == nil {
		return nil, goerr.New("authentication is not configured")
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.limitBody)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/eligibility/quick-check", s.quickCheckHandler)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.registerHandler)
			r.Post("/login", s.loginHandler)
			r.With(authMiddleware(s.authUC)).Get("/me", s.meHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(s.authUC))

			r.Route("/cases", func(r chi.Router) {
				r.Get("/", s.listCasesHandler)
				r.Post("/", s.createCaseHandler)
				r.Route("/{caseID}", func(r chi.Router) {
					r.Get("/", s.getCaseHandler)
					r.Get("/summary", s.caseSummaryHandler)
					r.Post("/transitions", s.transitionCaseHandler)
					r.Put("/assignee", s.assignCaseHandler)
					r.Put("/deadline", s.setDeadlineHandler)
					r.Get("/requirements", s.requirementsHandler)
					r.Get("/documents", s.caseDocumentsHandler)
					r.Get("/assessment", s.caseAssessmentHandler)
					r.Get("/activities", s.caseActivitiesHandler)
				})
			})

			r.Route("/documents", func(r chi.Router) {
				r.Get("/", s.listDocumentsHandler)
				r.Post("/", s.uploadDocumentHandler)
				r.Route("/{documentID}", func(r chi.Router) {
					r.Get("/", s.getDocumentHandler)
					r.Delete("/", s.deleteDocumentHandler)
					r.Get("/url", s.documentURLHandler)
					r.Post("/verify", s.verifyDocumentHandler)
					r.Post("/reject", s.rejectDocumentHandler)
				})
			})

			r.Route("/assessments", func(r chi.Router) {
				r.Get("/", s.listAssessmentsHandler)
				r.Post("/", s.createAssessmentHandler)
				r.Route("/{assessmentID}", func(r chi.Router) {
					r.Get("/", s.getAssessmentHandler)
					r.Put("/steps/{step}", s.submitStepHandler)
					r.Post("/evaluate", s.evaluateHandler)
				})
			})

			r.Get("/notifications", s.listNotificationsHandler)
			r.Post("/notifications/{notificationID}/read", s.markReadHandler)
			r.Get("/activities", s.listActivitiesHandler)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusNotFound, errorResponse{Error: errorBody{Code: CodeNotFound, Message: "route not found"}})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusMethodNotAllowed, errorResponse{Error: errorBody{Code: CodeNotFound, Message: "method not allowed"}})
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.maxBodySize)
		}
		next.ServeHTTP(w, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

// decodeJSON reads the request body into v. Malformed bodies are validation
// errors.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return invalidInput(err, "malformed JSON body")
	}
	return nil
}

// queryLimit parses the optional "limit" query parameter
func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, goerr.Wrap(model.ErrInvalidInput, "invalid limit", goerr.V("limit", raw))
	}
	return limit, nil
}
