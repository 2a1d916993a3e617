package http

import (
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/model/auth"
	"github.com/optimatax/reliefdesk/pkg/usecase"
	"github.com/optimatax/reliefdesk/pkg/utils/logging"
)

// bearerToken extracts the token of an "Authorization: Bearer" header
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// authMiddleware validates the bearer token and puts it into the request
// context. In no-authn mode every request acts as the configured account.
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" && !authUC.IsNoAuthn() {
				writeError(r.Context(), w, goerr.Wrap(usecase.ErrUnauthenticated, "authentication required"))
				return
			}

			token, err := authUC.ValidateToken(r.Context(), raw)
			if err != nil {
				writeError(r.Context(), w, err)
				return
			}

			ctx := auth.ContextWithToken(r.Context(), token)
			ctx = logging.With(ctx, logging.From(ctx).With("user_id", token.Sub))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// actorFrom returns the authenticated actor of the request
func actorFrom(r *http.Request) (*model.Actor, error) {
	actor, err := auth.ActorFromContext(r.Context())
	if err != nil {
		return nil, goerr.Wrap(usecase.ErrUnauthenticated, "no authenticated actor")
	}
	return actor, nil
}
