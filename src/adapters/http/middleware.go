package http

import (
	"net/http"
	"strings"

	"socialgraph/src/domain"
)

// authenticatedHandler receives the resolved caller identity explicitly
// instead of fishing it out of the request context.
type authenticatedHandler func(w http.ResponseWriter, r *http.Request, actor domain.Identity)

// protected resolves the Bearer token into a domain.Identity and rejects
// the request with 401 before the handler runs when it cannot.
func (s *Server) protected(handler authenticatedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			writeError(w, domain.ErrUnauthorized)
			return
		}

		actor, err := s.identityService.IdentityFromToken(token)
		if err != nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}

		handler(w, r, actor)
	}
}
