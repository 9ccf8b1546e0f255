package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"autoparts-storefront/logging"
	"autoparts-storefront/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// SessionCookie carries the anonymous session that owns carts, wishlists and quick order tabs
const SessionCookie = "storefront_session"

// maxJSONBody bounds JSON request bodies
const maxJSONBody = 1 << 20

var validate = newValidator()

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

type ownerKey struct{}

// IdentityResolver reads the signed-in user from a request
type IdentityResolver interface {
	FromRequest(r *http.Request) (models.User, bool)
}

// WithSession makes sure every request has a session cookie and exposes its value to handlers
func WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := ""
		if c, err := r.Cookie(SessionCookie); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				owner = c.Value
			}
		}
		if owner == "" {
			owner = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    owner,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			logging.S().Debugf("🍪 New session %s for %s", owner, r.URL.Path)
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey{}, owner)))
	})
}

// Owner returns the session owner set by WithSession
func Owner(r *http.Request) string {
	owner, _ := r.Context().Value(ownerKey{}).(string)
	return owner
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.S().Errorf("❌ Error encoding response: %v", err)
	}
}

// decodeJSON decodes the request body into dst and runs its validate tags
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid request: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// requireUser writes 401 {"login_required": true} when the request is anonymous
func requireUser(w http.ResponseWriter, r *http.Request, identity IdentityResolver, op string) (models.User, bool) {
	user, ok := identity.FromRequest(r)
	if !ok {
		logging.S().Infof("🔒 %s: login required", op)
		writeJSON(w, http.StatusUnauthorized, map[string]bool{"login_required": true})
		return models.User{}, false
	}
	return user, true
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, op string) {
	logging.S().Warnf("❌ %s: Method not allowed: %s", op, r.Method)
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

// pathSegments splits what follows prefix into non-empty segments
func pathSegments(r *http.Request, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, strings.TrimSuffix(prefix, "/")), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}
