package middleware

import (
	"context"
	"errors"
	"net/http"

	"taskboard/config"
	"taskboard/infras/jwt"
	"taskboard/infras/otel"
	"taskboard/permissions"
	"taskboard/shared/constant"
	"taskboard/shared/failure"
	"taskboard/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Auth interface {
	Auth(http.Handler) http.Handler
}

type Role interface {
	RBAC(http.Handler) http.Handler
}

// AuthRole authenticates the bearer token and then checks the caller's role
// against the route's permission rule. Auth must run before RBAC.
type AuthRole interface {
	Auth
	Role
}

// tokenFailures maps token validation errors to the message sent to the client.
var tokenFailures = []struct {
	err     error
	message string
}{
	{jwt.ErrExpiredToken, "Token has expired"},
	{jwt.ErrInvalidToken, "Invalid token"},
	{jwt.ErrInvalidClaim, "Invalid token claims"},
}

type authRoleImpl struct {
	jwtService jwt.JWT
	otel       otel.Otel
	policy     *permissions.Policy
	cfg        *config.Config
}

func NewAuthRoleMiddleware(jwtService jwt.JWT, otel otel.Otel, policy *permissions.Policy, cfg *config.Config) AuthRole {
	return &authRoleImpl{
		jwtService: jwtService,
		otel:       otel,
		policy:     policy,
		cfg:        cfg,
	}
}

// routePattern resolves the registered pattern of the request, e.g. /api/todos/{id}.
func routePattern(request *http.Request) string {
	rctx := chi.RouteContext(request.Context())
	if rctx == nil || rctx.Routes == nil {
		return request.URL.Path
	}

	return rctx.Routes.Find(chi.NewRouteContext(), request.Method, request.URL.Path)
}

func (m *authRoleImpl) rule(request *http.Request) (permissions.Rule, string) {
	pattern := routePattern(request)
	rule, _ := m.policy.Find(pattern, request.Method)

	return rule, pattern
}

func (m *authRoleImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "middleware.auth")
		defer scope.End()

		rule, pattern := m.rule(request)
		if rule.Public {
			next.ServeHTTP(writer, request)

			return
		}

		scope.SetAttributes(map[string]any{
			"http.route":  pattern,
			"http.method": request.Method,
		})

		claims, err := m.authenticate(request)
		if err != nil {
			scope.TraceError(err)
			response.WithError(writer, err)

			return
		}

		scope.SetAttribute("user.id", claims.UserID)

		next.ServeHTTP(writer, request.WithContext(withClaims(ctx, claims)))
	})
}

func (m *authRoleImpl) authenticate(request *http.Request) (*jwt.Claims, error) {
	header := request.Header.Get(constant.RequestHeaderAuthorization)
	if header == "" {
		return nil, failure.Unauthorized("Missing authorization header")
	}

	token, err := jwt.ExtractTokenFromHeader(header)
	if err != nil {
		return nil, failure.Unauthorized("Invalid authorization header format")
	}

	claims, err := m.jwtService.ValidateToken(token, jwt.AccessToken)
	if err != nil {
		for _, f := range tokenFailures {
			if errors.Is(err, f.err) {
				return nil, failure.Unauthorized(f.message)
			}
		}

		return nil, failure.Unauthorized("Token validation failed")
	}

	if claims.UserID == "" || claims.Email == "" {
		log.Warn().Str("token_id", claims.ID).Msg("Access token without subject")

		return nil, failure.Unauthorized("Invalid token claims")
	}

	return claims, nil
}

func withClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	ctx = context.WithValue(ctx, constant.ContextKeyUserID, claims.UserID)
	ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, claims.Email)
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, claims.Role)

	return context.WithValue(ctx, constant.ContextKeyTokenID, claims.ID)
}

// RBAC admits the caller when the route's rule allows their role. Routes
// without a rule are open to every authenticated caller. Without a policy
// every request is refused.
func (m *authRoleImpl) RBAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "middleware.rbac")
		defer scope.End()

		if m.policy == nil {
			scope.TraceError(failure.ErrForbidden)
			response.WithError(writer, failure.ErrForbidden)

			return
		}

		rule, _ := m.rule(request)
		role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

		if m.policy.SkipRoles || rule.Allows(role) {
			next.ServeHTTP(writer, request)

			return
		}

		scope.SetAttributes(map[string]any{
			"user.role":     role,
			"allowed_roles": rule.Roles,
		})
		scope.TraceError(failure.ErrForbidden)
		response.WithError(writer, failure.ErrForbidden)
	})
}
