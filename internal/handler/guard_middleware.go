package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/domain"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/guard"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/logger"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/middleware"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/telemetry"
)

// SessionCookieName carries the session ID for browser navigations.
const SessionCookieName = "lycs_session"

// Context keys set by the guard for downstream handlers
const (
	ContextKeyAgency   = "guard_agency"
	ContextKeyIdentity = "guard_identity"
)

// AgencyResolver maps a URL slug to its agency record.
type AgencyResolver interface {
	ResolveAgency(ctx context.Context, slug string) (*domain.Agency, error)
}

// GuardMiddleware evaluates the tenant-scoped decision table for every
// request under /:slug/. Both resolutions run before evaluation, so the
// ShowLoading outcome never reaches the transport: per request the join has
// already completed by the time Evaluate runs.
type GuardMiddleware struct {
	agencies  AgencyResolver
	sessions  guard.SessionFetcher
	decisions *telemetry.Counter
	latency   *telemetry.Histogram
}

// NewGuardMiddleware creates a new GuardMiddleware
func NewGuardMiddleware(agencies AgencyResolver, sessions guard.SessionFetcher) *GuardMiddleware {
	decisions, err := telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "guard.decisions",
		Description: "Guard decisions by outcome and route class",
		Unit:        "{decision}",
	})
	if err != nil {
		decisions = nil
	}
	latency, err := telemetry.NewHistogram(telemetry.MetricOpts{
		Name:        "guard.evaluation.duration",
		Description: "Time spent resolving tenant and session before the decision",
		Unit:        "ms",
	})
	if err != nil {
		latency = nil
	}

	return &GuardMiddleware{
		agencies:  agencies,
		sessions:  sessions,
		decisions: decisions,
		latency:   latency,
	}
}

// Handler returns the gin middleware. Render passes through, RedirectTo maps
// to 302. Unauthorized access is a silent redirect, never an error body, so
// an outside caller learns nothing about tenancy or roles.
func (g *GuardMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		slug := c.Param("slug")
		path := c.Request.URL.Path
		start := time.Now()

		agency, err := g.agencies.ResolveAgency(ctx, slug)
		if err != nil {
			// Lookup failure and unknown slug surface identically.
			agency = nil
		}

		identity := g.resolveIdentity(c)

		decision := guard.Evaluate(guard.Inputs{
			Path:     path,
			Agency:   agency,
			Identity: identity,
		})

		g.record(ctx, decision, slug, path, time.Since(start))

		switch decision.Outcome {
		case guard.Render:
			c.Set(ContextKeyAgency, agency)
			if identity != nil {
				c.Set(ContextKeyIdentity, identity)
			}
			c.Next()
		case guard.RedirectTo:
			c.Redirect(http.StatusFound, decision.Location)
			c.Abort()
		default:
			// Unreachable per request, kept for completeness.
			c.Header("Retry-After", "1")
			c.AbortWithStatus(http.StatusServiceUnavailable)
		}
	}
}

// resolveIdentity fetches the identity bound to the request's session, if
// any. A fetch failure is logged and classified absent; it never blocks the
// decision.
func (g *GuardMiddleware) resolveIdentity(c *gin.Context) *domain.User {
	sid := sessionIDFromContext(c)
	if sid == "" {
		return nil
	}

	identity, err := g.sessions.CurrentSession(c.Request.Context(), sid)
	if err != nil {
		logger.Warn("guard session fetch failed", zap.Error(err))
		return nil
	}
	return identity
}

// sessionIDFromContext reads the session ID from the navigation cookie, or
// from a validated bearer token when the JWT middleware already ran.
func sessionIDFromContext(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	if sid, ok := middleware.GetSessionID(c); ok {
		return sid
	}
	return ""
}

func (g *GuardMiddleware) record(ctx context.Context, decision guard.Decision, slug, path string, took time.Duration) {
	attrs := []attribute.KeyValue{
		telemetry.GuardOutcomeAttr(decision.Outcome.String()),
		telemetry.AgencySlugAttr(slug),
		telemetry.RouteClassAttr(guard.Classify(path, slug).Class.String()),
	}
	if g.decisions != nil {
		g.decisions.Inc(ctx, attrs...)
	}
	if g.latency != nil {
		g.latency.Record(ctx, float64(took.Microseconds())/1000.0, attrs...)
	}
}

// AgencyFromContext returns the agency the guard resolved for this request.
func AgencyFromContext(c *gin.Context) (*domain.Agency, bool) {
	v, ok := c.Get(ContextKeyAgency)
	if !ok {
		return nil, false
	}
	agency, ok := v.(*domain.Agency)
	return agency, ok
}

// IdentityFromContext returns the identity the guard resolved, if any.
func IdentityFromContext(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(ContextKeyIdentity)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*domain.User)
	return identity, ok
}
