package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/logger"
)

// AuditAction identifies what a request did to the platform.
type AuditAction string

const (
	AuditActionSignIn         AuditAction = "sign_in"
	AuditActionSignOut        AuditAction = "sign_out"
	AuditActionProvision      AuditAction = "provision"
	AuditActionChangePassword AuditAction = "change_password"
	AuditActionSendEmail      AuditAction = "send_email"
	AuditActionCreate         AuditAction = "create"
	AuditActionUpdate         AuditAction = "update"
	AuditActionDelete         AuditAction = "delete"
)

// AuditEntry is one mutating request recorded against an agency.
type AuditEntry struct {
	ID           string      `json:"id"`
	AgencyID     *string     `json:"agency_id,omitempty"`
	UserID       *string     `json:"user_id,omitempty"`
	UserEmail    string      `json:"user_email,omitempty"`
	UserRole     string      `json:"user_role,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   *string     `json:"resource_id,omitempty"`
	Status       int         `json:"status"`
	IPAddress    string      `json:"ip_address,omitempty"`
	UserAgent    string      `json:"user_agent,omitempty"`
	RequestID    string      `json:"request_id,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// AuditSink persists a batch of entries.
type AuditSink interface {
	Write(ctx context.Context, entries []*AuditEntry) error
}

// PostgresSink writes audit entries to the audit_logs table in one batch
// round trip.
type PostgresSink struct {
	pool *pgxpool.Pool
}

func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

func (s *PostgresSink) Write(ctx context.Context, entries []*AuditEntry) error {
	const query = `
		INSERT INTO audit_logs (
			id, agency_id, user_id, user_email, user_role,
			action, resource_type, resource_id,
			status, ip_address, user_agent, request_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(query,
			e.ID, e.AgencyID, e.UserID, e.UserEmail, e.UserRole,
			string(e.Action), e.ResourceType, e.ResourceID,
			e.Status, e.IPAddress, e.UserAgent, e.RequestID, e.CreatedAt,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range entries {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// MemorySink collects entries in memory. Used by tests.
type MemorySink struct {
	mu      sync.Mutex
	entries []*AuditEntry
}

func (s *MemorySink) Write(_ context.Context, entries []*AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *MemorySink) Entries() []*AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*AuditEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// AuditConfig holds configuration for the audit middleware.
type AuditConfig struct {
	Sink          AuditSink
	BufferSize    int
	FlushInterval time.Duration
	BatchSize     int
	// SkipPaths are request paths that are never audited. A trailing "*"
	// matches any suffix.
	SkipPaths   []string
	SkipMethods []string
}

// DefaultAuditConfig audits every mutating request into PostgreSQL.
func DefaultAuditConfig(db *pgxpool.Pool) *AuditConfig {
	return &AuditConfig{
		Sink:          NewPostgresSink(db),
		BufferSize:    1000,
		FlushInterval: 5 * time.Second,
		BatchSize:     100,
		SkipPaths:     []string{"/health", "/ready", "/metrics"},
		SkipMethods:   []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	}
}

// AuditLogger buffers entries and flushes them to the sink in the background,
// so persisting the trail never blocks a request.
type AuditLogger struct {
	config    *AuditConfig
	buffer    chan *AuditEntry
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewAuditLogger(config *AuditConfig) *AuditLogger {
	if config.BufferSize <= 0 {
		config.BufferSize = 1000
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = 5 * time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}

	al := &AuditLogger{
		config: config,
		buffer: make(chan *AuditEntry, config.BufferSize),
	}
	al.wg.Add(1)
	go al.worker()
	return al
}

// Log queues an entry without blocking. When the buffer is full the entry is
// dropped; the audit trail must not apply backpressure to requests.
func (al *AuditLogger) Log(entry *AuditEntry) {
	select {
	case al.buffer <- entry:
	default:
	}
}

// Close flushes buffered entries and stops the worker.
func (al *AuditLogger) Close() error {
	al.closeOnce.Do(func() {
		close(al.buffer)
		al.wg.Wait()
	})
	return nil
}

func (al *AuditLogger) worker() {
	defer al.wg.Done()

	ticker := time.NewTicker(al.config.FlushInterval)
	defer ticker.Stop()

	batch := make([]*AuditEntry, 0, al.config.BatchSize)

	for {
		select {
		case entry, ok := <-al.buffer:
			if !ok {
				al.flush(batch)
				return
			}
			batch = append(batch, entry)
			if len(batch) >= al.config.BatchSize {
				al.flush(batch)
				batch = make([]*AuditEntry, 0, al.config.BatchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				al.flush(batch)
				batch = make([]*AuditEntry, 0, al.config.BatchSize)
			}
		}
	}
}

func (al *AuditLogger) flush(entries []*AuditEntry) {
	if len(entries) == 0 || al.config.Sink == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := al.config.Sink.Write(ctx, entries); err != nil {
		logger.Warn("audit batch dropped",
			zap.Int("entries", len(entries)), zap.Error(err))
	}
}

// AuditMiddleware records who did what to which agency resource. Identity
// fields come from the JWT middleware when the request carried a token.
func AuditMiddleware(al *AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		config := al.config

		for _, pattern := range config.SkipPaths {
			if matchPath(c.Request.URL.Path, pattern) {
				c.Next()
				return
			}
		}
		for _, method := range config.SkipMethods {
			if c.Request.Method == method {
				c.Next()
				return
			}
		}

		start := time.Now()
		c.Next()

		entry := &AuditEntry{
			ID:        uuid.New().String(),
			Action:    actionForRoute(c.Request.Method, c.Request.URL.Path),
			Status:    c.Writer.Status(),
			IPAddress: clientIP(c),
			UserAgent: c.GetHeader("User-Agent"),
			RequestID: c.GetHeader("X-Request-ID"),
			CreatedAt: start,
		}
		entry.ResourceType, entry.ResourceID = resourceFromPath(c.Request.URL.Path)

		if userID, ok := GetUserID(c); ok && userID != "" {
			entry.UserID = &userID
		}
		if email, ok := GetEmail(c); ok {
			entry.UserEmail = email
		}
		if role, ok := GetRole(c); ok {
			entry.UserRole = role
		}
		if agencyID, ok := GetTenantID(c); ok && agencyID != "" {
			entry.AgencyID = &agencyID
		}

		al.Log(entry)
	}
}

// actionForRoute classifies a request by the platform route it hit before
// falling back to the HTTP method.
func actionForRoute(method, path string) AuditAction {
	p := strings.ToLower(path)

	switch {
	case strings.Contains(p, "/signin"):
		return AuditActionSignIn
	case strings.Contains(p, "/signout"):
		return AuditActionSignOut
	case strings.Contains(p, "/create-agency-user"):
		return AuditActionProvision
	case strings.Contains(p, "/change-password"):
		return AuditActionChangePassword
	case strings.Contains(p, "/send-email"), strings.Contains(p, "/send-bulk-email"):
		return AuditActionSendEmail
	}

	switch method {
	case http.MethodPut, http.MethodPatch:
		return AuditActionUpdate
	case http.MethodDelete:
		return AuditActionDelete
	default:
		return AuditActionCreate
	}
}

// resourceFromPath names the resource a path addresses.
// "/api/v1/agencies/<uuid>" yields ("agency", <uuid>).
func resourceFromPath(path string) (resourceType string, resourceID *string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")

	idx := 0
	for idx < len(parts) {
		p := parts[idx]
		if p == "api" || (len(p) > 1 && p[0] == 'v' && p[1] >= '0' && p[1] <= '9') {
			idx++
			continue
		}
		break
	}
	if idx >= len(parts) {
		return "unknown", nil
	}

	resourceType = parts[idx]
	if strings.HasSuffix(resourceType, "ies") {
		resourceType = strings.TrimSuffix(resourceType, "ies") + "y"
	} else if strings.HasSuffix(resourceType, "s") {
		resourceType = strings.TrimSuffix(resourceType, "s")
	}

	if idx+1 < len(parts) {
		if _, err := uuid.Parse(parts[idx+1]); err == nil {
			id := parts[idx+1]
			resourceID = &id
		}
	}
	return resourceType, resourceID
}

// matchPath reports whether a request path matches a skip pattern.
// A trailing "*" in the pattern matches any suffix.
func matchPath(path, pattern string) bool {
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(path, strings.TrimSuffix(pattern, "*"))
	}
	return path == pattern
}

func clientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}
