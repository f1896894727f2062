package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// OperatorMembership is the session-side view of one operator a pilot
// belongs to.
type OperatorMembership struct {
	OperatorID   string `json:"operator_id"`
	OperatorName string `json:"operator_name"`
	Slug         string `json:"slug"`
	Role         string `json:"role"`
}

// SessionData represents a pilot's session with multi-operator support.
// ActiveOperatorID mirrors the operador_activo membership flag; it is
// refreshed whenever the pilot switches operator, so any tenant-scoped data
// fetched before a switch must be treated as stale.
type SessionData struct {
	SessionID        string               `json:"session_id"`
	PilotID          string               `json:"pilot_id"`
	ActiveOperatorID string               `json:"active_operator_id"`
	Email            string               `json:"email"`
	Operators        []OperatorMembership `json:"operators"`
	CreatedAt        time.Time            `json:"created_at"`
	ExpiresAt        time.Time            `json:"expires_at"`
}

const sessionTTL = 7 * 24 * time.Hour

// SessionService manages pilot sessions in Redis
type SessionService struct {
	redis *redis.Client
}

// NewSessionService creates a new session service
func NewSessionService(redis *redis.Client) *SessionService {
	return &SessionService{
		redis: redis,
	}
}

// Client exposes the underlying Redis client for health checks.
func (s *SessionService) Client() *redis.Client {
	return s.redis
}

// CreateSession creates a new session for a pilot with their operators
func (s *SessionService) CreateSession(
	ctx context.Context,
	pilotID, activeOperatorID, email string,
	operators []OperatorMembership,
) (string, error) {
	sessionID := uuid.New().String()

	now := time.Now()
	session := SessionData{
		SessionID:        sessionID,
		PilotID:          pilotID,
		ActiveOperatorID: activeOperatorID,
		Email:            email,
		Operators:        operators,
		CreatedAt:        now,
		ExpiresAt:        now.Add(sessionTTL),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.redis.Set(ctx, "session:"+sessionID, data, sessionTTL).Err(); err != nil {
		log.Printf("[SessionService] ERROR: Failed to store session in Redis: %v", err)
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	// Secondary index so all of a pilot's sessions can be dropped when
	// their working context changes.
	if err := s.redis.SAdd(ctx, pilotSessionsKey(pilotID), sessionID).Err(); err != nil {
		log.Printf("[SessionService] ERROR: Failed to index session for pilot %s: %v", pilotID, err)
	}
	s.redis.Expire(ctx, pilotSessionsKey(pilotID), sessionTTL)

	return sessionID, nil
}

func pilotSessionsKey(pilotID string) string {
	return "pilot_sessions:" + pilotID
}

// InvalidatePilotSessions deletes every session belonging to a pilot. Called
// after an operator switch so no session keeps serving the old context.
func (s *SessionService) InvalidatePilotSessions(ctx context.Context, pilotID string) error {
	sessionIDs, err := s.redis.SMembers(ctx, pilotSessionsKey(pilotID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list pilot sessions: %w", err)
	}

	keys := make([]string, 0, len(sessionIDs)+1)
	for _, id := range sessionIDs {
		keys = append(keys, "session:"+id)
	}
	keys = append(keys, pilotSessionsKey(pilotID))

	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete pilot sessions: %w", err)
	}
	return nil
}

// GetSession retrieves a session from Redis
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*SessionData, error) {
	val, err := s.redis.Get(ctx, "session:"+sessionID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.New("session not found")
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		s.DeleteSession(ctx, sessionID) // Clean up expired session
		return nil, errors.New("session expired")
	}

	return &session, nil
}

// DeleteSession deletes a session from Redis
func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, "session:"+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// GetActiveOperator returns the active operator membership, or nil when the
// pilot has no working context.
func (d *SessionData) GetActiveOperator() *OperatorMembership {
	for i := range d.Operators {
		if d.Operators[i].OperatorID == d.ActiveOperatorID {
			return &d.Operators[i]
		}
	}
	return nil
}
