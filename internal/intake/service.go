// Package intake tracks partial booking data while the customer finishes
// their details out of band, either over SMS (keyed by phone) or through a
// web link (keyed by an opaque token).
package intake

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	redisadapter "github.com/belmontfield/dispatch/internal/adapters/redis"
	"github.com/belmontfield/dispatch/internal/domain"
	"github.com/belmontfield/dispatch/internal/notify"
	"github.com/belmontfield/dispatch/internal/observability"
)

// Record is the partial booking payload a later submit completes.
type Record struct {
	Name      string             `json:"name,omitempty"`
	Email     string             `json:"email,omitempty"`
	Address   string             `json:"address,omitempty"`
	Phone     string             `json:"phone,omitempty"`
	Window    *domain.TimeWindow `json:"window,omitempty"`
	Job       domain.Job         `json:"job"`
	Location  *domain.Location   `json:"location,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

type Service struct {
	store   *redisadapter.IntakeStore
	sms     *notify.SMSSender
	baseURL string
	logger  observability.Logger
}

func NewService(store *redisadapter.IntakeStore, sms *notify.SMSSender, baseURL string, logger observability.Logger) *Service {
	return &Service{store: store, sms: sms, baseURL: baseURL, logger: logger}
}

func (s *Service) SaveByPhone(ctx context.Context, phone string, rec Record) error {
	key := domain.CustomerKey(phone)
	if key == "" {
		return domain.ErrNotFound
	}
	rec.CreatedAt = time.Now().UTC()
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.store.SaveByPhone(ctx, key, payload)
}

// GetByPhone returns nil when no intake exists for the phone.
func (s *Service) GetByPhone(ctx context.Context, phone string) (*Record, error) {
	key := domain.CustomerKey(phone)
	if key == "" {
		return nil, nil
	}
	return decode(s.store.GetByPhone(ctx, key))
}

func (s *Service) ClearByPhone(ctx context.Context, phone string) error {
	key := domain.CustomerKey(phone)
	if key == "" {
		return nil
	}
	return s.store.DeleteByPhone(ctx, key)
}

// CreateLink stores the record under a fresh opaque token and returns the
// intake URL to send to the customer.
func (s *Service) CreateLink(ctx context.Context, rec Record) (token, link string, err error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	token = base64.RawURLEncoding.EncodeToString(buf)
	rec.CreatedAt = time.Now().UTC()
	payload, err := json.Marshal(rec)
	if err != nil {
		return "", "", err
	}
	if err := s.store.SaveByToken(ctx, token, payload); err != nil {
		return "", "", err
	}
	return token, strings.TrimSuffix(s.baseURL, "/") + "/intake/" + token, nil
}

func (s *Service) GetByToken(ctx context.Context, token string) (*Record, error) {
	if token == "" {
		return nil, nil
	}
	return decode(s.store.GetByToken(ctx, token))
}

func (s *Service) ClearByToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.DeleteByToken(ctx, token)
}

// SendSMS stores the partial intake for the phone and texts the customer a
// confirmation prompt. Delivery failure does not roll back the stored intake.
func (s *Service) SendSMS(ctx context.Context, to, link string, rec Record) (sid string, simulated bool, err error) {
	rec.Phone = to
	if err := s.SaveByPhone(ctx, to, rec); err != nil {
		return "", false, err
	}

	parts := []string{"Hi,"}
	if rec.Name != "" {
		parts[0] = "Hi " + rec.Name + ","
	}
	parts = append(parts, "please reply to confirm your details to complete your booking:")
	if rec.Email != "" {
		parts = append(parts, "Email: "+rec.Email)
	}
	if rec.Address != "" {
		parts = append(parts, "Address: "+rec.Address)
	}
	if link != "" {
		parts = append(parts, "Confirm here: "+link)
	}
	return s.sms.Send(ctx, to, strings.Join(parts, "\n"))
}

func decode(payload []byte, err error) (*Record, error) {
	if err != nil || payload == nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
