package demo

import (
	"time"

	"github.com/spf13/cast"
)

const (
	StatusPending = "pending"

	// ISOLayout is the layout of created_at.
	ISOLayout = "2006-01-02T15:04:05.000000"
	// HumanLayout is the layout of created_at_human and updated_at.
	HumanLayout = "2006-01-02 15:04"
)

// Request is a single demo request submitted through the intake form.
type Request struct {
	ID             string  `json:"id"`
	FullName       string  `json:"fullName"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Organization   string  `json:"organization"`
	Role           string  `json:"role"`
	Cameras        string  `json:"cameras"`
	Message        string  `json:"message"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at"`
	CreatedAtHuman string  `json:"created_at_human"`
	UpdatedAt      *string `json:"updated_at"`
}

// Fields is the raw input of a submission, keyed by JSON field name.
type Fields map[string]any

// String returns the value under key as text, or "" when absent.
func (f Fields) String(key string) string {
	v, ok := f[key]
	if !ok || v == nil {
		return ""
	}
	return cast.ToString(v)
}

// New builds a pending request. Both creation timestamps are taken from now.
func New(id string, fields Fields, now time.Time) Request {
	return Request{
		ID:             id,
		FullName:       fields.String("fullName"),
		Email:          fields.String("email"),
		Phone:          fields.String("phone"),
		Organization:   fields.String("organization"),
		Role:           fields.String("role"),
		Cameras:        fields.String("cameras"),
		Message:        fields.String("message"),
		Status:         StatusPending,
		CreatedAt:      now.Format(ISOLayout),
		CreatedAtHuman: now.Format(HumanLayout),
	}
}

// SetStatus overwrites the status and stamps updated_at.
func (r *Request) SetStatus(status string, now time.Time) {
	updated := now.Format(HumanLayout)
	r.Status = status
	r.UpdatedAt = &updated
}
