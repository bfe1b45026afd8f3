package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type ActorType string

const (
	ActorTypeAPI    ActorType = "api"
	ActorTypeSystem ActorType = "system"
)

// AuditLog records one change made to an organization's quotes, customers
// or tax settings.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID      `gorm:"not null;index" json:"organizationId"`
	ActorType  string            `gorm:"type:text;not null" json:"actorType"`
	Action     string            `gorm:"type:text;not null" json:"action"`
	TargetType string            `gorm:"type:text;not null" json:"targetType"`
	TargetID   string            `gorm:"type:text" json:"targetId,omitempty"`
	RequestID  string            `gorm:"type:text" json:"requestId,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

func (AuditLog) TableName() string { return "audit_logs" }
