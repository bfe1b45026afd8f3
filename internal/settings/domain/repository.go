package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	FindByOrg(ctx context.Context, orgID snowflake.ID) (*CompanySettings, error)
	Upsert(ctx context.Context, settings *CompanySettings) error
}
