// Package id provides the snowflake node behind every generated
// identifier. Each replica needs a distinct node id to keep ids unique
// across the fleet.
package id

import (
	"github.com/Origin-Inc/e-invoicing-backend/internal/config"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

// NewNode builds the process-wide snowflake generator.
func NewNode(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}

var Module = fx.Module("id",
	fx.Provide(NewNode),
)
