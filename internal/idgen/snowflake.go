package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Generator issues time-ordered, node-scoped identifiers.
type Generator interface {
	NextID() int64
}

type SnowflakeGenerator struct {
	node *snowflake.Node
}

// NewSnowflakeGenerator creates a generator for the given node (0-1023).
func NewSnowflakeGenerator(nodeID int64) (*SnowflakeGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &SnowflakeGenerator{node: node}, nil
}

func (g *SnowflakeGenerator) NextID() int64 {
	return g.node.Generate().Int64()
}

var _ Generator = (*SnowflakeGenerator)(nil)
