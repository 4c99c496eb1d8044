package motionplan

import (
	"fmt"

	"github.com/pkg/errors"
)

// NewInvalidEdgeError is returned when a plan segment fails edge validation.
func NewInvalidEdgeError(index int) error {
	return errors.Errorf("plan edge %d to %d is in collision", index, index+1)
}

// NewCollisionError wraps a collision found at a single configuration.
func NewCollisionError(c *Collision) error {
	return errors.New(c.String())
}

func (c *Collision) String() string {
	switch c.Kind {
	case SelfCollision:
		return fmt.Sprintf("self collision between link %d and link %d", c.Link, c.Other)
	case ObstacleCollision:
		return fmt.Sprintf("link %d collides with obstacle %d", c.Link, c.Other)
	case FloorCollision:
		return fmt.Sprintf("link %d is below the floor", c.Link)
	case BoundViolation:
		return fmt.Sprintf("link %d exceeds the workspace bound on axis %s", c.Link, Axis(c.Other))
	default:
		return "unknown collision"
	}
}
