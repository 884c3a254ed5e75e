package catalog

import (
	"context"

	"github.com/litescript/ls-skyfield/internal/astro"
)

// Provider looks up catalog objects in a cone around a sky position.
// One call is made per field; implementations do not retry.
type Provider interface {
	Name() string
	Query(ctx context.Context, center astro.SkyCoord, radiusDeg float64) ([]Object, error)
}

// Cone returns the objects within radiusDeg of center.
func Cone(objs []Object, center astro.SkyCoord, radiusDeg float64) []Object {
	var out []Object
	for _, o := range objs {
		if !o.Coord().IsFinite() {
			continue
		}
		if center.Separation(o.Coord()) <= radiusDeg {
			out = append(out, o)
		}
	}
	return out
}
