package asc

import (
	"fmt"
	"strconv"
	"strings"

	"spicecad/pkg/catalog"
)

// Orientations form the 8-element dihedral group LTspice uses: four
// rotations, each with an optional X mirror applied first.
var Orientations = []string{"R0", "R90", "R180", "R270", "M0", "M90", "M180", "M270"}

// Transform applies an orientation code to a pin offset. Mirror codes
// flip X before rotating.
func Transform(orient string, p catalog.Point) (catalog.Point, error) {
	if len(orient) < 2 {
		return p, fmt.Errorf("invalid orientation %q", orient)
	}
	kind := orient[0]
	if kind != 'R' && kind != 'M' {
		return p, fmt.Errorf("invalid orientation %q", orient)
	}
	angle, err := strconv.Atoi(orient[1:])
	if err != nil {
		return p, fmt.Errorf("invalid orientation %q", orient)
	}

	x, y := p.X, p.Y
	if kind == 'M' {
		x = -x
	}
	switch angle {
	case 0:
	case 90:
		x, y = -y, x
	case 180:
		x, y = -x, -y
	case 270:
		x, y = y, -x
	default:
		return p, fmt.Errorf("invalid rotation angle %d", angle)
	}
	return catalog.Point{X: x, Y: y}, nil
}

// orientFields decodes an orientation code into the component fields the
// editor keeps: rotation in degrees plus the mirror flag.
func orientFields(orient string) (rotation int, flipH bool) {
	if strings.HasPrefix(orient, "M") {
		flipH = true
	}
	if n, err := strconv.Atoi(orient[1:]); err == nil {
		rotation = n % 360
	}
	return rotation, flipH
}
