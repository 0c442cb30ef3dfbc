package component

import "github.com/go-gl/mathgl/mgl64"

// Pedestrian walks a straight line from Start to End once released.
//
// Progress may be negative after release; that is a departure delay, not
// distance. Waiting and Completed are never both set, and a pedestrian that
// stops waiting never waits again.
type Pedestrian struct {
	Start       mgl64.Vec3
	End         mgl64.Vec3
	Origin      int
	Destination int
	Progress    float64
	Speed       float64
	Waiting     bool
	Completed   bool
	IdleOffset  float64
}

var PedestrianComponent = NewComponent[Pedestrian]()
