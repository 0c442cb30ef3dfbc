package component

import "github.com/go-gl/mathgl/mgl64"

// Pose is the spatial state handed to renderers.
type Pose struct {
	Position mgl64.Vec3
	Yaw      float64
	Rotation mgl64.Quat
}

var PoseComponent = NewComponent[Pose]()
