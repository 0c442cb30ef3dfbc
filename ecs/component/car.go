package component

import "github.com/milk9111/crosswalk/path"

// Car drives along Path. Progress only grows; once it would reach 1 the car
// is Finished and no longer posed.
type Car struct {
	Path     *path.Path
	Progress float64
	Speed    float64
	Finished bool
}

var CarComponent = NewComponent[Car]()
