package sim

// CarSettings control car spawning. Speeds are in progress units per second,
// times in seconds.
type CarSettings struct {
	SpeedMin        float64
	SpeedMax        float64
	IntervalMin     float64
	IntervalMax     float64
	InitialDelayMax float64
}

func DefaultCarSettings() CarSettings {
	return CarSettings{
		SpeedMin:        0.018,
		SpeedMax:        0.030,
		IntervalMin:     2,
		IntervalMax:     5,
		InitialDelayMax: 2,
	}
}

// PedestrianSettings control the waiting batch. PerWaypointMax is exclusive.
type PedestrianSettings struct {
	PerWaypointMin int
	PerWaypointMax int
	SpeedMin       float64
	SpeedMax       float64
	RingInner      float64
	RingOuter      float64
	DestJitter     float64
	Stagger        float64
}

func DefaultPedestrianSettings() PedestrianSettings {
	return PedestrianSettings{
		PerWaypointMin: 12,
		PerWaypointMax: 20,
		SpeedMin:       0.025,
		SpeedMax:       0.040,
		RingInner:      3,
		RingOuter:      8,
		DestJitter:     4,
		Stagger:        0.1,
	}
}
