package sim

import (
	"math"

	"github.com/milk9111/crosswalk/common"
	"github.com/milk9111/crosswalk/ecs"
	"github.com/milk9111/crosswalk/ecs/component"
)

const (
	// Car models are built with their long axis across +Z.
	carYawCorrection = math.Pi / 2

	idleSwayRate      = 1.5
	idleSwayAmplitude = 0.08
	idleBobRate       = 2.0
	idleBobAmplitude  = 0.02

	walkBobRate      = 12
	walkBobAmplitude = 0.06
)

// UpdateCars advances every car by speed*dt. A car whose progress reaches 1
// is marked finished and keeps its last pose.
func UpdateCars(s *Simulation, dt float64) {
	ecs.ForEach2(s.world, component.CarComponent.Kind(), component.PoseComponent.Kind(),
		func(_ ecs.Entity, car *component.Car, pose *component.Pose) {
			if car.Finished {
				return
			}
			car.Progress += car.Speed * dt
			if car.Progress >= 1 {
				car.Finished = true
				return
			}
			*pose = carPose(car)
		})
}

func carPose(car *component.Car) component.Pose {
	pos := car.Path.PointAt(car.Progress)
	yaw := common.Yaw(car.Path.TangentAt(car.Progress)) + carYawCorrection
	return component.Pose{Position: pos, Yaw: yaw, Rotation: common.YawQuat(yaw)}
}

// UpdatePedestrians sways waiting pedestrians in place and walks released
// ones toward their destination. A pedestrian reaching the end is completed
// and its visual released on the spot; the sweep drops it afterwards.
func UpdatePedestrians(s *Simulation, dt float64) {
	ecs.ForEach2(s.world, component.PedestrianComponent.Kind(), component.PoseComponent.Kind(),
		func(e ecs.Entity, ped *component.Pedestrian, pose *component.Pose) {
			if ped.Completed {
				return
			}
			if ped.Waiting {
				*pose = idlePose(ped, s.elapsed)
				return
			}
			ped.Progress += ped.Speed * dt
			if ped.Progress >= 1 {
				ped.Completed = true
				s.presenter.AgentRemoved(e)
				return
			}
			*pose = walkPose(ped, s.elapsed)
		})
}

func idlePose(ped *component.Pedestrian, elapsed float64) component.Pose {
	phase := elapsed + ped.IdleOffset
	yaw := common.Yaw(ped.End.Sub(ped.Start)) + math.Sin(phase*idleSwayRate)*idleSwayAmplitude
	pos := ped.Start
	pos[1] += math.Sin(phase*idleBobRate) * idleBobAmplitude
	return component.Pose{Position: pos, Yaw: yaw, Rotation: common.YawQuat(yaw)}
}

func walkPose(ped *component.Pedestrian, elapsed float64) component.Pose {
	pos := common.LerpVec3(ped.Start, ped.End, math.Max(0, ped.Progress))
	pos[1] += math.Abs(math.Sin(elapsed*walkBobRate+ped.IdleOffset)) * walkBobAmplitude
	yaw := common.Yaw(ped.End.Sub(ped.Start))
	return component.Pose{Position: pos, Yaw: yaw, Rotation: common.YawQuat(yaw)}
}
