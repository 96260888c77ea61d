package garmin

import (
	"github.com/claude/stridesync/internal/models"
)

// ToWorkout converts a vendor-neutral workout into the vendor's structured
// wire format. Pure and total: unknown sports fall back to running, unknown
// step types to interval, unknown targets to no-target, and a repeat step
// without a count iterates twice. A malformed workout degrades rather than
// aborting a user-visible push.
func ToWorkout(w models.Workout) WorkoutDTO {
	sport := toSportType(w.Sport)

	dto := WorkoutDTO{
		WorkoutName: w.Name,
		Description: w.Description,
		SportType:   sport,
		WorkoutSegments: []SegmentDTO{{
			SegmentOrder: 1,
			SportType:    sport,
		}},
	}

	// The structured-swim format requires a sub-sport and pool metadata.
	swimming := w.Sport == models.SportSwimming
	if swimming {
		sub := subSportLapSwimming
		pool := defaultPoolLengthM
		dto.SubSportType = &sub
		dto.PoolLength = &pool
		dto.PoolLengthUnit = &UnitDTO{UnitKey: "meter"}
	}

	order := 0
	steps := make([]StepDTO, 0, len(w.Steps))
	for _, s := range w.Steps {
		steps = append(steps, toStep(s, swimming, &order))
	}
	dto.WorkoutSegments[0].WorkoutSteps = steps
	return dto
}

// defaultRepeatCount applies when a repeat step carries no explicit count.
const defaultRepeatCount = 2

func toStep(s models.WorkoutStep, swimming bool, order *int) StepDTO {
	*order++
	if s.IsRepeat() {
		count := defaultRepeatCount
		if s.RepeatCount != nil && *s.RepeatCount >= 1 {
			count = *s.RepeatCount
		}
		children := make([]StepDTO, 0, len(s.Steps))
		myOrder := *order
		for _, child := range s.Steps {
			children = append(children, toStep(child, swimming, order))
		}
		return StepDTO{
			Type:               typeRepeatGroup,
			StepID:             nil,
			StepOrder:          myOrder,
			StepType:           stepRepeat,
			NumberOfIterations: &count,
			WorkoutSteps:       children,
		}
	}

	dto := StepDTO{
		Type:      typeExecutableStep,
		StepID:    nil,
		StepOrder: *order,
		StepType:  toStepType(s.Type),
	}
	setEndCondition(&dto, s)
	setTarget(&dto, s, swimming)
	if swimming {
		stroke := toStroke(s.Stroke)
		dto.StrokeType = &stroke
	}
	return dto
}

func setEndCondition(dto *StepDTO, s models.WorkoutStep) {
	switch s.DurationType {
	case models.DurationTime:
		cond := endTime
		dto.EndCondition = &cond
		dto.EndConditionValue = s.DurationValue
	case models.DurationDistance:
		cond := endDistance
		dto.EndCondition = &cond
		dto.EndConditionValue = s.DurationValue
	default:
		cond := endLapButton
		dto.EndCondition = &cond
		dto.EndConditionValue = nil
	}
}

func setTarget(dto *StepDTO, s models.WorkoutStep, swimming bool) {
	switch s.TargetType {
	case models.TargetPaceZone:
		t := targetPace
		dto.TargetType = &t
		dto.TargetValueOne, dto.TargetValueTwo = paceToSpeedBounds(s.TargetLow, s.TargetHigh)
	case models.TargetHeartRate:
		t := targetHeartRate
		dto.TargetType = &t
		dto.TargetValueOne = s.TargetLow
		dto.TargetValueTwo = s.TargetHigh
	case models.TargetPowerZone:
		t := targetPower
		dto.TargetType = &t
		dto.TargetValueOne = s.TargetLow
		dto.TargetValueTwo = s.TargetHigh
	case models.TargetCadence:
		t := targetCadence
		dto.TargetType = &t
		dto.TargetValueOne = s.TargetLow
		dto.TargetValueTwo = s.TargetHigh
	default:
		// The vendor has no generic "no target" for swim legs; those take
		// the swim-instruction marker instead.
		t := targetNoTarget
		if swimming {
			t = targetSwimInstr
		}
		dto.TargetType = &t
	}
}

// paceToSpeedBounds converts a pace window in seconds-per-km to the
// vendor's speed window in meters-per-second. Inverting flips the ordering
// (a faster pace is a smaller number of seconds but a larger speed), so
// the bounds are re-sorted to keep low <= high.
func paceToSpeedBounds(lowPace, highPace *float64) (*float64, *float64) {
	toSpeed := func(secPerKm *float64) *float64 {
		if secPerKm == nil || *secPerKm <= 0 {
			return nil
		}
		v := 1000.0 / *secPerKm
		return &v
	}
	lowSpeed := toSpeed(highPace)
	highSpeed := toSpeed(lowPace)
	if lowSpeed != nil && highSpeed != nil && *lowSpeed > *highSpeed {
		lowSpeed, highSpeed = highSpeed, lowSpeed
	}
	if lowSpeed == nil {
		lowSpeed = highSpeed
		highSpeed = nil
	}
	return lowSpeed, highSpeed
}

func toSportType(s models.Sport) SportTypeDTO {
	switch s {
	case models.SportCycling:
		return sportCycling
	case models.SportSwimming:
		return sportSwimming
	case models.SportRunning:
		return sportRunning
	default:
		return sportRunning
	}
}

func toStepType(t models.StepType) StepTypeDTO {
	switch t {
	case models.StepWarmup:
		return stepWarmup
	case models.StepCooldown:
		return stepCooldown
	case models.StepRecovery:
		return stepRecovery
	case models.StepRest:
		return stepRest
	case models.StepInterval:
		return stepInterval
	default:
		return stepInterval
	}
}

func toStroke(stroke string) StrokeTypeDTO {
	switch stroke {
	case "backstroke":
		return StrokeTypeDTO{StrokeTypeID: 2, StrokeTypeKey: "backstroke"}
	case "breaststroke":
		return StrokeTypeDTO{StrokeTypeID: 3, StrokeTypeKey: "breaststroke"}
	case "butterfly":
		return StrokeTypeDTO{StrokeTypeID: 4, StrokeTypeKey: "fly"}
	default:
		return strokeFreestyle
	}
}
