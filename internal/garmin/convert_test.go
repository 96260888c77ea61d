package garmin

import (
	"math"
	"testing"

	"github.com/claude/stridesync/internal/models"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// TestToWorkoutIntervalSession verifies a typical run: warmup, a repeat
// block, cooldown, with orders assigned depth-first across the whole tree.
func TestToWorkoutIntervalSession(t *testing.T) {
	w := models.Workout{
		Name:  "Interval Run",
		Sport: models.SportRunning,
		Steps: []models.WorkoutStep{
			{Type: models.StepWarmup, DurationType: models.DurationTime, DurationValue: fptr(600)},
			{Type: models.StepRepeat, RepeatCount: iptr(4), Steps: []models.WorkoutStep{
				{Type: models.StepInterval, DurationType: models.DurationDistance, DurationValue: fptr(1000),
					TargetType: models.TargetPaceZone, TargetLow: fptr(250), TargetHigh: fptr(270)},
				{Type: models.StepRecovery, DurationType: models.DurationTime, DurationValue: fptr(120)},
			}},
			{Type: models.StepCooldown, DurationType: models.DurationTime, DurationValue: fptr(300)},
		},
	}

	dto := ToWorkout(w)

	if dto.SportType != sportRunning {
		t.Errorf("sportType = %+v, want running", dto.SportType)
	}
	if len(dto.WorkoutSegments) != 1 {
		t.Fatalf("segments = %d, want 1", len(dto.WorkoutSegments))
	}
	steps := dto.WorkoutSegments[0].WorkoutSteps
	if len(steps) != 3 {
		t.Fatalf("top-level steps = %d, want 3", len(steps))
	}

	warmup := steps[0]
	if warmup.Type != typeExecutableStep || warmup.StepType != stepWarmup {
		t.Errorf("warmup shape = %s/%+v", warmup.Type, warmup.StepType)
	}
	if warmup.EndCondition == nil || *warmup.EndCondition != endTime || *warmup.EndConditionValue != 600 {
		t.Errorf("warmup end condition = %+v/%v", warmup.EndCondition, warmup.EndConditionValue)
	}
	if warmup.StepOrder != 1 {
		t.Errorf("warmup order = %d, want 1", warmup.StepOrder)
	}

	repeat := steps[1]
	if repeat.Type != typeRepeatGroup || repeat.StepType != stepRepeat {
		t.Errorf("repeat shape = %s/%+v", repeat.Type, repeat.StepType)
	}
	if repeat.NumberOfIterations == nil || *repeat.NumberOfIterations != 4 {
		t.Errorf("iterations = %v, want 4", repeat.NumberOfIterations)
	}
	if repeat.StepOrder != 2 {
		t.Errorf("repeat order = %d, want 2", repeat.StepOrder)
	}
	if len(repeat.WorkoutSteps) != 2 {
		t.Fatalf("repeat children = %d, want 2", len(repeat.WorkoutSteps))
	}
	if repeat.WorkoutSteps[0].StepOrder != 3 || repeat.WorkoutSteps[1].StepOrder != 4 {
		t.Errorf("child orders = %d, %d, want 3, 4",
			repeat.WorkoutSteps[0].StepOrder, repeat.WorkoutSteps[1].StepOrder)
	}
	if steps[2].StepOrder != 5 {
		t.Errorf("cooldown order = %d, want 5", steps[2].StepOrder)
	}
}

// TestPaceInversion verifies the sec/km to m/s conversion with re-sorted
// bounds: the faster pace (fewer seconds) becomes the higher speed.
func TestPaceInversion(t *testing.T) {
	step := models.WorkoutStep{
		Type: models.StepInterval, DurationType: models.DurationDistance, DurationValue: fptr(1000),
		TargetType: models.TargetPaceZone, TargetLow: fptr(250), TargetHigh: fptr(270),
	}
	order := 0
	dto := toStep(step, false, &order)

	if dto.TargetType == nil || *dto.TargetType != targetPace {
		t.Fatalf("targetType = %+v, want pace.zone", dto.TargetType)
	}
	if dto.TargetValueOne == nil || dto.TargetValueTwo == nil {
		t.Fatal("expected both speed bounds")
	}
	if !almost(*dto.TargetValueOne, 1000.0/270.0) {
		t.Errorf("low speed = %v, want %v", *dto.TargetValueOne, 1000.0/270.0)
	}
	if !almost(*dto.TargetValueTwo, 1000.0/250.0) {
		t.Errorf("high speed = %v, want %v", *dto.TargetValueTwo, 1000.0/250.0)
	}
	if *dto.TargetValueOne > *dto.TargetValueTwo {
		t.Error("speed bounds must stay ordered low <= high")
	}
}

// TestPaceSingleBound verifies a one-sided pace window converts to a single
// speed bound without inventing the other.
func TestPaceSingleBound(t *testing.T) {
	one, two := paceToSpeedBounds(fptr(300), nil)
	if one == nil || !almost(*one, 1000.0/300.0) {
		t.Errorf("bound = %v, want %v", one, 1000.0/300.0)
	}
	if two != nil {
		t.Errorf("second bound = %v, want nil", *two)
	}
}

// TestPaceNonPositiveIgnored verifies that a zero or negative pace cannot
// produce a speed bound.
func TestPaceNonPositiveIgnored(t *testing.T) {
	one, two := paceToSpeedBounds(fptr(0), fptr(-10))
	if one != nil || two != nil {
		t.Errorf("bounds = %v, %v, want nil, nil", one, two)
	}
}

// TestRepeatDefaultCount verifies a repeat without an explicit count
// iterates twice.
func TestRepeatDefaultCount(t *testing.T) {
	step := models.WorkoutStep{Type: models.StepRepeat, Steps: []models.WorkoutStep{
		{Type: models.StepInterval, DurationType: models.DurationTime, DurationValue: fptr(60)},
	}}
	order := 0
	dto := toStep(step, false, &order)
	if dto.NumberOfIterations == nil || *dto.NumberOfIterations != defaultRepeatCount {
		t.Errorf("iterations = %v, want %d", dto.NumberOfIterations, defaultRepeatCount)
	}
}

// TestSwimWorkoutDefaults verifies the structured-swim quirks: lap_swimming
// sub-sport, 25m pool, swim.instruction in place of no.target, and the
// freestyle stroke default.
func TestSwimWorkoutDefaults(t *testing.T) {
	w := models.Workout{
		Name:  "Easy Swim",
		Sport: models.SportSwimming,
		Steps: []models.WorkoutStep{
			{Type: models.StepInterval, DurationType: models.DurationDistance, DurationValue: fptr(400)},
		},
	}
	dto := ToWorkout(w)

	if dto.SubSportType == nil || *dto.SubSportType != subSportLapSwimming {
		t.Errorf("subSport = %+v, want lap_swimming", dto.SubSportType)
	}
	if dto.PoolLength == nil || *dto.PoolLength != defaultPoolLengthM {
		t.Errorf("poolLength = %v, want %v", dto.PoolLength, defaultPoolLengthM)
	}
	if dto.PoolLengthUnit == nil || dto.PoolLengthUnit.UnitKey != "meter" {
		t.Errorf("poolLengthUnit = %+v, want meter", dto.PoolLengthUnit)
	}

	step := dto.WorkoutSegments[0].WorkoutSteps[0]
	if step.TargetType == nil || *step.TargetType != targetSwimInstr {
		t.Errorf("targetType = %+v, want swim.instruction", step.TargetType)
	}
	if step.StrokeType == nil || *step.StrokeType != strokeFreestyle {
		t.Errorf("stroke = %+v, want freestyle", step.StrokeType)
	}
}

// TestSwimStrokeMapping verifies explicit strokes map to vendor ids and
// unknown strokes fall back to freestyle.
func TestSwimStrokeMapping(t *testing.T) {
	cases := []struct {
		stroke string
		wantID int
	}{
		{"backstroke", 2},
		{"breaststroke", 3},
		{"butterfly", 4},
		{"freestyle", 6},
		{"sidestroke", 6},
		{"", 6},
	}
	for _, tc := range cases {
		if got := toStroke(tc.stroke); got.StrokeTypeID != tc.wantID {
			t.Errorf("toStroke(%q).StrokeTypeID = %d, want %d", tc.stroke, got.StrokeTypeID, tc.wantID)
		}
	}
}

// TestUnknownEnumFallbacks verifies the converter never fails: unknown
// sports become running, unknown step types interval, unknown targets
// no.target, and a missing duration ends on the lap button.
func TestUnknownEnumFallbacks(t *testing.T) {
	w := models.Workout{
		Name:  "Mystery",
		Sport: models.Sport("rowing"),
		Steps: []models.WorkoutStep{
			{Type: models.StepType("surge"), TargetType: models.TargetType("feel")},
		},
	}
	dto := ToWorkout(w)

	if dto.SportType != sportRunning {
		t.Errorf("sportType = %+v, want running fallback", dto.SportType)
	}
	step := dto.WorkoutSegments[0].WorkoutSteps[0]
	if step.StepType != stepInterval {
		t.Errorf("stepType = %+v, want interval fallback", step.StepType)
	}
	if step.TargetType == nil || *step.TargetType != targetNoTarget {
		t.Errorf("targetType = %+v, want no.target fallback", step.TargetType)
	}
	if step.EndCondition == nil || *step.EndCondition != endLapButton {
		t.Errorf("endCondition = %+v, want lap.button fallback", step.EndCondition)
	}
	if step.EndConditionValue != nil {
		t.Errorf("endConditionValue = %v, want nil for lap.button", *step.EndConditionValue)
	}
}

// TestHeartRateTargetPassesThrough verifies bpm bounds are not converted.
func TestHeartRateTargetPassesThrough(t *testing.T) {
	step := models.WorkoutStep{
		Type: models.StepInterval, DurationType: models.DurationTime, DurationValue: fptr(300),
		TargetType: models.TargetHeartRate, TargetLow: fptr(150), TargetHigh: fptr(165),
	}
	order := 0
	dto := toStep(step, false, &order)
	if dto.TargetType == nil || *dto.TargetType != targetHeartRate {
		t.Fatalf("targetType = %+v, want heart.rate.zone", dto.TargetType)
	}
	if *dto.TargetValueOne != 150 || *dto.TargetValueTwo != 165 {
		t.Errorf("bounds = %v, %v, want 150, 165", *dto.TargetValueOne, *dto.TargetValueTwo)
	}
}
