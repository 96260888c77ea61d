// Package garmin implements the Garmin Connect side of the sync engine: a
// credential-authenticated HTTP client, the structured-workout wire format,
// the calendar schedule-entry resolver, and the sync service composing them
// with the session manager and result cache.
package garmin

// The workout-service schema requires most fields to be present even when
// unused; absent keys are rejected more often than null-valued ones. DTO
// fields therefore avoid omitempty unless the vendor tolerates omission.

// SportTypeDTO is the vendor's sport enumeration.
type SportTypeDTO struct {
	SportTypeID  int    `json:"sportTypeId"`
	SportTypeKey string `json:"sportTypeKey"`
}

// SubSportDTO refines a sport (structured swims require lap_swimming).
type SubSportDTO struct {
	SubSportTypeID  int    `json:"subSportTypeId"`
	SubSportTypeKey string `json:"subSportTypeKey"`
}

// StepTypeDTO classifies a step on the wire.
type StepTypeDTO struct {
	StepTypeID  int    `json:"stepTypeId"`
	StepTypeKey string `json:"stepTypeKey"`
}

// EndConditionDTO says how a step ends.
type EndConditionDTO struct {
	ConditionTypeID  int    `json:"conditionTypeId"`
	ConditionTypeKey string `json:"conditionTypeKey"`
}

// TargetTypeDTO classifies a step's intensity target.
type TargetTypeDTO struct {
	WorkoutTargetTypeID  int    `json:"workoutTargetTypeId"`
	WorkoutTargetTypeKey string `json:"workoutTargetTypeKey"`
}

// StrokeTypeDTO is the swim stroke enumeration.
type StrokeTypeDTO struct {
	StrokeTypeID  int    `json:"strokeTypeId"`
	StrokeTypeKey string `json:"strokeTypeKey"`
}

// UnitDTO names a measurement unit.
type UnitDTO struct {
	UnitKey string `json:"unitKey"`
}

var (
	sportRunning  = SportTypeDTO{SportTypeID: 1, SportTypeKey: "running"}
	sportCycling  = SportTypeDTO{SportTypeID: 2, SportTypeKey: "cycling"}
	sportSwimming = SportTypeDTO{SportTypeID: 4, SportTypeKey: "swimming"}

	subSportLapSwimming = SubSportDTO{SubSportTypeID: 17, SubSportTypeKey: "lap_swimming"}

	stepWarmup   = StepTypeDTO{StepTypeID: 1, StepTypeKey: "warmup"}
	stepCooldown = StepTypeDTO{StepTypeID: 2, StepTypeKey: "cooldown"}
	stepInterval = StepTypeDTO{StepTypeID: 3, StepTypeKey: "interval"}
	stepRecovery = StepTypeDTO{StepTypeID: 4, StepTypeKey: "recovery"}
	stepRest     = StepTypeDTO{StepTypeID: 5, StepTypeKey: "rest"}
	stepRepeat   = StepTypeDTO{StepTypeID: 6, StepTypeKey: "repeat"}

	endLapButton = EndConditionDTO{ConditionTypeID: 1, ConditionTypeKey: "lap.button"}
	endTime      = EndConditionDTO{ConditionTypeID: 2, ConditionTypeKey: "time"}
	endDistance  = EndConditionDTO{ConditionTypeID: 3, ConditionTypeKey: "distance"}

	targetNoTarget  = TargetTypeDTO{WorkoutTargetTypeID: 1, WorkoutTargetTypeKey: "no.target"}
	targetPower     = TargetTypeDTO{WorkoutTargetTypeID: 2, WorkoutTargetTypeKey: "power.zone"}
	targetCadence   = TargetTypeDTO{WorkoutTargetTypeID: 3, WorkoutTargetTypeKey: "cadence"}
	targetHeartRate = TargetTypeDTO{WorkoutTargetTypeID: 4, WorkoutTargetTypeKey: "heart.rate.zone"}
	targetPace      = TargetTypeDTO{WorkoutTargetTypeID: 6, WorkoutTargetTypeKey: "pace.zone"}
	targetSwimInstr = TargetTypeDTO{WorkoutTargetTypeID: 7, WorkoutTargetTypeKey: "swim.instruction"}

	strokeFreestyle = StrokeTypeDTO{StrokeTypeID: 6, StrokeTypeKey: "free"}
)

// defaultPoolLengthM is assumed when a swim workout carries no pool metadata.
const defaultPoolLengthM = 25.0

// StepDTO is one node of the vendor's step tree: an executable step or a
// repeat group wrapping child steps. Type discriminates the two shapes.
type StepDTO struct {
	Type      string      `json:"type"`
	StepID    *int        `json:"stepId"`
	StepOrder int         `json:"stepOrder"`
	StepType  StepTypeDTO `json:"stepType"`

	// Executable step fields.
	EndCondition      *EndConditionDTO `json:"endCondition,omitempty"`
	EndConditionValue *float64         `json:"endConditionValue"`
	TargetType        *TargetTypeDTO   `json:"targetType,omitempty"`
	TargetValueOne    *float64         `json:"targetValueOne"`
	TargetValueTwo    *float64         `json:"targetValueTwo"`
	ZoneNumber        *int             `json:"zoneNumber"`
	StrokeType        *StrokeTypeDTO   `json:"strokeType,omitempty"`

	// Repeat group fields.
	NumberOfIterations *int      `json:"numberOfIterations,omitempty"`
	SmartRepeat        bool      `json:"smartRepeat,omitempty"`
	WorkoutSteps       []StepDTO `json:"workoutSteps,omitempty"`
}

const (
	typeExecutableStep = "ExecutableStepDTO"
	typeRepeatGroup    = "RepeatGroupDTO"
)

// SegmentDTO groups a workout's steps under one sport.
type SegmentDTO struct {
	SegmentOrder int          `json:"segmentOrder"`
	SportType    SportTypeDTO `json:"sportType"`
	WorkoutSteps []StepDTO    `json:"workoutSteps"`
}

// WorkoutDTO is the vendor's structured workout definition.
type WorkoutDTO struct {
	WorkoutName     string       `json:"workoutName"`
	Description     string       `json:"description"`
	SportType       SportTypeDTO `json:"sportType"`
	SubSportType    *SubSportDTO `json:"subSportType,omitempty"`
	PoolLength      *float64     `json:"poolLength,omitempty"`
	PoolLengthUnit  *UnitDTO     `json:"poolLengthUnit,omitempty"`
	WorkoutSegments []SegmentDTO `json:"workoutSegments"`
}

// workoutCreated is the vendor's response to a workout push.
type workoutCreated struct {
	WorkoutID int64 `json:"workoutId"`
}

// scheduleCreated is the vendor's response to a schedule binding.
type scheduleCreated struct {
	WorkoutScheduleID int64 `json:"workoutScheduleId"`
}

// calendarFeed is one month of the vendor calendar.
type calendarFeed struct {
	CalendarItems []calendarItem `json:"calendarItems"`
}

// calendarItem is one feed entry. ID is the schedule-entry id (the handle
// for moves and deletes), distinct from WorkoutID.
type calendarItem struct {
	ID        int64  `json:"id"`
	ItemType  string `json:"itemType"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	WorkoutID int64  `json:"workoutId"`
}

// activityJSON is the vendor's activity list row.
type activityJSON struct {
	ActivityID     int64   `json:"activityId"`
	ActivityName   string  `json:"activityName"`
	StartTimeLocal string  `json:"startTimeLocal"`
	Distance       float64 `json:"distance"`
	Duration       float64 `json:"duration"`
	AverageHR      float64 `json:"averageHR"`
	MaxHR          float64 `json:"maxHR"`
	AverageSpeed   float64 `json:"averageSpeed"`
	StartLatitude  float64 `json:"startLatitude"`
	StartLongitude float64 `json:"startLongitude"`
	LocationName   string  `json:"locationName"`
	ActivityType   struct {
		TypeKey string `json:"typeKey"`
	} `json:"activityType"`
}
