package intervals

import (
	"fmt"
	"math"
	"strings"

	"github.com/claude/stridesync/internal/models"
)

// ToDescription renders a workout's step tree as the plain-text lines this
// vendor shows the athlete, its only representation of structure. Warmup
// and cooldown steps render as labeled lines, repeat steps as a
// "Main set Nx" header followed by one line per child, and recovery/rest
// legs without an explicit target carry a trailing "rest" marker. Heart
// rate targets render as percent of max when maxHeartRate is known,
// absolute bpm otherwise.
func ToDescription(w models.Workout, maxHeartRate *int) string {
	var lines []string
	for _, step := range w.Steps {
		if step.IsRepeat() {
			count := defaultRepeatCount
			if step.RepeatCount != nil && *step.RepeatCount >= 1 {
				count = *step.RepeatCount
			}
			lines = append(lines, fmt.Sprintf("Main set %dx:", count))
			for _, child := range step.Steps {
				lines = append(lines, "- "+stepLine(child, maxHeartRate))
			}
			continue
		}
		switch step.Type {
		case models.StepWarmup:
			lines = append(lines, "Warmup: "+stepLine(step, maxHeartRate))
		case models.StepCooldown:
			lines = append(lines, "Cooldown: "+stepLine(step, maxHeartRate))
		default:
			lines = append(lines, stepLine(step, maxHeartRate))
		}
	}
	return strings.Join(lines, "\n")
}

// defaultRepeatCount mirrors the structured-push fallback for a repeat
// step without an explicit count.
const defaultRepeatCount = 2

func stepLine(s models.WorkoutStep, maxHR *int) string {
	line := formatDuration(s)
	if target := formatTarget(s, maxHR); target != "" {
		return line + " @ " + target
	}
	if s.Type == models.StepRecovery || s.Type == models.StepRest {
		return line + " rest"
	}
	return line
}

func formatDuration(s models.WorkoutStep) string {
	if s.DurationValue == nil {
		return "until lap press"
	}
	switch s.DurationType {
	case models.DurationDistance:
		meters := *s.DurationValue
		if meters >= 1000 && math.Mod(meters, 100) == 0 {
			km := meters / 1000
			return strings.TrimSuffix(fmt.Sprintf("%.1f", km), ".0") + "km"
		}
		return fmt.Sprintf("%.0fm", meters)
	case models.DurationTime:
		total := int(*s.DurationValue)
		minutes, seconds := total/60, total%60
		switch {
		case minutes == 0:
			return fmt.Sprintf("%ds", seconds)
		case seconds == 0:
			return fmt.Sprintf("%dm", minutes)
		default:
			return fmt.Sprintf("%dm%ds", minutes, seconds)
		}
	default:
		return "until lap press"
	}
}

func formatTarget(s models.WorkoutStep, maxHR *int) string {
	low, high := s.TargetLow, s.TargetHigh
	if low == nil && high == nil {
		return ""
	}
	switch s.TargetType {
	case models.TargetHeartRate:
		if maxHR != nil && *maxHR > 0 {
			return rangeText(percent(low, *maxHR), percent(high, *maxHR)) + "% max HR"
		}
		return rangeText(low, high) + "bpm"
	case models.TargetPaceZone:
		return paceRange(low, high) + "/km"
	case models.TargetPowerZone:
		return rangeText(low, high) + "W"
	case models.TargetCadence:
		return rangeText(low, high) + "rpm"
	default:
		return ""
	}
}

func percent(v *float64, maxHR int) *float64 {
	if v == nil {
		return nil
	}
	p := math.Round(*v / float64(maxHR) * 100)
	return &p
}

func rangeText(low, high *float64) string {
	switch {
	case low != nil && high != nil && *low != *high:
		return fmt.Sprintf("%.0f-%.0f", *low, *high)
	case low != nil:
		return fmt.Sprintf("%.0f", *low)
	default:
		return fmt.Sprintf("%.0f", *high)
	}
}

func paceRange(low, high *float64) string {
	switch {
	case low != nil && high != nil && *low != *high:
		return paceText(*low) + "-" + paceText(*high)
	case low != nil:
		return paceText(*low)
	case high != nil:
		return paceText(*high)
	default:
		return ""
	}
}

// paceText formats seconds-per-km as m:ss.
func paceText(secPerKm float64) string {
	total := int(math.Round(secPerKm))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
