package failure

import (
	"time"
)

type Type string

const (
	BearingOuterRace Type = "bearing_outer_race"
	BearingInnerRace Type = "bearing_inner_race"
	BearingFeed      Type = "bearing_feed"
	BearingDischarge Type = "bearing_discharge"
	LinerWear        Type = "liner_wear"
	MotorElectrical  Type = "motor_electrical"
	Lubrication      Type = "lubrication"

	// None labels rows outside every failure window.
	None Type = "normal"
)

// IsBearing reports whether the failure originates in a trunnion bearing.
func (t Type) IsBearing() bool {
	switch t {
	case BearingOuterRace, BearingInnerRace, BearingFeed, BearingDischarge:
		return true
	}
	return false
}

// Severity: 1 minor, 2 moderate, 3 critical.
type Severity int

const (
	SeverityMinor    Severity = 1
	SeverityModerate Severity = 2
	SeverityCritical Severity = 3
)

// Event is one scheduled synthetic failure. It is published to the failure
// queue and stored by the recorder.
type Event struct {
	RunID    string    `json:"run_id" bson:"run_id"`
	UnitID   string    `json:"unit_id" bson:"unit_id" validate:"required"`
	Time     time.Time `json:"failure_time" bson:"failure_time" validate:"required"`
	Type     Type      `json:"failure_type" bson:"failure_type" validate:"required"`
	Severity Severity  `json:"severity" bson:"severity" validate:"min=1,max=3"`
}
