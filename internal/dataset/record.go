// Package dataset assembles per-unit operational records into the mill
// dataset, derives trend and anomaly features and slices the modelling views.
package dataset

import "time"

// Record is one row of the mill dataset: one unit at one timestamp.
type Record struct {
	Timestamp time.Time
	UnitID    string
	Shift     string

	FeedRate         float64
	SpeedRPM         float64
	SpeedPctCritical float64
	BallCharge       float64
	PulpDensity      float64
	WaterAdded       float64
	CyclonePressure  float64

	VibFeedH      float64
	VibFeedV      float64
	VibDischargeH float64
	VibDischargeV float64
	VibShellH     float64
	VibShellV     float64
	VibPinion     float64
	VibGearbox    float64

	TempBearingFeed      float64
	TempBearingDischarge float64
	TempLubeOil          float64
	TempMotor            float64
	TempGearbox          float64

	MotorCurrent float64
	ActivePower  float64
	MotorVoltage float64
	PowerFactor  float64

	OilPressure   float64
	OilFlow       float64
	OilTankLevel  float64
	OilQualityPPM float64

	SpecificEnergy     float64
	Throughput         float64
	GrindingEfficiency float64
	ProductP80         float64

	LinerWear       float64
	OperatingHours  int
	StartStopCycles int

	CirculatingLoad          float64
	ClassificationEfficiency float64

	WorkIndex        float64
	Hardness         float64
	OreMoisture      float64
	FeedP80          float64
	OreDensity       float64
	ClayContent      float64
	Abrasiveness     float64
	AmbientTemp      float64
	RelativeHumidity float64

	Failure7d     bool
	Failure14d    bool
	Failure30d    bool
	FailureType   string
	Severity      int
	DaysToFailure float64

	VibrationTrend7d   float64
	TemperatureTrend7d float64
	EnergyTrend24h     float64
	ThroughputTrend24h float64

	P80Ratio                    float64
	NetSpecificPower            float64
	TheoreticalEnergyEfficiency float64

	AnomalyVibration  float64
	AnomalyElectrical float64
}
