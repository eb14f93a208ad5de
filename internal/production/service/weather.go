package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/agroflow/agroflow-backend/internal/production/repository"
)

// Conditions are the observed weather values a task is evaluated against
type Conditions struct {
	Temperature   decimal.Decimal `json:"temperature"`
	WindSpeed     decimal.Decimal `json:"wind_speed"`
	Precipitation decimal.Decimal `json:"precipitation"`
}

// SuitabilityResult is the verdict of a weather suitability evaluation.
// Violations name each threshold axis the conditions break.
type SuitabilityResult struct {
	Suitable   bool              `json:"suitable"`
	Violations map[string]string `json:"violations,omitempty"`
}

// EvaluateSuitability checks observed conditions against a task's thresholds.
// A missing threshold places no constraint on its axis. Tasks that are not
// weather dependent are always suitable.
func EvaluateSuitability(task *repository.Task, conditions Conditions) SuitabilityResult {
	if !task.WeatherDependent {
		return SuitabilityResult{Suitable: true}
	}

	violations := make(map[string]string)

	if task.MinTemperature != nil && conditions.Temperature.LessThan(*task.MinTemperature) {
		violations["min_temperature"] = fmt.Sprintf(
			"temperature %s below minimum %s",
			conditions.Temperature, task.MinTemperature)
	}
	if task.MaxTemperature != nil && conditions.Temperature.GreaterThan(*task.MaxTemperature) {
		violations["max_temperature"] = fmt.Sprintf(
			"temperature %s above maximum %s",
			conditions.Temperature, task.MaxTemperature)
	}
	if task.MaxWindSpeed != nil && conditions.WindSpeed.GreaterThan(*task.MaxWindSpeed) {
		violations["max_wind_speed"] = fmt.Sprintf(
			"wind speed %s above maximum %s",
			conditions.WindSpeed, task.MaxWindSpeed)
	}
	if task.MaxPrecipitation != nil && conditions.Precipitation.GreaterThan(*task.MaxPrecipitation) {
		violations["max_precipitation"] = fmt.Sprintf(
			"precipitation %s above maximum %s",
			conditions.Precipitation, task.MaxPrecipitation)
	}

	if len(violations) > 0 {
		return SuitabilityResult{Suitable: false, Violations: violations}
	}
	return SuitabilityResult{Suitable: true}
}

// hasWeatherThreshold reports whether at least one gating threshold is set
func hasWeatherThreshold(task *repository.Task) bool {
	return task.MinTemperature != nil ||
		task.MaxTemperature != nil ||
		task.MaxWindSpeed != nil ||
		task.MaxPrecipitation != nil
}
