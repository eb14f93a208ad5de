package service_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/agroflow/agroflow-backend/internal/production/repository"
	"github.com/agroflow/agroflow-backend/internal/production/service"
)

func dec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestEvaluateSuitabilityNotWeatherDependent(t *testing.T) {
	task := &repository.Task{WeatherDependent: false}

	result := service.EvaluateSuitability(task, service.Conditions{
		Temperature:   decimal.NewFromInt(45),
		WindSpeed:     decimal.NewFromInt(120),
		Precipitation: decimal.NewFromInt(80),
	})

	assert.True(t, result.Suitable)
	assert.Empty(t, result.Violations)
}

func TestEvaluateSuitabilityPerAxis(t *testing.T) {
	task := &repository.Task{
		WeatherDependent: true,
		MinTemperature:   dec("5"),
		MaxTemperature:   dec("30"),
		MaxWindSpeed:     dec("40"),
		MaxPrecipitation: dec("10"),
	}

	tests := []struct {
		name       string
		conditions service.Conditions
		suitable   bool
		violations []string
	}{
		{
			"all within bounds",
			service.Conditions{Temperature: decimal.NewFromInt(20), WindSpeed: decimal.NewFromInt(10), Precipitation: decimal.NewFromInt(2)},
			true, nil,
		},
		{
			"too cold",
			service.Conditions{Temperature: decimal.NewFromInt(2), WindSpeed: decimal.NewFromInt(10), Precipitation: decimal.Zero},
			false, []string{"min_temperature"},
		},
		{
			"too hot and too windy",
			service.Conditions{Temperature: decimal.NewFromInt(35), WindSpeed: decimal.NewFromInt(60), Precipitation: decimal.Zero},
			false, []string{"max_temperature", "max_wind_speed"},
		},
		{
			"too wet",
			service.Conditions{Temperature: decimal.NewFromInt(20), WindSpeed: decimal.NewFromInt(10), Precipitation: decimal.NewFromInt(15)},
			false, []string{"max_precipitation"},
		},
		{
			"boundary values pass",
			service.Conditions{Temperature: decimal.NewFromInt(30), WindSpeed: decimal.NewFromInt(40), Precipitation: decimal.NewFromInt(10)},
			true, nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := service.EvaluateSuitability(task, tt.conditions)
			assert.Equal(t, tt.suitable, result.Suitable)
			for _, axis := range tt.violations {
				assert.Contains(t, result.Violations, axis)
			}
			assert.Len(t, result.Violations, len(tt.violations))
		})
	}
}

func TestEvaluateSuitabilityMissingThresholdUnconstrained(t *testing.T) {
	// Only wind is constrained; extreme temperature and rain must pass.
	task := &repository.Task{
		WeatherDependent: true,
		MaxWindSpeed:     dec("40"),
	}

	result := service.EvaluateSuitability(task, service.Conditions{
		Temperature:   decimal.NewFromInt(45),
		WindSpeed:     decimal.NewFromInt(20),
		Precipitation: decimal.NewFromInt(100),
	})

	assert.True(t, result.Suitable)
}
