// internal/workers/analytics/predict-attendance/models.go
package predictattendance

import (
	"event-insights-workers/internal/models"
	"event-insights-workers/internal/workers/analytics/forecastjob"
)

type Input = forecastjob.Input

// Output is the attendance forecast returned as job variables.
type Output = models.AttendanceForecast

var InputSchema = forecastjob.InputSchema
