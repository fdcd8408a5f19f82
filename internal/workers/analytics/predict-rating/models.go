// internal/workers/analytics/predict-rating/models.go
package predictrating

import (
	"event-insights-workers/internal/models"
	"event-insights-workers/internal/workers/analytics/forecastjob"
)

type Input = forecastjob.Input

// Output is the rating forecast returned as job variables.
type Output = models.RatingForecast

var InputSchema = forecastjob.InputSchema
