// internal/workers/analytics/predict-sentiment/models.go
package predictsentiment

import (
	"event-insights-workers/internal/models"
	"event-insights-workers/internal/workers/analytics/forecastjob"
)

type Input = forecastjob.Input

// Output is the sentiment forecast returned as job variables.
type Output = models.SentimentForecast

var InputSchema = forecastjob.InputSchema
