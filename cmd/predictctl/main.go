package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gayabelajar-api/internal/client"
	"gayabelajar-api/internal/common"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Parse command line arguments
	var (
		apiURL     = flag.String("url", "", "API base URL (default $PREDICT_API_URL or "+common.DefaultAPIURL+")")
		timeout    = flag.Duration("timeout", 5*time.Second, "Request timeout")
		health     = flag.Bool("health", false, "Query /health instead of predicting")
		raw        = flag.String("raw", "", "Raw JSON object to send as the request body")
		activeDays = flag.Float64("days", 0, "total_active_days")
		studyDur   = flag.Float64("study", 0, "avg_study_duration")
		examDur    = flag.Float64("exam", 0, "avg_exam_duration")
		rating     = flag.Float64("rating", 0, "avg_submission_rating")
		examScore  = flag.Float64("score", 0, "avg_exam_score")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	_ = godotenv.Load()

	base := *apiURL
	if base == "" {
		base = os.Getenv(common.EnvAPIURL)
	}
	if base == "" {
		base = common.DefaultAPIURL
	}

	c := client.New(base, *timeout)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *health {
		h, err := c.Health(ctx)
		if h != nil {
			printJSON(h)
		}
		if err != nil {
			log.Fatal().Err(err).Str("url", base).Msg("health check failed")
		}
		return
	}

	payload := map[string]any{
		common.FeatureTotalActiveDays:     *activeDays,
		common.FeatureAvgStudyDuration:    *studyDur,
		common.FeatureAvgExamDuration:     *examDur,
		common.FeatureAvgSubmissionRating: *rating,
		common.FeatureAvgExamScore:        *examScore,
	}
	if *raw != "" {
		payload = map[string]any{}
		if err := json.Unmarshal([]byte(*raw), &payload); err != nil {
			log.Fatal().Err(err).Msg("-raw must be a JSON object")
		}
	}

	pred, err := c.Predict(ctx, payload)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			log.Fatal().Int("status", apiErr.StatusCode).Str("message", apiErr.Message).Msg("prediction rejected")
		}
		log.Fatal().Err(err).Str("url", base).Msg("prediction request failed")
	}
	printJSON(pred)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
