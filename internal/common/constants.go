package common

// Feature names in the order the scaler and classifier were fitted with.
const (
	FeatureTotalActiveDays     = "total_active_days"
	FeatureAvgStudyDuration    = "avg_study_duration"
	FeatureAvgExamDuration     = "avg_exam_duration"
	FeatureAvgSubmissionRating = "avg_submission_rating"
	FeatureAvgExamScore        = "avg_exam_score"
)

// FeatureOrder is the column order of every feature vector. Do not reorder.
var FeatureOrder = [...]string{
	FeatureTotalActiveDays,
	FeatureAvgStudyDuration,
	FeatureAvgExamDuration,
	FeatureAvgSubmissionRating,
	FeatureAvgExamScore,
}

// NumFeatures is the width of a feature vector.
const NumFeatures = len(FeatureOrder)

// Environment variable keys
const (
	EnvConfigFile      = "CONFIG_FILE"
	EnvHTTPAddr        = "HTTP_ADDR"
	EnvPort            = "PORT"
	EnvBaseDir         = "BASE_DIR"
	EnvModelPath       = "MODEL_PATH"
	EnvScalerPath      = "SCALER_PATH"
	EnvAdvisoryFile    = "ADVISORY_FILE"
	EnvLogLevel        = "LOG_LEVEL"
	EnvLogFormat       = "LOG_FORMAT"
	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled  = "METRICS_ENABLED"
	EnvAPIURL          = "PREDICT_API_URL"
)

// Configuration defaults
const (
	DefaultHTTPAddr        = ":5000"
	DefaultModelPath       = "model_gaya_belajar_rf_augmented.json"
	DefaultScalerPath      = "scaler_gaya_belajar_augmented.json"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultReadTimeout     = "10s"
	DefaultWriteTimeout    = "10s"
	DefaultShutdownTimeout = "10s"
	DefaultAPIURL          = "http://localhost:5000"
)

// Response status discriminators
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Wire messages
const (
	LivenessMessage        = "API Machine Learning (With Insights) is Running!"
	ErrMsgModelNotLoaded   = "Model not loaded correctly on server."
	ErrMsgNotJSONObject    = "Format data harus JSON Object"
	FallbackAdvisoryText   = "Learning style not yet identified."
	ErrMsgInternalFallback = "internal server error"
)

// Validation constants
const (
	MaxRequestBodyBytes = 1 << 20
	MinTimeoutSeconds   = 1
	MaxTimeoutSeconds   = 300
)
