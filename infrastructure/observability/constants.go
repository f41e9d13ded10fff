package observability

// Metric name prefixes
const (
	MetricPrefix = "tipster"
)

// Metric names
const (
	// Prediction lifecycle metrics
	PredictionsSubmittedTotal  = MetricPrefix + ".predictions.submitted_total"
	PredictionTransitionsTotal = MetricPrefix + ".predictions.transitions_total"

	// Sweep metrics
	SweepPromotedTotal = MetricPrefix + ".sweep.promoted_total"
	SweepFailuresTotal = MetricPrefix + ".sweep.failures_total"

	// HTTP metrics
	HTTPRequestsTotal   = MetricPrefix + ".http.requests_total"
	HTTPRequestDuration = MetricPrefix + ".http.request_duration"

	// NATS metrics
	NATSMessagesReceivedTotal  = MetricPrefix + ".nats.messages_received_total"
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// Database metrics
	DatabaseQueriesTotal  = MetricPrefix + ".database.queries_total"
	DatabaseQueryDuration = MetricPrefix + ".database.query_duration"
)

// Label keys
const (
	// Common labels
	LabelType      = "type"
	LabelEventType = "event_type"

	// HTTP labels
	LabelRoute  = "route"
	LabelStatus = "status"

	// Database labels
	LabelRepository = "repository"
	LabelMethod     = "method"
)

// Transition types
const (
	TransitionValidated = "validated"
	TransitionRejected  = "rejected"
	TransitionExpired   = "expired"
	TransitionResolved  = "resolved"
	TransitionDeleted   = "deleted"
)
