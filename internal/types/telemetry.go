package types

// Telemetry metric names for CloudWatch.
// All components MUST use these constants.
const (
	// Metric Names
	MetricDecisionLatency   = "DecisionLatency"
	MetricDecisionGenerated = "DecisionGenerated"
	MetricDecisionNoGo      = "DecisionNoGo"
	MetricRulesFired        = "RulesFired"
	MetricWeatherFallback   = "WeatherFallback"
	MetricArchiveFailure    = "ArchiveFailure"
	MetricRefreshDispatched = "RefreshDispatched"
	MetricAPILatency        = "APILatency"

	// Dimension Keys
	DimRegion      = "Region"
	DimDataQuality = "DataQuality"
	DimEndpoint    = "Endpoint"
	DimReason      = "Reason"
	DimStatus      = "Status"

	// Metric Namespace
	MetricNamespace = "FishCast"
)
