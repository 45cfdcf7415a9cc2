// Package telemetry emits operational metrics to CloudWatch. Metric
// publication is best-effort: failures are logged and never propagate
// into the decision path.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"fishcast/internal/types"
)

// CloudWatchClient abstracts PutMetricData for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Dimension is one metric dimension pair.
type Dimension struct {
	Name  string
	Value string
}

// Dim builds a Dimension.
func Dim(name, value string) Dimension {
	return Dimension{Name: name, Value: value}
}

// MetricPublisher is the point-of-use interface services consume.
type MetricPublisher interface {
	Count(ctx context.Context, name string, value float64, dims ...Dimension)
	Duration(ctx context.Context, name string, d time.Duration, dims ...Dimension)
}

// CloudWatchPublisher publishes to the FishCast namespace.
type CloudWatchPublisher struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

var _ MetricPublisher = (*CloudWatchPublisher)(nil)

// NewCloudWatchPublisher creates a publisher for types.MetricNamespace.
func NewCloudWatchPublisher(client CloudWatchClient, logger *slog.Logger) *CloudWatchPublisher {
	return &CloudWatchPublisher{
		client:    client,
		namespace: types.MetricNamespace,
		logger:    logger,
	}
}

// Count emits a count metric.
func (p *CloudWatchPublisher) Count(ctx context.Context, name string, value float64, dims ...Dimension) {
	p.put(ctx, name, value, cwtypes.StandardUnitCount, dims)
}

// Duration emits a latency metric in milliseconds.
func (p *CloudWatchPublisher) Duration(ctx context.Context, name string, d time.Duration, dims ...Dimension) {
	p.put(ctx, name, float64(d.Milliseconds()), cwtypes.StandardUnitMilliseconds, dims)
}

func (p *CloudWatchPublisher) put(ctx context.Context, name string, value float64, unit cwtypes.StandardUnit, dims []Dimension) {
	datum := cwtypes.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
	}
	for _, d := range dims {
		datum.Dimensions = append(datum.Dimensions, cwtypes.Dimension{
			Name:  aws.String(d.Name),
			Value: aws.String(d.Value),
		})
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(p.namespace),
		MetricData: []cwtypes.MetricDatum{datum},
	}

	if _, err := p.client.PutMetricData(ctx, input); err != nil {
		p.logger.WarnContext(ctx, "failed to publish metric",
			"metric", name,
			"error", err,
		)
	}
}

// NoopPublisher discards all metrics. Used by the CLI and tests.
type NoopPublisher struct{}

var _ MetricPublisher = NoopPublisher{}

func (NoopPublisher) Count(context.Context, string, float64, ...Dimension)          {}
func (NoopPublisher) Duration(context.Context, string, time.Duration, ...Dimension) {}
