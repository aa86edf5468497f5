// Package websocket - websocket/metrics.go
// file: websocket/metrics.go

package websocket

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"go-loket-queue/logger"
)

// MetricsPublisher receives periodic hub statistics.
type MetricsPublisher interface {
	PublishHubStats(stats HubStats)
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

// PublishHubStats does nothing.
func (NoopMetrics) PublishHubStats(HubStats) {}

// CloudWatchMetrics pushes hub gauges and per-interval delivery counts.
type CloudWatchMetrics struct {
	client    cloudwatchiface.CloudWatchAPI
	namespace string
	last      map[string]ChannelStats
	now       func() time.Time
}

// NewCloudWatchMetrics creates a publisher using the default AWS credential chain.
func NewCloudWatchMetrics(namespace string) (*CloudWatchMetrics, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}
	return newCloudWatchMetrics(cloudwatch.New(sess), namespace), nil
}

func newCloudWatchMetrics(client cloudwatchiface.CloudWatchAPI, namespace string) *CloudWatchMetrics {
	return &CloudWatchMetrics{
		client:    client,
		namespace: namespace,
		last:      make(map[string]ChannelStats),
		now:       time.Now,
	}
}

// PublishHubStats sends one PutMetricData request per loket. Sent and
// dropped are reported as the change since the previous call.
func (m *CloudWatchMetrics) PublishHubStats(stats HubStats) {
	ts := m.now()
	for _, ch := range stats.Channels {
		prev := m.last[ch.Loket]
		m.last[ch.Loket] = ch
		m.putMetrics(ch.Loket, ts, []metricValue{
			{"Subscribers", float64(ch.Subscribers), cloudwatch.StandardUnitCount},
			{"MessagesSent", float64(ch.Sent - prev.Sent), cloudwatch.StandardUnitCount},
			{"MessagesDropped", float64(ch.Dropped - prev.Dropped), cloudwatch.StandardUnitCount},
			{"SnapshotsPublished", float64(ch.Published - prev.Published), cloudwatch.StandardUnitCount},
		})
	}
}

type metricValue struct {
	name  string
	value float64
	unit  string
}

// -----------------------------------------------------------
// internal helper function to package up CloudWatch calls
// -----------------------------------------------------------
func (m *CloudWatchMetrics) putMetrics(loket string, ts time.Time, values []metricValue) {
	data := make([]*cloudwatch.MetricDatum, 0, len(values))
	for _, v := range values {
		data = append(data, &cloudwatch.MetricDatum{
			MetricName: aws.String(v.name),
			Dimensions: []*cloudwatch.Dimension{
				{
					Name:  aws.String("Loket"),
					Value: aws.String(loket),
				},
			},
			Timestamp: aws.Time(ts),
			Value:     aws.Float64(v.value),
			Unit:      aws.String(v.unit),
		})
	}

	_, err := m.client.PutMetricData(&cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	if err != nil {
		logger.Error.Printf("[putMetrics] CloudWatch metric failed (loket %s): %v", loket, err)
	}
}

// RunMetricsReporter publishes hub stats every interval until ctx is done.
// Publishing happens here, never on the delivery path.
func RunMetricsReporter(ctx context.Context, hub *Hub, publisher MetricsPublisher, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			publisher.PublishHubStats(hub.Stats())
		}
	}
}
