package rtsp

import (
	"github.com/AlexxIT/rtpcast/pkg/rtsp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rtpcast_connections_active",
		Help: "Current number of control connections",
	})
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rtpcast_sessions_active",
		Help: "Current number of negotiated sessions",
	})
	streamsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rtpcast_streams_active",
		Help: "Current number of sessions in streaming state",
	})
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rtpcast_requests_total",
		Help: "Total number of control requests by method and response code",
	}, []string{"method", "code"})
	packetsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rtpcast_packets_sent_total",
		Help: "Total number of media packets sent",
	})
	bytesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rtpcast_payload_bytes_sent_total",
		Help: "Total number of media payload bytes sent",
	})
	streamFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rtpcast_stream_failures_total",
		Help: "Total number of media senders stopped by read or send error",
	})
)

func trackState(prev, next rtsp.Kind) {
	if prev == next {
		return
	}

	if prev == rtsp.KindIdle {
		sessionsActive.Inc()
	} else if next == rtsp.KindIdle {
		sessionsActive.Dec()
	}

	if prev == rtsp.KindStreaming {
		streamsActive.Dec()
	} else if next == rtsp.KindStreaming {
		streamsActive.Inc()
	}
}
