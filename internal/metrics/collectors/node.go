package collectors

import (
	"github.com/prometheus/client_golang/prometheus"
)

// NodeStats is the view of node state the collector samples at scrape time.
type NodeStats interface {
	Length() int
	MempoolLen() int
	PeerLen() int
}

// NodeCollector exports the chain height, mempool size and peer count of the
// running node.
type NodeCollector struct {
	stats       NodeStats
	chainHeight *prometheus.Desc
	mempoolSize *prometheus.Desc
	peerCount   *prometheus.Desc
}

func NewNodeCollector(stats NodeStats) *NodeCollector {
	return &NodeCollector{
		stats: stats,
		chainHeight: prometheus.NewDesc(
			prometheus.BuildFQName("tanahd", "chain", "height"),
			"Number of blocks in the local chain",
			nil,
			nil,
		),
		mempoolSize: prometheus.NewDesc(
			prometheus.BuildFQName("tanahd", "mempool", "size"),
			"Number of pending transactions in the local mempool",
			nil,
			nil,
		),
		peerCount: prometheus.NewDesc(
			prometheus.BuildFQName("tanahd", "peers", "count"),
			"Number of registered peer nodes",
			nil,
			nil,
		),
	}
}

func (c *NodeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.chainHeight
	ch <- c.mempoolSize
	ch <- c.peerCount
}

func (c *NodeCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.chainHeight, prometheus.GaugeValue, float64(c.stats.Length()))
	ch <- prometheus.MustNewConstMetric(c.mempoolSize, prometheus.GaugeValue, float64(c.stats.MempoolLen()))
	ch <- prometheus.MustNewConstMetric(c.peerCount, prometheus.GaugeValue, float64(c.stats.PeerLen()))
}
