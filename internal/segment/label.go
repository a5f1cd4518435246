package segment

import (
	"sort"

	"github.com/decisio/retail-dss/internal/models"
)

// Summarize aggregates clustered RFM records into per-cluster averages
// (rounded to 1 decimal) and assigns segment labels. Returned summaries
// are sorted by cluster id.
func Summarize(records []models.RFMRecord) []models.ClusterSummary {
	type agg struct {
		recency, frequency, monetary float64
		count                        int
	}
	byCluster := make(map[int]*agg)
	for _, r := range records {
		a, ok := byCluster[r.Cluster]
		if !ok {
			a = &agg{}
			byCluster[r.Cluster] = a
		}
		a.recency += float64(r.RecencyDays)
		a.frequency += float64(r.Frequency)
		a.monetary += r.Monetary
		a.count++
	}

	out := make([]models.ClusterSummary, 0, len(byCluster))
	for c, a := range byCluster {
		n := float64(a.count)
		out = append(out, models.ClusterSummary{
			Cluster:      c,
			AvgRecency:   round1(a.recency / n),
			AvgFrequency: round1(a.frequency / n),
			AvgMonetary:  round1(a.monetary / n),
			Customers:    a.count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cluster < out[j].Cluster })

	labels := labelClusters(out)
	for i := range out {
		out[i].Segment = labels[out[i].Cluster]
	}
	return out
}

// labelClusters maps cluster ids to semantic segment names:
//
//   - a single cluster is "General";
//   - otherwise the highest avg monetary cluster is "VIP" and the lowest
//     is "Churn";
//   - remaining "middle" clusters are ranked by recency ascending, then
//     frequency descending, then monetary descending, and labeled
//     positionally depending on how many there are.
func labelClusters(summary []models.ClusterSummary) map[int]string {
	labels := make(map[int]string, len(summary))
	if len(summary) == 0 {
		return labels
	}
	if len(summary) == 1 {
		labels[summary[0].Cluster] = "General"
		return labels
	}

	byMonetary := make([]models.ClusterSummary, len(summary))
	copy(byMonetary, summary)
	sort.SliceStable(byMonetary, func(i, j int) bool {
		return byMonetary[i].AvgMonetary > byMonetary[j].AvgMonetary
	})
	labels[byMonetary[0].Cluster] = "VIP"
	labels[byMonetary[len(byMonetary)-1].Cluster] = "Churn"

	middle := byMonetary[1 : len(byMonetary)-1]
	sort.SliceStable(middle, func(i, j int) bool {
		a, b := middle[i], middle[j]
		if a.AvgRecency != b.AvgRecency {
			return a.AvgRecency < b.AvgRecency
		}
		if a.AvgFrequency != b.AvgFrequency {
			return a.AvgFrequency > b.AvgFrequency
		}
		return a.AvgMonetary > b.AvgMonetary
	})

	var names []string
	switch len(middle) {
	case 0:
	case 1:
		names = []string{"Potential"}
	case 2:
		names = []string{"Active Potential", "Dormant Potential"}
	case 3:
		names = []string{"High-Value Potential", "Engaged Potential", "Needs Attention Potential"}
	case 4:
		names = []string{"High-Value Potential", "Engaged Potential", "Regular Potential", "Needs Attention Potential"}
	default:
		for _, m := range middle {
			labels[m.Cluster] = "Potential"
		}
	}
	for i, name := range names {
		labels[middle[i].Cluster] = name
	}
	return labels
}
