package segment

import (
	"github.com/decisio/retail-dss/internal/models"
)

// Run executes the full segmentation pipeline: RFM feature extraction,
// clustering with k clusters (clamped to the customer count) and segment
// labeling. withElbow additionally computes the inertia sweep used for
// elbow charts. The pipeline needs at least 2 customers.
func Run(rows []models.Transaction, k int, withElbow bool) (*models.SegmentationResult, error) {
	rfm, err := BuildRFM(rows)
	if err != nil {
		return nil, err
	}
	if len(rfm) < 2 {
		return nil, &models.InsufficientDataError{Need: 2, Got: len(rfm)}
	}
	if k > len(rfm) {
		k = len(rfm)
	}

	clustered, err := Cluster(rfm, k)
	if err != nil {
		return nil, err
	}

	res := &models.SegmentationResult{
		K:       k,
		Records: clustered,
		Summary: Summarize(clustered),
	}
	if withElbow {
		res.Inertia = Inertia(rfm, DefaultMaxK)
	}
	return res, nil
}
