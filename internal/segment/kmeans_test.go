package segment

import (
	"reflect"
	"testing"

	"github.com/decisio/retail-dss/internal/models"
)

// threeGroups builds 12 customers in three well-separated RFM regions.
func threeGroups() []models.RFMRecord {
	var out []models.RFMRecord
	add := func(id string, rec, freq int, mon float64) {
		out = append(out, models.RFMRecord{CustomerID: id, RecencyDays: rec, Frequency: freq, Monetary: mon})
	}
	// recent, frequent, big spenders
	add("a1", 2, 20, 5000)
	add("a2", 3, 22, 5200)
	add("a3", 1, 19, 4900)
	add("a4", 4, 21, 5100)
	// middling
	add("b1", 40, 5, 800)
	add("b2", 42, 6, 850)
	add("b3", 38, 4, 780)
	add("b4", 41, 5, 820)
	// long gone
	add("c1", 300, 1, 30)
	add("c2", 310, 1, 25)
	add("c3", 290, 2, 40)
	add("c4", 305, 1, 35)
	return out
}

func distinctClusters(records []models.RFMRecord) map[int]int {
	out := make(map[int]int)
	for _, r := range records {
		out[r.Cluster]++
	}
	return out
}

func TestClusterProducesKClusters(t *testing.T) {
	for _, k := range []int{2, 3, 4} {
		got, err := Cluster(threeGroups(), k)
		if err != nil {
			t.Fatalf("k=%d: unexpected error: %v", k, err)
		}
		if n := len(distinctClusters(got)); n != k {
			t.Errorf("k=%d: expected %d distinct clusters, got %d", k, k, n)
		}
	}
}

func TestClusterSeparatesObviousGroups(t *testing.T) {
	got, err := Cluster(threeGroups(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byPrefix := make(map[byte]map[int]bool)
	for _, r := range got {
		p := r.CustomerID[0]
		if byPrefix[p] == nil {
			byPrefix[p] = make(map[int]bool)
		}
		byPrefix[p][r.Cluster] = true
	}
	for p, clusters := range byPrefix {
		if len(clusters) != 1 {
			t.Errorf("group %q split across clusters %v", p, clusters)
		}
	}
}

func TestClusterDeterministic(t *testing.T) {
	first, err := Cluster(threeGroups(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Cluster(threeGroups(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical inputs produced different assignments")
	}
}

func TestClusterDoesNotMutateInput(t *testing.T) {
	in := threeGroups()
	in[0].Cluster = -1
	if _, err := Cluster(in, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in[0].Cluster != -1 {
		t.Fatal("input slice was mutated")
	}
}

func TestClusterSingleCustomer(t *testing.T) {
	got, err := Cluster([]models.RFMRecord{{CustomerID: "only", Monetary: 10, Frequency: 1}}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Cluster != 0 {
		t.Fatalf("single customer should land in cluster 0, got %d", got[0].Cluster)
	}
}

func TestClusterClampsKToCustomerCount(t *testing.T) {
	records := threeGroups()[:3]
	got, err := Cluster(records, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(distinctClusters(got)); n != 3 {
		t.Fatalf("expected 3 clusters for 3 customers, got %d", n)
	}
}

func TestClusterRejectsOutOfRangeK(t *testing.T) {
	for _, k := range []int{0, 1, 7} {
		if _, err := Cluster(threeGroups(), k); err == nil {
			t.Errorf("k=%d: expected error", k)
		}
	}
}

func TestInertiaDecreasesWithK(t *testing.T) {
	sse := Inertia(threeGroups(), DefaultMaxK)
	if len(sse) != DefaultMaxK {
		t.Fatalf("expected %d values, got %d", DefaultMaxK, len(sse))
	}
	if sse[0] <= sse[2] {
		t.Errorf("inertia should shrink from k=1 (%v) to k=3 (%v)", sse[0], sse[2])
	}
}

func TestInertiaPadsWhenFewCustomers(t *testing.T) {
	sse := Inertia(threeGroups()[:2], DefaultMaxK)
	if len(sse) != DefaultMaxK {
		t.Fatalf("expected %d values, got %d", DefaultMaxK, len(sse))
	}
	for k := 2; k < DefaultMaxK; k++ {
		if sse[k] != 0 {
			t.Errorf("expected zero padding at k=%d, got %v", k+1, sse[k])
		}
	}
}
