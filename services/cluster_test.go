package services

import (
	"math"
	"reflect"
	"testing"

	"product-intel/models"
)

func catalog() []models.ClusterItem {
	return []models.ClusterItem{
		{ID: 1, Name: "Redmi Note 11", Description: "Smartphone with AMOLED display, 50MP camera and 5000mAh battery", Price: models.Float(13999)},
		{ID: 2, Name: "Assam Tea", Description: "Strong Assam tea leaves with a malty aroma", Price: models.Float(385)},
		{ID: 3, Name: "Galaxy M32", Description: "Smartphone camera with big battery and AMOLED display", Price: models.Float(16999)},
		{ID: 4, Name: "Green Tea", Description: "Organic green tea leaves, light aroma", Price: nil},
	}
}

func TestClusterByDescriptionTooFewItems(t *testing.T) {
	for n := 0; n < 3; n++ {
		if got := ClusterByDescription(catalog()[:n]); len(got) != 0 {
			t.Errorf("ClusterByDescription(%d items) = %v; want empty", n, got)
		}
	}
}

func TestClusterByDescriptionPartitionsFourItemsIntoTwo(t *testing.T) {
	got := ClusterByDescription(catalog())
	if len(got) != 2 {
		t.Fatalf("got %d clusters, want 2", len(got))
	}

	where := map[int64]int{}
	for id, members := range got {
		if len(members) == 0 {
			t.Errorf("cluster %d is empty", id)
		}
		for _, m := range members {
			if _, dup := where[m.ID]; dup {
				t.Errorf("item %d appears in more than one cluster", m.ID)
			}
			where[m.ID] = id
		}
	}
	if len(where) != 4 {
		t.Fatalf("partition covers %d items, want 4", len(where))
	}
	if where[1] != where[3] || where[2] != where[4] || where[1] == where[2] {
		t.Errorf("phones and teas not separated: %v", where)
	}
}

func TestClusterByDescriptionMissingPriceIsZero(t *testing.T) {
	for _, members := range ClusterByDescription(catalog()) {
		for _, m := range members {
			if m.ID == 4 && m.Price != 0 {
				t.Errorf("price for item without price = %v; want 0", m.Price)
			}
			if m.ID == 3 && (m.Price != 16999 || m.Name != "Galaxy M32") {
				t.Errorf("member projection: %+v", m)
			}
		}
	}
}

func TestClusterByDescriptionDeterministic(t *testing.T) {
	first := ClusterByDescription(catalog())
	for i := 0; i < 3; i++ {
		if again := ClusterByDescription(catalog()); !reflect.DeepEqual(first, again) {
			t.Fatalf("assignment changed between runs: %v then %v", first, again)
		}
	}
}

func TestClusterByDescriptionClusterCount(t *testing.T) {
	tests := []struct{ items, want int }{{3, 1}, {5, 2}, {10, 5}, {14, 5}}
	for _, tt := range tests {
		items := make([]models.ClusterItem, tt.items)
		for i := range items {
			// identical, stop-word only descriptions still yield k groups
			items[i] = models.ClusterItem{ID: int64(i + 1), Description: "the and of"}
		}
		got := ClusterByDescription(items)
		if len(got) != tt.want {
			t.Errorf("%d items: got %d clusters, want %d", tt.items, len(got), tt.want)
		}
		total := 0
		for _, m := range got {
			if len(m) == 0 {
				t.Errorf("%d items: empty cluster in %v", tt.items, got)
			}
			total += len(m)
		}
		if total != tt.items {
			t.Errorf("%d items: partition holds %d", tt.items, total)
		}
	}
}

func TestVectorizerNormalisesAndCapsVocabulary(t *testing.T) {
	vocab, rows := Vectorizer{MaxTerms: 3}.FitTransform([]string{
		"The camera is great and the camera is sharp",
		"great battery",
		"",
	})
	if len(vocab) != 3 {
		t.Fatalf("vocabulary %v; want 3 terms", vocab)
	}
	for _, term := range vocab {
		if englishStopWords[term] {
			t.Errorf("stop word %q in vocabulary", term)
		}
	}
	for i, row := range rows[:2] {
		var norm float64
		for _, v := range row {
			norm += v * v
		}
		if math.Abs(norm-1) > 1e-9 {
			t.Errorf("row %d has squared norm %v; want 1", i, norm)
		}
	}
	for _, v := range rows[2] {
		if v != 0 {
			t.Errorf("empty document produced %v", rows[2])
		}
	}
}

func TestTopFeatures(t *testing.T) {
	got := TopFeatures([]string{"battery life great", "battery life poor", "camera great"})
	if len(got) == 0 || len(got) > 10 {
		t.Fatalf("got %d features", len(got))
	}
	if got[0].Feature != "battery" {
		t.Errorf("top feature %q; want battery", got[0].Feature)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("features not sorted by score: %v", got)
		}
	}
	if f := TopFeatures(nil); len(f) != 0 {
		t.Errorf("TopFeatures(nil) = %v", f)
	}
}

func TestClusterRequest(t *testing.T) {
	resp := Cluster(models.ClusterRequest{Category: "Mixed", Items: catalog()})
	if len(resp.Clusters) != 2 {
		t.Errorf("Cluster returned %d groups; want 2", len(resp.Clusters))
	}
	if got := Cluster(models.ClusterRequest{Category: "Empty"}).Clusters; got == nil || len(got) != 0 {
		t.Errorf("empty request = %v; want empty assignment", got)
	}
}
