package recall

import (
	"context"
	"testing"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/store"
)

func topRatedCatalog(t *testing.T) *core.Catalog {
	t.Helper()
	catalog, err := core.NewCatalog([]core.CatalogRow{
		{ID: 1, Title: "Toy Story (1995)", Genres: "Adventure|Animation", Rating: 4.0},
		{ID: 2, Title: "Jumanji (1995)", Genres: "Adventure|Children", Rating: 3.0},
		{ID: 3, Title: "Heat (1995)", Genres: "Action|Crime", Rating: 5.0},
		{ID: 4, Title: "Seven (1995)", Genres: "Mystery|Thriller", Rating: 4.5},
	})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return catalog
}

func TestTopRatedFromStore(t *testing.T) {
	ctx := context.Background()
	catalog := topRatedCatalog(t)
	kv := store.NewMemoryStore()
	defer kv.Close()

	if err := PublishTopRated(ctx, kv, "toprated:movies", catalog); err != nil {
		t.Fatalf("PublishTopRated() error = %v", err)
	}

	rec := &TopRated{Store: kv, Key: "toprated:movies", Catalog: catalog, TopK: 3}
	items, err := rec.Recall(ctx, nil)
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}

	// 有序集合按聚合评分降序
	want := []int64{3, 4, 1}
	for i, it := range items {
		if it.ID != want[i] {
			t.Errorf("position %d = %d, want %d", i, it.ID, want[i])
		}
		if lbl, ok := it.Labels["recall_source"]; !ok || lbl.Value != "toprated" {
			t.Errorf("item %d missing recall_source=toprated label", it.ID)
		}
	}
}

func TestTopRatedCatalogFallback(t *testing.T) {
	catalog := topRatedCatalog(t)

	// 无存储时回退到内存目录排序
	rec := &TopRated{Catalog: catalog, TopK: 2}
	items, err := rec.Recall(context.Background(), nil)
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != 3 || items[1].ID != 4 {
		t.Errorf("order = [%d, %d], want [3, 4]", items[0].ID, items[1].ID)
	}
}

func TestTopRatedEmpty(t *testing.T) {
	rec := &TopRated{}
	items, err := rec.Recall(context.Background(), nil)
	if err != nil || items != nil {
		t.Errorf("Recall() = (%v, %v), want (nil, nil)", items, err)
	}
}
