package dataset

import (
	"testing"

	"github.com/rushteam/cinerec/core"
)

func interactionsCatalog(t *testing.T) *core.Catalog {
	t.Helper()
	catalog, err := core.NewCatalog([]core.CatalogRow{
		{ID: 1, Title: "Toy Story (1995)", Genres: "Adventure|Animation", Rating: 4.0},
		{ID: 2, Title: "Jumanji (1995)", Genres: "Adventure|Children", Rating: 3.0},
		{ID: 3, Title: "Heat (1995)", Genres: "Action|Crime", Rating: 5.0},
		{ID: 4, Title: "Seven (1995)", Genres: "Mystery|Thriller", Rating: 1.0},
		{ID: 5, Title: "Casino (1995)", Genres: "Crime|Drama", Rating: 2.5},
	})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return catalog
}

func TestBuildInteractionsNormalization(t *testing.T) {
	in, err := BuildInteractions(interactionsCatalog(t), InteractionsConfig{})
	if err != nil {
		t.Fatalf("BuildInteractions() error = %v", err)
	}

	if in.MinRating != 1.0 || in.MaxRating != 5.0 {
		t.Errorf("observed extremes = (%v, %v), want (1.0, 5.0)", in.MinRating, in.MaxRating)
	}

	var sawZero, sawOne bool
	for _, ex := range in.Examples {
		if ex.Rating < 0 || ex.Rating > 1 {
			t.Fatalf("normalized rating %v outside [0,1]", ex.Rating)
		}
		if ex.Rating == 0 {
			sawZero = true
		}
		if ex.Rating == 1 {
			sawOne = true
		}
	}
	// 观测极值映射到区间端点
	if !sawZero || !sawOne {
		t.Errorf("endpoints missing: sawZero=%v sawOne=%v", sawZero, sawOne)
	}
}

func TestBuildInteractionsEncodings(t *testing.T) {
	catalog := interactionsCatalog(t)
	in, err := BuildInteractions(catalog, InteractionsConfig{})
	if err != nil {
		t.Fatalf("BuildInteractions() error = %v", err)
	}

	n := catalog.Len()
	if in.FilmCodes.Len() != n || in.Labels.Len() != n {
		t.Errorf("encoding sizes = (%d, %d), want (%d, %d)",
			in.FilmCodes.Len(), in.Labels.Len(), n, n)
	}
	if len(in.Examples) != n {
		t.Errorf("got %d examples, want %d (one per movie)", len(in.Examples), n)
	}

	// 两套编码独立构建：film code 与 display label 各归各
	for _, m := range catalog.Movies() {
		if _, ok := in.FilmCodes.Encode(m.FilmCode); !ok {
			t.Errorf("film code %q missing from encoding", m.FilmCode)
		}
		if _, ok := in.Labels.Encode(m.Label); !ok {
			t.Errorf("label %q missing from encoding", m.Label)
		}
	}
}

func TestBuildInteractionsShuffleDeterministic(t *testing.T) {
	catalog := interactionsCatalog(t)

	a, err := BuildInteractions(catalog, InteractionsConfig{Seed: 42})
	if err != nil {
		t.Fatalf("BuildInteractions() error = %v", err)
	}
	b, err := BuildInteractions(catalog, InteractionsConfig{Seed: 42})
	if err != nil {
		t.Fatalf("BuildInteractions() error = %v", err)
	}

	for i := range a.Examples {
		if a.Examples[i] != b.Examples[i] {
			t.Fatalf("same seed diverged at example %d: %+v vs %+v",
				i, a.Examples[i], b.Examples[i])
		}
	}
}

func TestBuildInteractionsAllRatingsEqual(t *testing.T) {
	catalog, err := core.NewCatalog([]core.CatalogRow{
		{ID: 1, Title: "A", Genres: "Drama", Rating: 3.0},
		{ID: 2, Title: "B", Genres: "Comedy", Rating: 3.0},
	})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	_, err = BuildInteractions(catalog, InteractionsConfig{})
	if err == nil {
		t.Fatal("BuildInteractions() should fail when all ratings are equal")
	}
	domainErr := core.GetDomainError(err)
	if domainErr == nil || domainErr.Code != core.ErrorCodeInvalidInput {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestInteractionsSplit(t *testing.T) {
	in, err := BuildInteractions(interactionsCatalog(t), InteractionsConfig{})
	if err != nil {
		t.Fatalf("BuildInteractions() error = %v", err)
	}

	train, val := in.Split(0.8)
	if len(train) != 4 || len(val) != 1 {
		t.Errorf("split sizes = (%d, %d), want (4, 1)", len(train), len(val))
	}

	// 非法比例回退到 0.8
	train2, val2 := in.Split(0)
	if len(train2) != len(train) || len(val2) != len(val) {
		t.Errorf("Split(0) = (%d, %d), want default split (%d, %d)",
			len(train2), len(val2), len(train), len(val))
	}
}

func TestInteractionsPairSet(t *testing.T) {
	in, err := BuildInteractions(interactionsCatalog(t), InteractionsConfig{})
	if err != nil {
		t.Fatalf("BuildInteractions() error = %v", err)
	}

	pairs := in.PairSet()
	for _, ex := range in.Examples {
		if _, ok := pairs[ex.Film][ex.Label]; !ok {
			t.Errorf("pair (%d, %d) missing from PairSet", ex.Film, ex.Label)
		}
	}
}

func TestInteractionsDenormalize(t *testing.T) {
	in, err := BuildInteractions(interactionsCatalog(t), InteractionsConfig{})
	if err != nil {
		t.Fatalf("BuildInteractions() error = %v", err)
	}

	if got := in.Denormalize(0); got != in.MinRating {
		t.Errorf("Denormalize(0) = %v, want %v", got, in.MinRating)
	}
	if got := in.Denormalize(1); got != in.MaxRating {
		t.Errorf("Denormalize(1) = %v, want %v", got, in.MaxRating)
	}
}

func TestBuildInteractionsEmptyCatalog(t *testing.T) {
	_, err := BuildInteractions(&core.Catalog{}, InteractionsConfig{})
	if !core.IsEmptyCorpus(err) {
		t.Errorf("error = %v, want EMPTY_CORPUS", err)
	}
}
