package dataset

import (
	"strings"
	"testing"

	"github.com/rushteam/cinerec/core"
)

func TestReadMovies(t *testing.T) {
	csv := `movieId,title,genres
1,Toy Story (1995),Adventure|Animation|Children|Comedy|Fantasy
50,"Usual Suspects, The (1995)",Crime|Mystery|Thriller
`
	rows, err := ReadMovies(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadMovies() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].ID != 1 || rows[0].Title != "Toy Story (1995)" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	// 带引号的标题中逗号不拆列
	if rows[1].Title != "Usual Suspects, The (1995)" {
		t.Errorf("quoted title = %q", rows[1].Title)
	}
	if rows[1].Genres != "Crime|Mystery|Thriller" {
		t.Errorf("genres = %q", rows[1].Genres)
	}
}

func TestReadMoviesMalformed(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"bad id", "movieId,title,genres\nabc,Title,Drama\n"},
		{"missing columns", "movieId,title,genres\n1,OnlyTitle\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadMovies(strings.NewReader(tt.csv)); err == nil {
				t.Error("ReadMovies() should fail")
			}
		})
	}
}

func TestReadRatings(t *testing.T) {
	csv := `userId,movieId,rating,timestamp
1,1,4.0,964982703
1,3,0.5,964981247
2,1,5.0,964982224
`
	rows, err := ReadRatings(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadRatings() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].UserID != 1 || rows[0].MovieID != 1 || rows[0].Rating != 4.0 {
		t.Errorf("row 0 = %+v", rows[0])
	}
}

func TestReadRatingsOutOfRange(t *testing.T) {
	// 超界评分在摄入期拒绝而非截断
	tests := []struct {
		name string
		csv  string
	}{
		{"below min", "userId,movieId,rating,timestamp\n1,1,0.0,1\n"},
		{"above max", "userId,movieId,rating,timestamp\n1,1,5.5,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRatings(strings.NewReader(tt.csv))
			if !core.IsOutOfRange(err) {
				t.Errorf("error = %v, want OUT_OF_RANGE", err)
			}
		})
	}
}

func TestBuildCatalog(t *testing.T) {
	movies := []MovieRow{
		{ID: 1, Title: "Toy Story (1995)", Genres: "Adventure|Animation"},
		{ID: 2, Title: "Jumanji (1995)", Genres: "Adventure|Children"},
		{ID: 3, Title: "Heat (1995)", Genres: "Action|Crime"},
	}
	ratings := []RatingRow{
		{UserID: 1, MovieID: 3, Rating: 4.0, Timestamp: 100},
		{UserID: 1, MovieID: 1, Rating: 3.5, Timestamp: 200},
		{UserID: 2, MovieID: 3, Rating: 1.0, Timestamp: 300}, // 重复电影，保留首条评分
		{UserID: 2, MovieID: 99, Rating: 5.0, Timestamp: 400}, // 目录缺失，跳过
	}

	catalog, err := BuildCatalog(movies, ratings)
	if err != nil {
		t.Fatalf("BuildCatalog() error = %v", err)
	}

	// 只保留有评分的电影，顺序为日志中首次出现的顺序
	got := catalog.Movies()
	if len(got) != 2 {
		t.Fatalf("catalog has %d movies, want 2", len(got))
	}
	if got[0].ID != 3 || got[1].ID != 1 {
		t.Errorf("catalog order = [%d, %d], want [3, 1]", got[0].ID, got[1].ID)
	}
	// 聚合评分取首条
	if got[0].Rating != 4.0 {
		t.Errorf("movie 3 rating = %v, want first rating 4.0", got[0].Rating)
	}
}

func TestBuildCatalogNoRatedMovies(t *testing.T) {
	movies := []MovieRow{{ID: 1, Title: "Unrated", Genres: "Drama"}}

	_, err := BuildCatalog(movies, nil)
	if !core.IsEmptyCorpus(err) {
		t.Errorf("error = %v, want EMPTY_CORPUS", err)
	}
}
