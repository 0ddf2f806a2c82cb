package model

// Genre is an enumerated catalog category seeded at startup.
type Genre struct {
	ID   uint   `gorm:"primaryKey;column:genre_id" json:"genreId"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
}

// SeededGenres is the closed set populated on first boot.
var SeededGenres = []string{
	"FICTION",
	"NON_FICTION",
	"MYSTERY",
	"FANTASY",
	"SCIENCE_FICTION",
	"ROMANCE",
	"THRILLER",
	"HORROR",
	"BIOGRAPHY",
	"HISTORY",
	"POETRY",
	"CHILDRENS",
}
