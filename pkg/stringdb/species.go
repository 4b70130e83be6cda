package stringdb

import (
	"fmt"
	"strconv"
	"strings"
)

// NCBI taxonomy ids of the organisms known by name.
const (
	TaxonHuman     = 9606
	TaxonMouse     = 10090
	TaxonRat       = 10116
	TaxonFruitFly  = 7227
	TaxonZebrafish = 7955
)

var speciesBook = map[string]int{
	"human":                   TaxonHuman,
	"homo sapiens":            TaxonHuman,
	"mouse":                   TaxonMouse,
	"mus musculus":            TaxonMouse,
	"rat":                     TaxonRat,
	"rattus norvegicus":       TaxonRat,
	"fruit fly":               TaxonFruitFly,
	"drosophila melanogaster": TaxonFruitFly,
	"zebrafish":               TaxonZebrafish,
	"danio rerio":             TaxonZebrafish,
}

// ResolveSpecies turns a common name, a latin name or a numeric taxon id into a taxon id.
func ResolveSpecies(name string) (int, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	if id, ok := speciesBook[key]; ok {
		return id, nil
	}

	id, err := strconv.Atoi(key)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q (try mouse, human, rat, fruit fly, zebrafish or a taxon id)", ErrUnknownSpecies, name)
	}

	return id, nil
}
