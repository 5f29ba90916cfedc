package thomson

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"
)

// Species is an ionization target: an atom or a molecule.
type Species struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`

	// First ionization potential, J, in eV.
	IonizationPotential float64 `json:"ionization_potential"`

	// Number of electrons in the outer shell(s) taking part in ionization.
	ValenceElectrons int `json:"valence_electrons"`
}

// ReducedEnergy is ReducedEnergy with the species' ionization potential.
func (s Species) ReducedEnergy(energies []float64) []float64 {
	return ReducedEnergy(energies, s.IonizationPotential)
}

// ReducedCrossSection is ReducedCrossSection with the species' constants.
func (s Species) ReducedCrossSection(crossSections []float64) []float64 {
	return ReducedCrossSection(crossSections, s.IonizationPotential, s.ValenceElectrons)
}

// AllSpecies returns the species parsed from species.json.
// Parsing occurs only once.
func AllSpecies() ([]Species, error) {
	once.Do(func() {
		data, err := file.ReadFile("species.json")
		if err != nil {
			loadErr = err
			return
		}
		loadErr = json.Unmarshal(data, &instance)
	})
	return instance, loadErr
}

// LookupSpecies finds a species by its symbol, e.g. "Ar" or "N2".
func LookupSpecies(symbol string) (Species, error) {
	all, err := AllSpecies()
	if err != nil {
		return Species{}, err
	}
	for _, s := range all {
		if s.Symbol == symbol {
			return s, nil
		}
	}
	return Species{}, fmt.Errorf("unknown species %q", symbol)
}

//go:embed species.json
var file embed.FS

var (
	instance []Species // singleton
	loadErr  error
	once     sync.Once
)
