package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// config holds everything a run needs to know up front: the fixed USD rate,
// the fiscal year used to complete day/month-only dates, the two category
// dictionaries and the unconditional exclusion list. It is loaded once and
// never mutated afterwards; every component receives it explicitly so tests
// can supply their own.
type config struct {
	USDRate      float64    `yaml:"usd_rate"`
	FiscalYear   string     `yaml:"fiscal_year"`
	CountryCode  string     `yaml:"country_code"`
	MobilePrefix string     `yaml:"mobile_prefix"`
	Exclude      []string   `yaml:"exclude"`
	Categories   dictionary `yaml:"categories"`
	Groups       dictionary `yaml:"groups"`
}

// defaultConfig is what a run gets when no config file is given. The
// dictionaries here mirror the ones the business actually uses; declaration
// order matters and must not be reshuffled.
func defaultConfig() *config {
	return &config{
		USDRate:      950,
		FiscalYear:   "2025",
		CountryCode:  "56",
		MobilePrefix: "9",
		Categories: dictionary{
			{Name: "Publicidad Meta", Keywords: []string{"facebook", "facebk", "meta platforms", "instagram"}},
			{Name: "Publicidad Google", Keywords: []string{"google ads", "google adw", "adwords"}},
			{Name: "Combustible", Keywords: []string{"copec", "shell", "petrobras", "aramco"}},
			{Name: "Peajes", Keywords: []string{"autopista", "costanera norte", "vespucio", "peaje"}},
			{Name: "Arriendo", Keywords: []string{"arriendo", "inmobiliaria"}},
			{Name: "Sueldos", Keywords: []string{"remuneracion", "sueldo", "honorarios"}},
			{Name: "Software", Keywords: []string{"openai", "dropbox", "canva", "godaddy", "wix"}},
			{Name: "Mantención Vehículos", Keywords: []string{"neumatic", "lubricentro", "automotriz", "vulcanizacion"}},
			{Name: "Insumos", Keywords: []string{"lider", "jumbo", "unimarc", "sodimac", "easy"}},
			{Name: "Comisiones Bancarias", Keywords: []string{"comision", "mantencion cta", "impuesto dfl"}},
		},
		Groups: dictionary{
			{Name: "Costos Fijos", Keywords: []string{"arriendo", "sueldos", "software", "comisiones"}},
			{Name: "Costos Variables", Keywords: []string{"publicidad", "combustible", "peajes", "insumos"}},
			{Name: "Inversión", Keywords: []string{"mantención", "equipamiento"}},
		},
	}
}

// loadConfig reads a YAML config from path. Fields left unset in the file keep
// their defaults, so a config file only needs to say what differs.
func loadConfig(path string) (*config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read config %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "unable to parse config %s", path)
	}
	return c, nil
}

// excluded reports whether a description is on the unconditional exclusion
// list. Matching is case-insensitive on the trimmed description.
func (c *config) excluded(desc string) bool {
	desc = strings.ToLower(strings.TrimSpace(desc))
	for _, e := range c.Exclude {
		if desc == strings.ToLower(strings.TrimSpace(e)) {
			return true
		}
	}
	return false
}
