// file: config/counters.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Counter is one physical service counter ("loket") and the specialty it serves.
type Counter struct {
	Loket      string   `yaml:"loket" json:"loketNumber"`
	Specialist string   `yaml:"specialist" json:"specialist"`
	Prefix     string   `yaml:"prefix" json:"prefix"`
	Doctors    []string `yaml:"doctors" json:"doctors"`
}

// Counters is the counter layout of the clinic.
type Counters struct {
	Counters []Counter `yaml:"counters" json:"counters"`
}

// DefaultCounters returns the four polyclinic counters.
func DefaultCounters() *Counters {
	return &Counters{Counters: []Counter{
		{Loket: "1", Specialist: "Poli Umum", Prefix: "A", Doctors: []string{
			"dr. Budi Santoso, Sp.PD", "dr. Ahmad Fauzi, Sp.PD", "dr. Rina Wijaya, Sp.PD",
		}},
		{Loket: "2", Specialist: "Poli Gigi", Prefix: "B", Doctors: []string{
			"drg. Siti Nurhaliza, Sp.KG", "drg. Dedi Kurniawan, Sp.KG", "drg. Maya Safitri",
		}},
		{Loket: "3", Specialist: "Poli Anak", Prefix: "C", Doctors: []string{
			"dr. Dewi Lestari, Sp.A", "dr. Rizki Pratama, Sp.A", "dr. Wati Kusuma, Sp.A",
		}},
		{Loket: "4", Specialist: "Poli Kandungan", Prefix: "D", Doctors: []string{
			"dr. Andi Wijaya, Sp.OG", "dr. Sri Rahayu, Sp.OG", "dr. Diana Putri, Sp.OG",
		}},
	}}
}

// LoadCounters returns the defaults when path is empty, otherwise the layout
// read from the YAML file at path.
func LoadCounters(path string) (*Counters, error) {
	if path == "" {
		return DefaultCounters(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read counters file %s: %w", path, err)
	}
	return ParseCounters(data)
}

// ParseCounters decodes and validates a YAML counter layout.
func ParseCounters(data []byte) (*Counters, error) {
	var c Counters
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse counters: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that lokets, specialists and prefixes are present and unique.
func (c *Counters) Validate() error {
	if len(c.Counters) == 0 {
		return fmt.Errorf("counter configuration is empty")
	}
	lokets := make(map[string]bool)
	specialists := make(map[string]bool)
	prefixes := make(map[string]bool)
	for i, ctr := range c.Counters {
		if ctr.Loket == "" || ctr.Specialist == "" || ctr.Prefix == "" {
			return fmt.Errorf("counter %d: loket, specialist and prefix are required", i)
		}
		if lokets[ctr.Loket] {
			return fmt.Errorf("counter %d: duplicate loket %q", i, ctr.Loket)
		}
		if specialists[ctr.Specialist] {
			return fmt.Errorf("counter %d: duplicate specialist %q", i, ctr.Specialist)
		}
		if prefixes[ctr.Prefix] {
			return fmt.Errorf("counter %d: duplicate prefix %q", i, ctr.Prefix)
		}
		lokets[ctr.Loket] = true
		specialists[ctr.Specialist] = true
		prefixes[ctr.Prefix] = true
	}
	return nil
}

// BySpecialist returns the counter serving the given specialty.
func (c *Counters) BySpecialist(specialist string) (Counter, bool) {
	for _, ctr := range c.Counters {
		if ctr.Specialist == specialist {
			return ctr, true
		}
	}
	return Counter{}, false
}

// HasLoket reports whether a counter with that number is configured.
func (c *Counters) HasLoket(loket string) bool {
	for _, ctr := range c.Counters {
		if ctr.Loket == loket {
			return true
		}
	}
	return false
}

// Lokets lists the configured counter numbers in configuration order.
func (c *Counters) Lokets() []string {
	out := make([]string, 0, len(c.Counters))
	for _, ctr := range c.Counters {
		out = append(out, ctr.Loket)
	}
	return out
}

