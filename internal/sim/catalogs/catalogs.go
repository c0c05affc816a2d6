package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Jolva/SuperQuester-sub001/internal/sim/hunt"
)

type Catalogs struct {
	Encounters EncounterCatalog
	Hostiles   HostileCatalog
}

// EncounterCatalog is the immutable template table supplied by the quest
// system. Ordered keeps catalog-file order for stable offer lists.
type EncounterCatalog struct {
	ByID    map[string]hunt.EncounterDef
	Ordered []string
	Digest  string
}

type HostileCatalog struct {
	ByID   map[string]HostileKindDef
	Digest string
}

type HostileKindDef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	MaxHP int    `json:"max_hp"`

	// BurnsInDaylight marks kinds destroyed by passive sun exposure;
	// spawned encounter units of these kinds get a standing sun ward.
	BurnsInDaylight bool `json:"burns_in_daylight,omitempty"`
}

// Load reads encounters.json and hostiles.json from configDir, validating
// each against its schema under configDir/schemas before decoding.
func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadEncounters(configDir, &c.Encounters); err != nil {
		return nil, err
	}
	if err := loadHostiles(configDir, &c.Hostiles); err != nil {
		return nil, err
	}

	// Cross-check: every group references a known hostile kind.
	for _, id := range c.Encounters.Ordered {
		def := c.Encounters.ByID[id]
		for _, g := range def.Groups {
			if _, ok := c.Hostiles.ByID[g.Kind]; !ok {
				return nil, fmt.Errorf("encounter %s: unknown hostile kind %q", id, g.Kind)
			}
		}
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func validateAgainstSchema(configDir, schemaName string, raw []byte) error {
	schemaPath := filepath.Join(configDir, "schemas", schemaName)
	s, err := jsonschema.Compile(schemaPath)
	if err != nil {
		return fmt.Errorf("compile %s: %w", schemaName, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%s: %w", schemaName, err)
	}
	return nil
}

func loadEncounters(configDir string, out *EncounterCatalog) error {
	path := filepath.Join(configDir, "encounters.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := validateAgainstSchema(configDir, "encounters.schema.json", raw); err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []hunt.EncounterDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("encounters.json: %w", err)
	}
	out.ByID = map[string]hunt.EncounterDef{}
	out.Ordered = make([]string, 0, len(defs))
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("encounters.json: empty id")
		}
		if _, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("encounters.json: duplicate id %s", d.ID)
		}
		if d.TotalCount() <= 0 {
			return fmt.Errorf("encounters.json: %s has no hostiles", d.ID)
		}
		out.ByID[d.ID] = d
		out.Ordered = append(out.Ordered, d.ID)
	}
	return nil
}

func loadHostiles(configDir string, out *HostileCatalog) error {
	path := filepath.Join(configDir, "hostiles.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := validateAgainstSchema(configDir, "hostiles.schema.json", raw); err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []HostileKindDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("hostiles.json: %w", err)
	}
	out.ByID = map[string]HostileKindDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("hostiles.json: empty id")
		}
		out.ByID[d.ID] = d
	}
	return nil
}

// SortedHostileKinds is a deterministic iteration helper for digests/tests.
func (h HostileCatalog) SortedHostileKinds() []string {
	ids := make([]string, 0, len(h.ByID))
	for id := range h.ByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
