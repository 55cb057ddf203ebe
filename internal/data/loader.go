package data

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/rsckernel/internal/model"
)

// ErrInvalidCatalog wraps every catalog validation failure.
var ErrInvalidCatalog = errors.New("invalid catalog")

//go:embed schema/catalog.schema.json
var catalogSchemaJSON []byte

const catalogSchemaURL = "catalog.schema.json"

// catalogDoc is the on-disk shape of one catalog file. Every section is
// optional; files are merged in name order.
type catalogDoc struct {
	Items        []model.ItemDefinition       `yaml:"items"`
	Npcs         []model.NpcDefinition        `yaml:"npcs"`
	DropTables   []dropTableDef               `yaml:"drop_tables"`
	GoldDrops    []goldDropDef                `yaml:"gold_drops"`
	RareTables   []rareTableDef               `yaml:"rare_tables"`
	Objects      []model.GameObjectDefinition `yaml:"objects"`
	Spawns       []spawnDef                   `yaml:"spawns"`
	ObjectSpawns []objectSpawnDef             `yaml:"object_spawns"`
}

type dropEntryDef struct {
	ItemID int32  `yaml:"item_id"`
	Min    int32  `yaml:"min"`
	Max    int32  `yaml:"max"`
	Weight int32  `yaml:"weight"`
	Noted  bool   `yaml:"noted"`
	Kind   string `yaml:"kind"`
}

type dropTableDef struct {
	Name    string         `yaml:"name"`
	Entries []dropEntryDef `yaml:"entries"`
}

type goldDropDef struct {
	NpcID   int32   `yaml:"npc_id"`
	Amounts []int32 `yaml:"amounts"`
}

type rareAccessDef struct {
	Chance       int32 `yaml:"chance"`
	OutOf        int32 `yaml:"out_of"`
	WealthChance int32 `yaml:"wealth_chance"`
}

type rareTableDef struct {
	Name    string         `yaml:"name"`
	Custom  bool           `yaml:"custom"`
	Npcs    []int32        `yaml:"npcs"`
	Access  rareAccessDef  `yaml:"access"`
	Entries []dropEntryDef `yaml:"entries"`
}

type spawnDef struct {
	NpcID  int32       `yaml:"npc_id"`
	X      int32       `yaml:"x"`
	Y      int32       `yaml:"y"`
	Radius int32       `yaml:"radius"`
	Bounds *model.Rect `yaml:"bounds"`
}

type objectSpawnDef struct {
	ObjectID int32 `yaml:"object_id"`
	X        int32 `yaml:"x"`
	Y        int32 `yaml:"y"`
}

// DefaultWanderRadius applies to spawns without radius or bounds.
const DefaultWanderRadius int32 = 8

// compileSchema compiles the embedded catalog schema.
func compileSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(catalogSchemaURL, bytes.NewReader(catalogSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add catalog schema: %w", err)
	}
	s, err := c.Compile(catalogSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}
	return s, nil
}

// LoadDir loads every *.yaml / *.yml file in dir.
func LoadDir(dir string) (*Catalog, error) {
	c, err := Load(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("loading catalog from %s: %w", dir, err)
	}
	return c, nil
}

// Load reads, validates and merges every catalog file at the root of fsys,
// then checks cross references.
func Load(fsys fs.FS) (*Catalog, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading catalog dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		ext := path.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("no catalog files: %w", ErrInvalidCatalog)
	}

	c := newCatalog()
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		doc, err := decodeFile(schema, raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if err := c.merge(doc); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	if err := c.crossCheck(); err != nil {
		return nil, err
	}

	st := c.Stats()
	slog.Info("catalog loaded",
		"files", len(names),
		"items", st.Items,
		"npcs", st.Npcs,
		"dropTables", st.DropTables,
		"rareTables", st.RareTables,
		"objects", st.Objects,
		"spawns", st.Spawns)
	return c, nil
}

// decodeFile validates raw YAML against the schema and decodes it.
// The schema validator works on JSON values, so the YAML tree is
// normalised through encoding/json first.
func decodeFile(schema *jsonschema.Schema, raw []byte) (*catalogDoc, error) {
	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if tree == nil {
		return &catalogDoc{}, nil
	}

	js, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("normalise yaml: %w", err)
	}
	var value any
	if err := json.Unmarshal(js, &value); err != nil {
		return nil, fmt.Errorf("normalise yaml: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	var doc catalogDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &doc, nil
}

func (c *Catalog) merge(doc *catalogDoc) error {
	for i := range doc.Items {
		d := doc.Items[i]
		if _, dup := c.items[d.ID]; dup {
			return fmt.Errorf("duplicate item %d: %w", d.ID, ErrInvalidCatalog)
		}
		c.items[d.ID] = &d
	}
	for i := range doc.Npcs {
		d := doc.Npcs[i]
		if _, dup := c.npcs[d.ID]; dup {
			return fmt.Errorf("duplicate npc %d: %w", d.ID, ErrInvalidCatalog)
		}
		c.npcs[d.ID] = &d
	}
	for _, t := range doc.DropTables {
		if _, dup := c.dropTables[t.Name]; dup {
			return fmt.Errorf("duplicate drop table %q: %w", t.Name, ErrInvalidCatalog)
		}
		entries, err := convertEntries(t.Entries)
		if err != nil {
			return fmt.Errorf("drop table %q: %w", t.Name, err)
		}
		c.dropTables[t.Name] = model.NewDropTable(t.Name, entries)
	}
	for _, g := range doc.GoldDrops {
		if _, dup := c.goldDrops[g.NpcID]; dup {
			return fmt.Errorf("duplicate gold drops for npc %d: %w", g.NpcID, ErrInvalidCatalog)
		}
		c.goldDrops[g.NpcID] = slices.Clone(g.Amounts)
	}
	for _, r := range doc.RareTables {
		entries, err := convertEntries(r.Entries)
		if err != nil {
			return fmt.Errorf("rare table %q: %w", r.Name, err)
		}
		access := model.RareAccess{Chance: r.Access.Chance, OutOf: r.Access.OutOf, WealthChance: r.Access.WealthChance}
		table := model.NewRareTable(r.Name, r.Custom, r.Npcs, access, entries)
		if !r.Custom {
			c.rareTables = append(c.rareTables, table)
			continue
		}
		if len(r.Npcs) == 0 {
			return fmt.Errorf("custom rare table %q lists no npcs: %w", r.Name, ErrInvalidCatalog)
		}
		for _, id := range r.Npcs {
			if _, dup := c.customRare[id]; dup {
				return fmt.Errorf("npc %d has two custom rare tables: %w", id, ErrInvalidCatalog)
			}
			c.customRare[id] = table
		}
		c.customCount++
	}
	for i := range doc.Objects {
		d := doc.Objects[i]
		if _, dup := c.objects[d.ID]; dup {
			return fmt.Errorf("duplicate object %d: %w", d.ID, ErrInvalidCatalog)
		}
		c.objects[d.ID] = &d
	}
	for _, s := range doc.Spawns {
		start := model.Point{X: s.X, Y: s.Y}
		spawn := model.NewNpcSpawn(s.NpcID, start, DefaultWanderRadius)
		switch {
		case s.Bounds != nil:
			spawn.Bounds = model.NewRect(s.Bounds.MinX, s.Bounds.MinY, s.Bounds.MaxX, s.Bounds.MaxY)
		case s.Radius > 0:
			spawn = model.NewNpcSpawn(s.NpcID, start, s.Radius)
		}
		if !spawn.Bounds.Contains(start) {
			return fmt.Errorf("spawn of npc %d at %s outside its bounds: %w", s.NpcID, start, ErrInvalidCatalog)
		}
		c.spawns = append(c.spawns, spawn)
	}
	for _, o := range doc.ObjectSpawns {
		c.objectSpawns = append(c.objectSpawns, ObjectSpawn{ObjectID: o.ObjectID, Location: model.Point{X: o.X, Y: o.Y}})
	}
	return nil
}

func convertEntries(defs []dropEntryDef) ([]model.DropEntry, error) {
	out := make([]model.DropEntry, 0, len(defs))
	for _, d := range defs {
		kind, err := parseDropKind(d.Kind)
		if err != nil {
			return nil, err
		}
		if d.Max < d.Min {
			return nil, fmt.Errorf("item %d: max %d < min %d: %w", d.ItemID, d.Max, d.Min, ErrInvalidCatalog)
		}
		out = append(out, model.DropEntry{
			ItemID: d.ItemID,
			Min:    d.Min,
			Max:    d.Max,
			Weight: d.Weight,
			Noted:  d.Noted,
			Kind:   kind,
		})
	}
	return out, nil
}

func parseDropKind(s string) (model.DropKind, error) {
	switch strings.ToLower(s) {
	case "", "weighted":
		return model.DropWeighted, nil
	case "invariable":
		return model.DropInvariable, nil
	case "custom_rare":
		return model.DropCustomRare, nil
	default:
		return 0, fmt.Errorf("unknown drop kind %q: %w", s, ErrInvalidCatalog)
	}
}

// crossCheck verifies references between sections. All problems are reported.
func (c *Catalog) crossCheck() error {
	var errs []error

	for _, d := range c.npcs {
		if d.DropTable == "" {
			continue
		}
		if _, ok := c.dropTables[d.DropTable]; !ok {
			errs = append(errs, fmt.Errorf("npc %d references unknown drop table %q", d.ID, d.DropTable))
		}
	}
	for name, t := range c.dropTables {
		errs = append(errs, c.checkEntries("drop table "+name, t.Entries())...)
	}
	for _, t := range c.rareTables {
		errs = append(errs, c.checkEntries("rare table "+t.Name(), t.Entries())...)
	}
	for _, t := range c.customRare {
		errs = append(errs, c.checkEntries("rare table "+t.Name(), t.Entries())...)
	}
	for _, s := range c.spawns {
		if _, ok := c.npcs[s.NpcID]; !ok {
			errs = append(errs, fmt.Errorf("spawn references unknown npc %d", s.NpcID))
		}
	}
	for _, o := range c.objectSpawns {
		if _, ok := c.objects[o.ObjectID]; !ok {
			errs = append(errs, fmt.Errorf("object spawn references unknown object %d", o.ObjectID))
		}
	}
	for npcID := range c.goldDrops {
		if _, ok := c.npcs[npcID]; !ok {
			errs = append(errs, fmt.Errorf("gold drops reference unknown npc %d", npcID))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	slices.SortFunc(errs, func(a, b error) int { return strings.Compare(a.Error(), b.Error()) })
	return fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(errs...))
}

func (c *Catalog) checkEntries(owner string, entries []model.DropEntry) []error {
	var errs []error
	for _, e := range entries {
		if e.ItemID == model.ItemNothing {
			continue
		}
		if _, ok := c.items[e.ItemID]; !ok {
			errs = append(errs, fmt.Errorf("%s references unknown item %d", owner, e.ItemID))
		}
	}
	return errs
}
