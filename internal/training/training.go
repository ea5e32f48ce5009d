// Package training declares the training entity kind: how training designs
// are fetched, ordered and rendered. Rendering joins each training with the
// research it requires through a second [designs.Retriever].
package training

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MrWong99/starbridge/internal/designs"
)

// Data source paths and attribute names.
const (
	Path      = "TrainingService/ListAllTrainingDesigns2"
	IDField   = "TrainingDesignId"
	NameField = "TrainingName"

	ResearchPath      = "ResearchService/ListAllResearchDesigns2"
	ResearchIDField   = "ResearchDesignId"
	ResearchNameField = "ResearchName"
)

const noParent = "0"

// stat is one trainable attribute and its display label.
type stat struct {
	field string
	label string
}

// stats are listed in display order; ties keep this order.
var stats = []stat{
	{"Hp", "HP"},
	{"Attack", "ATK"},
	{"Pilot", "PLT"},
	{"Repair", "RPR"},
	{"Weapon", "WPN"},
	{"Science", "SCI"},
	{"Engine", "ENG"},
	{"Stamina", "STA"},
	{"Ability", "ABL"},
}

var xpStat = stat{"Xp", "XP"}

// rooms maps a training rank to the room hosting it.
var rooms = map[int]string{
	1: "Gym",
	2: "Academy",
}

// Kind returns the rendering declaration for trainings. research resolves
// required research ids to names and may be nil.
func Kind(research *designs.Table) designs.Kind {
	results := designs.NewProperty(designs.ConstLabel("Results"), chancesValue, true)
	long := []designs.Property{
		designs.NewProperty(designs.ConstLabel("Duration"), durationValue, true),
		designs.NewProperty(designs.ConstLabel("Cost"), costValue, true),
		designs.NewProperty(designs.ConstLabel("Fatigue"), fatigueValue, true),
		designs.NewProperty(designs.ConstLabel("Training room"), roomValue, true),
		designs.NewProperty(designs.ConstLabel("Research required"), researchValue(research), true),
		results,
	}
	return designs.Kind{
		Title:       designs.NewProperty(designs.ConstLabel("Name"), designs.Attr(NameField), false),
		Description: designs.NewProperty(designs.ConstLabel("Description"), designs.Attr("TrainingDescription"), false),
		Long:        long,
		Short:       []designs.Property{designs.NewProperty(designs.ConstLabel("Results"), chancesValue, false)},
		Embed:       long,
	}
}

func durationValue(rec designs.Record, _ *designs.Table) (string, bool) {
	seconds, err := rec.Int("Duration")
	if err != nil {
		return "", false
	}
	if seconds <= 0 {
		return "Instant", true
	}
	return formatDuration(time.Duration(seconds) * time.Second), true
}

func costValue(rec designs.Record, _ *designs.Table) (string, bool) {
	cost := rec.IntOr("MineralCost", 0)
	if cost <= 0 {
		return "", false
	}
	return compact(cost) + " minerals", true
}

func fatigueValue(rec designs.Record, _ *designs.Table) (string, bool) {
	fatigue := rec.IntOr("Fatigue", 0)
	if fatigue <= 0 {
		return "", false
	}
	return strconv.Itoa(fatigue) + "h", true
}

func roomValue(rec designs.Record, _ *designs.Table) (string, bool) {
	room, ok := rooms[rec.IntOr("Rank", 0)]
	if !ok {
		return "", false
	}
	if lvl, ok := rec.Get("RequiredRoomLevel"); ok && lvl != "" {
		room += " lvl " + lvl
	}
	return room, true
}

func researchValue(research *designs.Table) designs.ValueFunc {
	return func(rec designs.Record, _ *designs.Table) (string, bool) {
		id, ok := rec.Get("RequiredResearchDesignId")
		if !ok || id == "" || id == noParent {
			return "", false
		}
		name, ok := research.Name(id)
		if !ok || name == "" {
			return "", false
		}
		return name, true
	}
}

// chancesValue lists the stat chances, the highest ones first and the rest
// in display order, followed by the guaranteed XP.
func chancesValue(rec designs.Record, _ *designs.Table) (string, bool) {
	type chance struct {
		label string
		value int
	}
	var chances []chance
	best := 0
	for _, s := range stats {
		v := rec.IntOr(s.field+"Chance", 0)
		if v <= 0 {
			continue
		}
		chances = append(chances, chance{s.label, v})
		best = max(best, v)
	}

	parts := make([]string, 0, len(chances)+1)
	for _, c := range chances {
		if c.value == best {
			parts = append(parts, fmt.Sprintf("%s ≤%d%%", c.label, c.value))
		}
	}
	for _, c := range chances {
		if c.value != best {
			parts = append(parts, fmt.Sprintf("%s ≤%d%%", c.label, c.value))
		}
	}
	if xp := rec.IntOr(xpStat.field+"Chance", 0); xp > 0 {
		parts = append(parts, fmt.Sprintf("%s %d", xpStat.label, xp))
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

// SortKey orders trainings by their prerequisite chain: the zero-padded ids
// of all ancestors from the root down, then the training's own id. A parent
// missing from the table or already visited ends the chain.
func SortKey(rec designs.Record, table *designs.Table) string {
	chain := []string{pad(rec.String(IDField))}
	visited := map[string]bool{rec.String(IDField): true}
	cur := rec
	for {
		parentID := cur.String("RequiredTrainingDesignId")
		if parentID == "" || parentID == noParent || visited[parentID] {
			break
		}
		parent, ok := table.Get(parentID)
		if !ok {
			break
		}
		visited[parentID] = true
		chain = append(chain, pad(parentID))
		cur = parent
	}

	var b strings.Builder
	for i := len(chain) - 1; i >= 0; i-- {
		b.WriteString(chain[i])
	}
	return b.String()
}

func pad(id string) string {
	if len(id) >= 4 {
		return id
	}
	return strings.Repeat("0", 4-len(id)) + id
}

// formatDuration renders d as "1d 2h 3m 4s", leaving out zero units.
func formatDuration(d time.Duration) string {
	units := []struct {
		size   time.Duration
		suffix string
	}{
		{24 * time.Hour, "d"},
		{time.Hour, "h"},
		{time.Minute, "m"},
		{time.Second, "s"},
	}
	var parts []string
	for _, u := range units {
		if n := d / u.size; n > 0 {
			parts = append(parts, strconv.Itoa(int(n))+u.suffix)
			d -= n * u.size
		}
	}
	return strings.Join(parts, " ")
}

// compact renders n with a k/m suffix and at most one decimal.
func compact(n int) string {
	switch {
	case n >= 1_000_000:
		return trimDecimal(float64(n)/1_000_000) + "m"
	case n >= 1_000:
		return trimDecimal(float64(n)/1_000) + "k"
	default:
		return strconv.Itoa(n)
	}
}

func trimDecimal(f float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(f, 'f', 1, 64), ".0")
}
