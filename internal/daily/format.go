package daily

import (
	"fmt"
	"strings"

	"github.com/MrWong99/starbridge/internal/designs"
)

// Title heads every daily announcement.
const Title = "Daily info"

type section struct {
	name  string
	lines func(Info) []string
}

var sections = []section{
	{"Shop", shopLines},
	{"Sale", saleLines},
	{"Limited catalog", catalogLines},
	{"Rewards", rewardLines},
}

func shopLines(i Info) []string {
	var lines []string
	if v := i.Value(HeroCrewID); v != "" {
		lines = append(lines, "Hero crew: "+v)
	}
	if v := i.Value(CommonCrewID); v != "" {
		lines = append(lines, "Common crew: "+v)
	}
	if v := i.Value(CargoItems); v != "" {
		lines = append(lines, "Cargo: "+list(v))
	}
	if v := i.Value(CargoPrices); v != "" {
		lines = append(lines, "Cargo prices: "+list(v))
	}
	return lines
}

func saleLines(i Info) []string {
	arg := i.Value(SaleArgument)
	if arg == "" {
		return nil
	}
	line := fmt.Sprintf("%s %s", orUnknown(i.Value(SaleType)), arg)
	if q := i.Value(SaleQuantity); q != "" {
		line = q + "x " + line
	}
	lines := []string{line}
	if m := i.Value(SaleItemMask); m != "" {
		lines = append(lines, "Item mask: "+m)
	}
	return lines
}

func catalogLines(i Info) []string {
	arg := i.Value(LimitedCatalogArgument)
	if arg == "" {
		return nil
	}
	line := fmt.Sprintf("%s %s", orUnknown(i.Value(LimitedCatalogType)), arg)
	if amount := i.Value(LimitedCatalogCurrencyAmount); amount != "" {
		line += fmt.Sprintf(" for %s %s", amount, i.Value(LimitedCatalogCurrencyType))
		line = strings.TrimRight(line, " ")
	}
	if maxTotal := i.Value(LimitedCatalogMaxTotal); maxTotal != "" {
		line += fmt.Sprintf(" (%s available)", maxTotal)
	}
	return []string{line}
}

func rewardLines(i Info) []string {
	var lines []string
	if arg := i.Value(DailyRewardArgument); arg != "" {
		lines = append(lines, strings.TrimRight(arg+" "+i.Value(DailyRewardType), " "))
	}
	if v := i.Value(DailyItemRewards); v != "" {
		lines = append(lines, "Items: "+list(v))
	}
	return lines
}

// list turns the API's pipe-separated lists into readable text.
func list(v string) string {
	return strings.ReplaceAll(v, "|", ", ")
}

func orUnknown(v string) string {
	if v == "" {
		return "Unknown"
	}
	return v
}

// Format renders info as plain-text lines: a bold title, one bold header
// per non-empty section followed by its lines, and the news last. Absent
// fields are left out.
func Format(info Info) []string {
	lines := []string{"**" + Title + "**"}
	for _, s := range sections {
		body := s.lines(info)
		if len(body) == 0 {
			continue
		}
		lines = append(lines, "**"+s.name+"**")
		lines = append(lines, body...)
	}
	if news := info.Value(News); news != "" {
		lines = append(lines, "**News**", news)
	}
	return lines
}

// Embed renders info as an embed: the news becomes the description and
// every non-empty section one labeled field.
func Embed(info Info) designs.Embed {
	e := designs.Embed{
		Title:       Title,
		Description: info.Value(News),
	}
	for _, s := range sections {
		body := s.lines(info)
		if len(body) == 0 {
			continue
		}
		e.Fields = append(e.Fields, designs.Field{
			Name:    s.name,
			Value:   strings.Join(body, "\n"),
			Labeled: true,
		})
	}
	return e
}
