// Package daily detects changes in the game's rotating daily content and
// publishes the daily announcement to registered guild channels.
//
// A [Job] run fetches the latest settings from the game API, projects them
// onto the closed daily [Field] set, compares them with the last persisted
// snapshot under the rules of [HasChanged] and, when they differ, persists
// the new snapshot and hands it to a [Publisher].
package daily

// Field names one daily info attribute as delivered by the game API.
type Field string

// The closed set of daily info fields.
const (
	CargoItems                   Field = "CargoItems"
	CargoPrices                  Field = "CargoPrices"
	CommonCrewID                 Field = "CommonCrewId"
	DailyRewardArgument          Field = "DailyRewardArgument"
	DailyItemRewards             Field = "DailyItemRewards"
	DailyRewardType              Field = "DailyRewardType"
	HeroCrewID                   Field = "HeroCrewId"
	LimitedCatalogArgument       Field = "LimitedCatalogArgument"
	LimitedCatalogCurrencyAmount Field = "LimitedCatalogCurrencyAmount"
	LimitedCatalogCurrencyType   Field = "LimitedCatalogCurrencyType"
	LimitedCatalogMaxTotal       Field = "LimitedCatalogMaxTotal"
	LimitedCatalogType           Field = "LimitedCatalogType"
	News                         Field = "News"
	SaleArgument                 Field = "SaleArgument"
	SaleItemMask                 Field = "SaleItemMask"
	SaleQuantity                 Field = "SaleQuantity"
	SaleType                     Field = "SaleType"
)

// Fields lists every daily info field.
var Fields = []Field{
	CargoItems,
	CargoPrices,
	CommonCrewID,
	DailyRewardArgument,
	DailyItemRewards,
	DailyRewardType,
	HeroCrewID,
	LimitedCatalogArgument,
	LimitedCatalogCurrencyAmount,
	LimitedCatalogCurrencyType,
	LimitedCatalogMaxTotal,
	LimitedCatalogType,
	News,
	SaleArgument,
	SaleItemMask,
	SaleQuantity,
	SaleType,
}

// RolloverFields are the only fields compared on the first run of a new
// day: the limited catalog and the sale.
var RolloverFields = []Field{
	LimitedCatalogArgument,
	LimitedCatalogCurrencyAmount,
	LimitedCatalogCurrencyType,
	LimitedCatalogMaxTotal,
	LimitedCatalogType,
	SaleArgument,
	SaleItemMask,
	SaleQuantity,
	SaleType,
}

// SettingName returns the settings store key of f.
func SettingName(f Field) string {
	return "daily" + string(f)
}

// Info is a daily info snapshot. A nil value means the field is absent.
type Info map[Field]*string

// Convert projects a raw settings record onto [Fields]. Fields missing from
// raw are present with a nil value; attributes outside the set are dropped.
func Convert(raw map[string]string) Info {
	info := make(Info, len(Fields))
	for _, f := range Fields {
		if v, ok := raw[string(f)]; ok {
			info[f] = &v
		} else {
			info[f] = nil
		}
	}
	return info
}

// Value returns the value of f or "" when absent.
func (i Info) Value(f Field) string {
	if v := i[f]; v != nil {
		return *v
	}
	return ""
}

// Empty reports whether the snapshot holds no fields at all.
func (i Info) Empty() bool {
	return len(i) == 0
}

// Clone returns a copy of i that shares no pointers with it.
func (i Info) Clone() Info {
	out := make(Info, len(i))
	for f, v := range i {
		if v != nil {
			c := *v
			out[f] = &c
		} else {
			out[f] = nil
		}
	}
	return out
}
