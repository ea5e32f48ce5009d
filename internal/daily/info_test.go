package daily_test

import (
	"testing"

	"github.com/MrWong99/starbridge/internal/daily"
)

func TestConvert(t *testing.T) {
	t.Parallel()

	raw := map[string]string{
		"SaleArgument": "344",
		"News":         "",
		"UnrelatedKey": "x",
	}
	info := daily.Convert(raw)

	if len(info) != len(daily.Fields) {
		t.Fatalf("len(info) = %d, want %d", len(info), len(daily.Fields))
	}
	if got := info.Value(daily.SaleArgument); got != "344" {
		t.Errorf("SaleArgument = %q, want %q", got, "344")
	}
	if v, ok := info[daily.News]; !ok || v == nil || *v != "" {
		t.Errorf("News = %v, want present empty string", v)
	}
	if v, ok := info[daily.CargoItems]; !ok || v != nil {
		t.Errorf("CargoItems = %v (present %v), want present nil", v, ok)
	}
	if _, ok := info[daily.Field("UnrelatedKey")]; ok {
		t.Error("UnrelatedKey was kept, want dropped")
	}
}

func TestRolloverFieldsSubset(t *testing.T) {
	t.Parallel()

	all := make(map[daily.Field]bool, len(daily.Fields))
	for _, f := range daily.Fields {
		all[f] = true
	}
	for _, f := range daily.RolloverFields {
		if !all[f] {
			t.Errorf("rollover field %q not in Fields", f)
		}
	}
	if len(daily.RolloverFields) != 9 {
		t.Errorf("len(RolloverFields) = %d, want 9", len(daily.RolloverFields))
	}
}

func TestSettingName(t *testing.T) {
	t.Parallel()

	if got := daily.SettingName(daily.CommonCrewID); got != "dailyCommonCrewId" {
		t.Errorf("SettingName() = %q, want %q", got, "dailyCommonCrewId")
	}
}

func TestInfoClone(t *testing.T) {
	t.Parallel()

	orig := sampleInfo()
	c := orig.Clone()
	*c[daily.News] = "changed"
	if orig.Value(daily.News) != "Welcome back" {
		t.Error("mutating the clone changed the original")
	}
}
