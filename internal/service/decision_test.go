package service

import (
	"testing"

	"homemanager-allocation/internal/domain"
)

func TestClassify_Table(t *testing.T) {
	// 四分法全覆盖：每对 (previous, selected) 输入恰好落入一种迁移
	cases := []struct {
		name     string
		previous string
		sel      domain.UnitSelection
		want     domain.TransitionKind
		wantFrom string
		wantTo   string
	}{
		{"no unit, cleared", "", domain.UnitCleared(), domain.TransitionNone, "", ""},
		{"no unit, selected", "", domain.UnitSetTo("U7"), domain.TransitionNewAllocation, "", "U7"},
		{"has unit, cleared", "U1", domain.UnitCleared(), domain.TransitionDeallocation, "U1", ""},
		{"same unit reselected", "U1", domain.UnitSetTo("U1"), domain.TransitionReallocation, "", "U1"},
		{"different unit", "U1", domain.UnitSetTo("U2"), domain.TransitionTransfer, "U1", "U2"},
	}

	for _, tc := range cases {
		got := Classify(tc.previous, tc.sel)
		if got.Kind != tc.want {
			t.Errorf("%s: expected kind %v, got %v", tc.name, tc.want, got.Kind)
		}
		if got.FromUnitID != tc.wantFrom {
			t.Errorf("%s: expected from %q, got %q", tc.name, tc.wantFrom, got.FromUnitID)
		}
		if got.ToUnitID != tc.wantTo {
			t.Errorf("%s: expected to %q, got %q", tc.name, tc.wantTo, got.ToUnitID)
		}
	}
}

func TestClassify_UnchangedAlwaysNone(t *testing.T) {
	// 选择器未触碰时一律 None，与当前单元状态无关
	for _, previous := range []string{"", "U1", "U99"} {
		got := Classify(previous, domain.UnitUnchanged())
		if got.Kind != domain.TransitionNone {
			t.Errorf("previous=%q: expected TransitionNone, got %v", previous, got.Kind)
		}
	}
}

func TestClassify_Totality(t *testing.T) {
	// unitChanged=true 时任何输入对都必须被分类（不存在未覆盖的组合）
	ids := []string{"", "U1", "U2"}
	for _, previous := range ids {
		for _, selected := range ids {
			var sel domain.UnitSelection
			if selected == "" {
				sel = domain.UnitCleared()
			} else {
				sel = domain.UnitSetTo(selected)
			}
			got := Classify(previous, sel)

			switch {
			case selected == "" && previous == "":
				if got.Kind != domain.TransitionNone {
					t.Errorf("(%q,%q): expected None, got %v", previous, selected, got.Kind)
				}
			case selected == "":
				if got.Kind != domain.TransitionDeallocation {
					t.Errorf("(%q,%q): expected Deallocation, got %v", previous, selected, got.Kind)
				}
			case previous == "":
				if got.Kind != domain.TransitionNewAllocation {
					t.Errorf("(%q,%q): expected NewAllocation, got %v", previous, selected, got.Kind)
				}
			case selected == previous:
				if got.Kind != domain.TransitionReallocation {
					t.Errorf("(%q,%q): expected Reallocation, got %v", previous, selected, got.Kind)
				}
			default:
				if got.Kind != domain.TransitionTransfer {
					t.Errorf("(%q,%q): expected Transfer, got %v", previous, selected, got.Kind)
				}
			}
		}
	}
}
