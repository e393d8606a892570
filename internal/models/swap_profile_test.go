package models

import "testing"

func TestWantsSection(t *testing.T) {
	p := SwapProfile{LookingFor: []int{5, 7}}

	if !p.WantsSection(5) {
		t.Error("WantsSection(5) = false; want true")
	}
	if p.WantsSection(12) {
		t.Error("WantsSection(12) = true; want false")
	}

	empty := SwapProfile{}
	if empty.WantsSection(1) {
		t.Error("empty wish-list should not want any section")
	}
}

func TestMutuallyCompatible(t *testing.T) {
	tests := []struct {
		name string
		a, b SwapProfile
		want bool
	}{
		{
			name: "both want each other's section",
			a:    SwapProfile{AllotedSection: 12, LookingFor: []int{5, 7}},
			b:    SwapProfile{AllotedSection: 5, LookingFor: []int{12}},
			want: true,
		},
		{
			name: "only one side interested",
			a:    SwapProfile{AllotedSection: 12, LookingFor: []int{5}},
			b:    SwapProfile{AllotedSection: 5, LookingFor: []int{3}},
			want: false,
		},
		{
			name: "neither interested",
			a:    SwapProfile{AllotedSection: 1, LookingFor: []int{2}},
			b:    SwapProfile{AllotedSection: 3, LookingFor: []int{4}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MutuallyCompatible(tt.a, tt.b); got != tt.want {
				t.Errorf("MutuallyCompatible = %v; want %v", got, tt.want)
			}
			// Compatibility is symmetric.
			if got := MutuallyCompatible(tt.b, tt.a); got != tt.want {
				t.Errorf("MutuallyCompatible reversed = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestIsMatched(t *testing.T) {
	var p SwapProfile
	if p.IsMatched() {
		t.Error("fresh profile reports matched")
	}

	remote := uint(42)
	p.RemoteID = &remote
	if !p.IsMatched() {
		t.Error("linked profile reports unmatched")
	}
}
