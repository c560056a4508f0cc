package descriptor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathSet_Merge(t *testing.T) {
	base := PathSet{
		Public:  []string{"{ModuleDir}/Public"},
		Private: []string{"{ModuleDir}/Private"},
	}
	variant := PathSet{
		Public:  []string{"{ModuleDir}/ThirdParty/ImGui"},
		Private: []string{"{ModuleDir}/ThirdParty/ImGui"},
	}

	got, err := base.Merge(variant)
	require.NoError(t, err)
	assert.Equal(t, []string{"{ModuleDir}/Public", "{ModuleDir}/ThirdParty/ImGui"}, got.Public)
	assert.Equal(t, []string{"{ModuleDir}/Private", "{ModuleDir}/ThirdParty/ImGui"}, got.Private)
	assert.Equal(t, []string{"{ModuleDir}/Public"}, base.Public, "Merge must not modify its receiver")
}

func TestPathSet_MergeDuplicate(t *testing.T) {
	base := PathSet{Public: []string{"Public", "ThirdParty/ImGui"}}

	_, err := base.Merge(PathSet{Public: []string{"ThirdParty/ImGui/"}})
	require.ErrorIs(t, err, ErrDuplicatePath)

	var de *Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "ThirdParty/ImGui/", de.Entry)
}

func TestPathSet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		paths   PathSet
		wantErr error
	}{
		{"empty", PathSet{}, nil},
		{"same dir public and private", PathSet{Public: []string{"A"}, Private: []string{"A"}}, nil},
		{"duplicate public", PathSet{Public: []string{"A", "B", "./A"}}, ErrDuplicatePath},
		{"duplicate private", PathSet{Private: []string{"A/B", "A/C/../B"}}, ErrDuplicatePath},
		{"empty entry", PathSet{Public: []string{""}}, ErrInvalidCatalog},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.paths.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDependencySet_MergeRestrictiveWins(t *testing.T) {
	tests := []struct {
		name  string
		base  DependencySet
		other DependencySet
		want  DependencySet
	}{
		{
			name:  "public then private",
			base:  DependencySet{Public: []string{"Core", "M"}},
			other: DependencySet{Private: []string{"M"}},
			want:  DependencySet{Public: []string{"Core"}, Private: []string{"M"}},
		},
		{
			name:  "private then public",
			base:  DependencySet{Private: []string{"M"}},
			other: DependencySet{Public: []string{"M"}},
			want:  DependencySet{Private: []string{"M"}},
		},
		{
			name:  "dynamic beats public",
			base:  DependencySet{Public: []string{"M"}},
			other: DependencySet{Dynamic: []string{"M"}},
			want:  DependencySet{Dynamic: []string{"M"}},
		},
		{
			name:  "private beats dynamic",
			base:  DependencySet{Dynamic: []string{"M"}},
			other: DependencySet{Private: []string{"M"}},
			want:  DependencySet{Private: []string{"M"}},
		},
		{
			name:  "union keeps order",
			base:  DependencySet{Private: []string{"Engine", "Slate"}},
			other: DependencySet{Private: []string{"Slate", "InputCore"}},
			want:  DependencySet{Private: []string{"Engine", "Slate", "InputCore"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.base.Merge(tt.other)
			assert.ElementsMatch(t, tt.want.Public, got.Public)
			assert.Equal(t, tt.want.Private, nilIfEmpty(got.Private))
			assert.Equal(t, tt.want.Dynamic, nilIfEmpty(got.Dynamic))
			assert.NoError(t, got.Validate())
		})
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestDependencySet_Validate(t *testing.T) {
	err := DependencySet{
		Public:  []string{"Core", "Projects"},
		Private: []string{"Engine", "Projects"},
	}.Validate()
	require.ErrorIs(t, err, ErrConflictingVisibility)
	assert.Contains(t, err.Error(), `"Projects"`)

	assert.NoError(t, DependencySet{Private: []string{"Engine", "Engine"}}.Validate())
	assert.ErrorIs(t, DependencySet{Dynamic: []string{""}}.Validate(), ErrInvalidCatalog)
}

func TestDefinitionSet_Override(t *testing.T) {
	base := DefinitionSet{"FEATURE_X": IntValue(0), "NAME": StringValue("imgui")}
	got := base.Override(DefinitionSet{"FEATURE_X": BoolValue(true)})

	assert.Equal(t, IntValue(1), got["FEATURE_X"])
	assert.Equal(t, IntValue(0), base["FEATURE_X"])
	assert.Equal(t, []string{"FEATURE_X=1", "NAME=imgui"}, got.Pairs())
}

func TestSettings_Override(t *testing.T) {
	base := Settings{PCHUsage: "UseExplicitOrSharedPCHs", EnforceIWYU: Bool(false)}
	got := base.Override(Settings{EnforceIWYU: Bool(true), CppStandard: "Latest"})

	assert.Equal(t, "UseExplicitOrSharedPCHs", got.PCHUsage)
	assert.Equal(t, "Latest", got.CppStandard)
	require.NotNil(t, got.EnforceIWYU)
	assert.True(t, *got.EnforceIWYU)
	assert.False(t, *base.EnforceIWYU)
	assert.True(t, Settings{}.IsZero())
	assert.False(t, got.IsZero())
}

func TestSettings_SetBool(t *testing.T) {
	var s Settings
	require.NoError(t, s.SetBool("enforce_iwyu", true))
	require.NotNil(t, s.EnforceIWYU)
	assert.True(t, *s.EnforceIWYU)
	assert.Error(t, s.SetBool("bogus", true))
}
