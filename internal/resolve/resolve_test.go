package resolve

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/goplus/modrules/descriptor"
	"github.com/goplus/modrules/internal/catalog"
	"github.com/goplus/modrules/internal/flags"
	"github.com/goplus/modrules/internal/generation"
	"github.com/goplus/modrules/internal/versioncmp"
)

var unreal = []generation.Boundary{
	{Tag: "ue4.18", Min: "4.18"},
	{Tag: "ue4.24", Min: "4.24"},
	{Tag: "ue5.0", Min: "5.0"},
}

func newCatalog(t testing.TB, base descriptor.Base, variants []catalog.Variant, opts catalog.Options, declared ...flags.Flag) *catalog.Catalog {
	det, err := generation.New("UnrealEngine", versioncmp.GNU, unreal)
	require.NoError(t, err)
	reg, err := flags.WithBuiltins(declared...)
	require.NoError(t, err)
	cat, err := catalog.New(det, base, reg, variants, opts)
	require.NoError(t, err)
	return cat
}

func TestResolve_OldestGenerationRuntime(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	r, err := Resolve(descriptor.HostEnvironment{Version: "4.18", Kind: descriptor.Runtime}, flags.Set{
		"runtimeLoaderEnabled":       flags.Bool(true),
		"optionalTextShapingEnabled": flags.Bool(false),
	}, cat.Base(), cat)
	require.NoError(t, err)

	assert.Equal(t, "ue4.18", r.Generation)
	assert.Equal(t, "imgui-library", r.Variant)
	assert.Equal(t, "{ModuleDir}/Public", r.Paths.Public[0])
	assert.Contains(t, r.Paths.Public, "{ModuleDir}/../ThirdParty/ImGuiLibrary/Include/misc/freetype")
	assert.Contains(t, r.Paths.Private, "ImGui/Private")
	assert.Equal(t, []string{"Core"}, r.Deps.Public)
	assert.Equal(t, []string{"CoreUObject", "Engine", "InputCore", "Slate", "SlateCore", "Projects"}, r.Deps.Private)
	assert.Empty(t, r.Deps.Dynamic)
	assert.Equal(t, descriptor.IntValue(1), r.Definitions["RUNTIME_LOADER_ENABLED"])
	assert.Equal(t, descriptor.IntValue(0), r.Definitions["WITH_IMGUI_FREETYPE"])
	assert.Equal(t, "Public/ImGuiPrivatePCH.h", r.Settings.PrivatePCHHeaderFile)
	assert.Equal(t, "UseExplicitOrSharedPCHs", r.Settings.PCHUsage)
	require.NotNil(t, r.Settings.EnforceIWYU)
	assert.False(t, *r.Settings.EnforceIWYU)
}

func TestResolve_EditorAndTextShaping(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	r, err := Resolve(descriptor.HostEnvironment{Version: "4.26", Kind: descriptor.Editor}, flags.Set{
		"optionalTextShapingEnabled": flags.Bool(true),
		flags.EnforceStrictIncludes:  flags.Bool(true),
	}, cat.Base(), cat)
	require.NoError(t, err)

	assert.Equal(t, "imgui-ux", r.Variant)
	assert.Equal(t, []string{
		"CoreUObject", "Engine", "InputCore", "Slate", "SlateCore", "Projects",
		"FreeType2", "EditorStyle", "Settings", "UnrealEd",
	}, r.Deps.Private)
	assert.Equal(t, descriptor.IntValue(1), r.Definitions["WITH_IMGUI_FREETYPE"])
	assert.Equal(t, "Latest", r.Settings.CppStandard)
	require.NotNil(t, r.Settings.EnforceIWYU)
	assert.True(t, *r.Settings.EnforceIWYU)
	require.NotNil(t, r.Settings.LegacyPublicIncludePaths)
	assert.False(t, *r.Settings.LegacyPublicIncludePaths)
}

func TestResolve_EnforceIWYU(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	tests := []struct {
		version string
		set     flags.Set
		want    bool
	}{
		{"4.18", nil, false},
		{"4.26", nil, true},
		{"4.26", flags.Set{flags.EnforceStrictIncludes: flags.Bool(false)}, false},
		{"4.18", flags.Set{flags.EnforceStrictIncludes: flags.Bool(true)}, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %v", tt.version, tt.set), func(t *testing.T) {
			r, err := Resolve(descriptor.HostEnvironment{Version: tt.version}, tt.set, cat.Base(), cat)
			require.NoError(t, err)
			require.NotNil(t, r.Settings.EnforceIWYU)
			assert.Equal(t, tt.want, *r.Settings.EnforceIWYU)
		})
	}
}

func TestResolve_NoMatchingVariant(t *testing.T) {
	cat := newCatalog(t, descriptor.Base{
		Fragment: descriptor.Fragment{Deps: descriptor.DependencySet{Public: []string{"Core"}}},
	}, []catalog.Variant{
		{ID: "ue4", Range: catalog.Range{Min: "4.18", Max: "5.0"}},
	}, catalog.Options{AllowGaps: true})

	r, err := Resolve(descriptor.HostEnvironment{Version: "5.1", Kind: descriptor.Editor}, nil, cat.Base(), cat)
	assert.Nil(t, r)
	assert.ErrorIs(t, err, descriptor.ErrNoMatchingVariant)
	assert.Contains(t, err.Error(), "ue5.0")
}

func TestResolve_UnsupportedVersion(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	r, err := Resolve(descriptor.HostEnvironment{Version: "4.17.9"}, nil, cat.Base(), cat)
	assert.Nil(t, r)
	assert.ErrorIs(t, err, descriptor.ErrUnsupportedVersion)
}

func TestResolve_MoreRestrictiveVisibilityWins(t *testing.T) {
	cat := newCatalog(t, descriptor.Base{
		Fragment: descriptor.Fragment{Deps: descriptor.DependencySet{
			Public:  []string{"Core", "M", "N"},
			Dynamic: []string{"D"},
		}},
	}, []catalog.Variant{{
		ID: "all",
		Fragment: descriptor.Fragment{Deps: descriptor.DependencySet{
			Private: []string{"M", "D"},
			Dynamic: []string{"N"},
		}},
	}}, catalog.Options{})

	r, err := Resolve(descriptor.HostEnvironment{Version: "4.20"}, nil, cat.Base(), cat)
	require.NoError(t, err)
	assert.Equal(t, []string{"Core"}, r.Deps.Public)
	assert.Equal(t, []string{"M", "D"}, r.Deps.Private)
	assert.Equal(t, []string{"N"}, r.Deps.Dynamic)
	require.NoError(t, r.Deps.Validate())
}

func TestResolve_FlagDefinitionsTakePrecedence(t *testing.T) {
	cat := newCatalog(t, descriptor.Base{
		Fragment: descriptor.Fragment{Definitions: descriptor.DefinitionSet{
			"FEATURE_X": descriptor.IntValue(0),
			"IMGUI_API": descriptor.StringValue("DLLIMPORT"),
		}},
	}, []catalog.Variant{{
		ID: "all",
		Fragment: descriptor.Fragment{Definitions: descriptor.DefinitionSet{
			"FEATURE_X": descriptor.IntValue(0),
			"IMGUI_API": descriptor.StringValue("DLLEXPORT"),
		}},
	}}, catalog.Options{}, flags.Flag{Name: "featureX", Kind: flags.KindBool, Default: flags.Bool(false)})

	r, err := Resolve(descriptor.HostEnvironment{Version: "5.2"}, flags.Set{"featureX": flags.Bool(true)}, cat.Base(), cat)
	require.NoError(t, err)
	assert.Equal(t, descriptor.IntValue(1), r.Definitions["FEATURE_X"])
	assert.Equal(t, descriptor.StringValue("DLLEXPORT"), r.Definitions["IMGUI_API"])

	r, err = Resolve(descriptor.HostEnvironment{Version: "5.2"}, nil, cat.Base(), cat)
	require.NoError(t, err)
	assert.Equal(t, descriptor.IntValue(0), r.Definitions["FEATURE_X"])
}

func TestResolve_DuplicatePath(t *testing.T) {
	cat := newCatalog(t, descriptor.Base{
		Fragment: descriptor.Fragment{Paths: descriptor.PathSet{Public: []string{"Public"}}},
	}, []catalog.Variant{{
		ID:       "all",
		Fragment: descriptor.Fragment{Paths: descriptor.PathSet{Public: []string{"Shared", "Public/"}}},
	}}, catalog.Options{})

	r, err := Resolve(descriptor.HostEnvironment{Version: "4.24"}, nil, cat.Base(), cat)
	assert.Nil(t, r)
	require.ErrorIs(t, err, descriptor.ErrDuplicatePath)

	var de *descriptor.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "Public/", de.Entry)
	assert.Equal(t, "ue4.24", de.Generation)
	assert.Equal(t, "all", de.Variant)
	assert.Equal(t, "introduced by variant all", de.Detail)
}

func TestResolve_InvalidFlag(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	_, err = Resolve(descriptor.HostEnvironment{Version: "4.24"}, flags.Set{
		"runtimeLoaderEnabled": flags.Enum("later"),
	}, cat.Base(), cat)
	assert.ErrorIs(t, err, descriptor.ErrInvalidFlag)

	_, err = Resolve(descriptor.HostEnvironment{Version: "4.24"}, flags.Set{
		"notAFlag": flags.Enum("whatever"),
	}, cat.Base(), cat)
	assert.NoError(t, err)
}

func TestResolve_PathOrder(t *testing.T) {
	cat := newCatalog(t, descriptor.Base{
		Fragment: descriptor.Fragment{Paths: descriptor.PathSet{
			Public:  []string{"b", "a"},
			Private: []string{"a"},
		}},
	}, []catalog.Variant{{
		ID: "all",
		Fragment: descriptor.Fragment{Paths: descriptor.PathSet{
			Public:  []string{"d", "c"},
			Private: []string{"b"},
		}},
	}}, catalog.Options{})

	r, err := Resolve(descriptor.HostEnvironment{Version: "4.18"}, nil, cat.Base(), cat)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "d", "c"}, r.Paths.Public)
	assert.Equal(t, []string{"a", "b"}, r.Paths.Private)
}

func TestResolve_ForwardCompatible(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	rapid.Check(t, func(t *rapid.T) {
		major := rapid.IntRange(5, 99).Draw(t, "major")
		minor := rapid.IntRange(0, 40).Draw(t, "minor")
		version := rapid.SampledFrom([]string{"%d.%d", "%d.%d.1"}).Draw(t, "format")
		host := descriptor.HostEnvironment{Version: fmt.Sprintf(version, major, minor)}

		r, err := Resolve(host, nil, cat.Base(), cat)
		if err != nil {
			t.Fatalf("Resolve(%s): %v", host.Version, err)
		}
		if r.Generation != "ue5.0" {
			t.Fatalf("Resolve(%s) generation = %s, want ue5.0", host.Version, r.Generation)
		}
	})
}

func TestResolve_Deterministic(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	rapid.Check(t, func(t *rapid.T) {
		host := descriptor.HostEnvironment{
			Version: rapid.SampledFrom([]string{"4.18", "4.22", "4.24", "4.27.2", "5.0", "5.4"}).Draw(t, "version"),
			Kind:    rapid.SampledFrom([]descriptor.BuildKind{descriptor.Runtime, descriptor.Editor, descriptor.Program}).Draw(t, "kind"),
		}
		set := flags.Set{}
		for _, name := range []string{"runtimeLoaderEnabled", "optionalTextShapingEnabled", flags.EnforceStrictIncludes} {
			if rapid.Bool().Draw(t, name+" set") {
				set[name] = flags.Bool(rapid.Bool().Draw(t, name))
			}
		}

		a, err := Resolve(host, set, cat.Base(), cat)
		if err != nil {
			t.Fatal(err)
		}
		b, err := Resolve(host, set, cat.Base(), cat)
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, a, b)
		if err := a.Deps.Validate(); err != nil {
			t.Fatalf("resolved dependencies are inconsistent: %v", err)
		}
		if err := a.Paths.Validate(); err != nil {
			t.Fatalf("resolved paths are inconsistent: %v", err)
		}
	})
}

func TestResolver_Logs(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := New(cat, WithLogger(logger))
	assert.Same(t, cat, r.Catalog())

	_, err = r.Resolve(descriptor.HostEnvironment{Version: "4.25"}, flags.Set{"shinyNewThing": flags.Bool(true)})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "flag=shinyNewThing")
	assert.Contains(t, buf.String(), "variant=imgui-ux")

	buf.Reset()
	_, err = r.Resolve(descriptor.HostEnvironment{Version: "3.0"}, nil)
	assert.ErrorIs(t, err, descriptor.ErrUnsupportedVersion)
	assert.Contains(t, buf.String(), "level=ERROR")
}
