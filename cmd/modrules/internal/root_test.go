package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goplus/modrules/descriptor"
	"github.com/goplus/modrules/internal/emit"
	"github.com/goplus/modrules/internal/env"
)

// run executes the root command with args, fresh flag values and the
// embedded catalog.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv(env.CatalogVar, "")
	return execute(t, args...)
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	catalogFile, logLevel, logFormat = "", "error", ""
	resolveKind, resolveFlags, resolveFormat, resolveModuleDir = descriptor.Runtime.String(), nil, emit.FormatJSON, ""
	matrixVersions, matrixKinds, matrixOptions, matrixWorkers = nil, nil, nil, 0

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestParseModuleArg(t *testing.T) {
	tests := []struct {
		name        string
		arg         string
		wantModName string
		wantVersion string
	}{
		{
			name:        "module with version",
			arg:         "ImGui@4.26",
			wantModName: "ImGui",
			wantVersion: "4.26",
		},
		{
			name:        "version only",
			arg:         "5.3.2",
			wantModName: "",
			wantVersion: "5.3.2",
		},
		{
			name:        "empty version",
			arg:         "ImGui@",
			wantModName: "ImGui",
			wantVersion: "",
		},
		{
			name:        "multiple @ symbols",
			arg:         "a@b@4.18",
			wantModName: "a@b",
			wantVersion: "4.18",
		},
		{
			name:        "empty string",
			arg:         "",
			wantModName: "",
			wantVersion: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotModName, gotVersion := parseModuleArg(tt.arg)
			if gotModName != tt.wantModName {
				t.Errorf("parseModuleArg(%q) modName = %q, want %q", tt.arg, gotModName, tt.wantModName)
			}
			if gotVersion != tt.wantVersion {
				t.Errorf("parseModuleArg(%q) version = %q, want %q", tt.arg, gotVersion, tt.wantVersion)
			}
		})
	}
}

func TestResolveCmd(t *testing.T) {
	out, _, err := run(t, "resolve", "ImGui@4.18", "--module-dir", "/p/ImGui")
	require.NoError(t, err)
	assert.Contains(t, out, `"/p/ImGui/Public"`)
	assert.Contains(t, out, `"RUNTIME_LOADER_ENABLED": 1`)
	assert.Contains(t, out, `"WITH_IMGUI_FREETYPE": 0`)
	assert.NotContains(t, out, "UnrealEd")
}

func TestResolveCmd_EnforceIWYU(t *testing.T) {
	out, _, err := run(t, "resolve", "4.26")
	require.NoError(t, err)
	assert.Contains(t, out, `"enforceIWYU": true`)

	out, _, err = run(t, "resolve", "4.26", "-f", "enforceStrictIncludes=false")
	require.NoError(t, err)
	assert.Contains(t, out, `"enforceIWYU": false`)
}

func TestResolveCmd_EditorModuleRules(t *testing.T) {
	out, _, err := run(t, "resolve", "4.26", "-k", "Editor", "-o", "modulerules",
		"-f", "optionalTextShapingEnabled", "-f", "runtimeLoaderEnabled=false")
	require.NoError(t, err)
	assert.Contains(t, out, "public class ImGui : ModuleRules")
	assert.Contains(t, out, `"UnrealEd",`)
	assert.Contains(t, out, `"FreeType2",`)
	assert.Contains(t, out, `PublicDefinitions.Add("RUNTIME_LOADER_ENABLED=0");`)
	assert.Contains(t, out, `PublicDefinitions.Add("WITH_IMGUI_FREETYPE=1");`)
}

func TestResolveCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"other module", []string{"resolve", "Other@4.18"}},
		{"missing version", []string{"resolve", "ImGui@"}},
		{"unsupported version", []string{"resolve", "4.17"}},
		{"unknown kind", []string{"resolve", "4.18", "--kind", "Server"}},
		{"unknown format", []string{"resolve", "4.18", "--format", "toml"}},
		{"missing catalog", []string{"resolve", "4.18", "--catalog", "does-not-exist.hcl"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestResolveCmd_CatalogFromEnv(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "..", "internal", "catalog", "testdata", "partial.yaml"))
	require.NoError(t, err)
	file := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, os.WriteFile(file, data, 0644))

	t.Setenv(env.CatalogVar, file)
	out, _, err := execute(t, "resolve", "Sample@2.5")
	require.NoError(t, err)
	assert.Contains(t, out, `"cppStandard": "Cpp17"`)
}

func TestDetectCmd(t *testing.T) {
	out, _, err := run(t, "detect", "4.26")
	require.NoError(t, err)
	assert.Contains(t, out, "generation: ue4.24 (from 4.24)")
	assert.Contains(t, out, "* imgui-ux [4.24, +inf)")

	_, _, err = run(t, "detect", "4.17")
	assert.ErrorIs(t, err, descriptor.ErrUnsupportedVersion)
}

func TestValidateCmd(t *testing.T) {
	out, _, err := run(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "ImGui: 3 generations, 2 variants")
	assert.Contains(t, out, "imgui-library")

	_, _, err = run(t, "validate", filepath.Join("..", "..", "..", "internal", "catalog", "testdata", "partial.hcl"))
	require.NoError(t, err)
}

func TestMatrixCmd(t *testing.T) {
	out, _, err := run(t, "matrix", "--versions", "4.18,4.24", "--kinds", "Runtime,Editor",
		"--option", "optionalTextShapingEnabled=true,false")
	require.NoError(t, err)
	assert.Contains(t, out, "4.18-Editor|optionalTextShapingEnabled=true")
	assert.Contains(t, out, "imgui-library")
	assert.Contains(t, out, "imgui-ux")

	out, _, err = run(t, "matrix", "--versions", "4.17,4.18")
	assert.ErrorContains(t, err, "1 of 2 targets failed")
	assert.Contains(t, out, "4.17-Runtime")

	_, _, err = run(t, "matrix")
	assert.Error(t, err)
	_, _, err = run(t, "matrix", "--versions", "4.18", "--option", "broken")
	assert.Error(t, err)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))

	f, err := os.CreateTemp(t.TempDir(), "log")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, isTerminal(f))
}
