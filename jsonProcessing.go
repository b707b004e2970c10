package main

import (
	"fmt"
	"path/filepath"
	"strings"

	json "github.com/KevinWang15/go-json5"
	"gopkg.in/yaml.v3"

	"github.com/bob-anderson-ok/holoreconstruct/holo"
)

// parseParameterFile reads json5 (or json) parameter data, or YAML when the
// file extension says so, into a generic table.
func parseParameterFile(path string, data []byte) (map[string]interface{}, error) {
	var table map[string]interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, err
		}
	}
	if table == nil {
		table = map[string]interface{}{}
	}
	return table, nil
}

func getLeafValue(jsonTable map[string]interface{}, path ...string) (interface{}, bool) {
	var cur interface{} = jsonTable
	for _, p := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// asNumber accepts the float64 values json5 produces and the integer values
// YAML produces.
func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// getNumber stores the number found under one of keys (the first present
// wins) into dest. A missing key leaves dest untouched.
func getNumber(jsonTable map[string]interface{}, dest *float64, keys ...string) (string, bool) {
	for _, key := range keys {
		v, ok := getLeafValue(jsonTable, key)
		if !ok {
			continue
		}
		*dest, ok = asNumber(v)
		if !ok {
			return key + ": is not a number", false
		}
		return "", true
	}
	return "", true
}

func getInt(jsonTable map[string]interface{}, dest *int, key string) (string, bool) {
	value := float64(*dest)
	if msg, ok := getNumber(jsonTable, &value, key); !ok {
		return msg, false
	}
	if value != float64(int(value)) {
		return key + ": is not a whole number", false
	}
	*dest = int(value)
	return "", true
}

func getString(jsonTable map[string]interface{}, dest *string, key string) (string, bool) {
	v, ok := getLeafValue(jsonTable, key)
	if !ok {
		return "", true
	}
	*dest, ok = v.(string)
	if !ok {
		return key + ": is not a string", false
	}
	return "", true
}

func getBool(jsonTable map[string]interface{}, dest *bool, key string) (string, bool) {
	v, ok := getLeafValue(jsonTable, key)
	if !ok {
		return "", true
	}
	*dest, ok = v.(bool)
	if !ok {
		return key + ": is not a bool", false
	}
	return "", true
}

func validateParameterTableAndFillRun(jsonTable map[string]interface{}, run *HoloRun) (string, bool) {
	msg := "No problem found in parameter file" // Initialize msg to presumed success.

	*run = defaultHoloRun()

	if m, ok := getBool(jsonTable, &run.ShowInput, "show_input_bool"); !ok {
		return m, false
	}
	if m, ok := getBool(jsonTable, &run.Verbose, "verbose_bool"); !ok {
		return m, false
	}

	filePath, ok := getLeafValue(jsonTable, "path_to_hologram")
	if !ok {
		msg = "path_to_hologram: not found"
		return msg, false
	}
	run.PathToHologram, ok = filePath.(string)
	if !ok {
		msg = "path_to_hologram: is not a string"
		return msg, false
	}

	if m, ok := getString(jsonTable, &run.OutputFolder, "output_folder"); !ok {
		return m, false
	}
	if m, ok := getString(jsonTable, &run.Title, "title"); !ok {
		return m, false
	}

	numbers := []struct {
		dest *float64
		keys []string
	}{
		{&run.WavelengthNm, []string{"wavelength_nm"}},
		{&run.PixelPitchXUm, []string{"pixel_pitch_x_um"}},
		{&run.PixelPitchYUm, []string{"pixel_pitch_y_um"}},
		{&run.PropagationDistanceMm, []string{"propagation_distance_mm", "dmax_mm"}},
		{&run.RecordingDistanceMm, []string{"recording_distance_mm", "z_mm"}},
		{&run.HologramScale, []string{"hologram_scale"}},
		{&run.BackgroundSigmaPx, []string{"background_sigma_px"}},
	}
	for _, n := range numbers {
		if m, ok := getNumber(jsonTable, n.dest, n.keys...); !ok {
			return m, false
		}
	}

	if m, ok := getInt(jsonTable, &run.Iterations, "iterations"); !ok {
		return m, false
	}
	if m, ok := getInt(jsonTable, &run.MaxRefinementSteps, "max_refinement_steps"); !ok {
		return m, false
	}
	if m, ok := getInt(jsonTable, &run.ProfileRow, "profile_row"); !ok {
		return m, false
	}

	phaseUpdate := ""
	if m, ok := getString(jsonTable, &phaseUpdate, "phase_update"); !ok {
		return m, false
	}
	pu, err := holo.ParsePhaseUpdate(phaseUpdate)
	if err != nil {
		msg = fmt.Sprintf("phase_update: %q is not gerchberg_saxton or none", phaseUpdate)
		return msg, false
	}
	run.PhaseUpdate = pu

	if m, ok := getString(jsonTable, &run.WrapPrimitive, "wrap_primitive"); !ok {
		return m, false
	}
	switch run.WrapPrimitive {
	case wrapPrincipal, wrapQualityGuided:
	default:
		msg = fmt.Sprintf("wrap_primitive: %q is not %s or %s", run.WrapPrimitive, wrapPrincipal, wrapQualityGuided)
		return msg, false
	}

	if run.HologramScale <= 0 {
		msg = "hologram_scale: must be positive"
		return msg, false
	}
	if run.BackgroundSigmaPx < 0 {
		msg = "background_sigma_px: must not be negative"
		return msg, false
	}

	return msg, true
}
