package datapoint

import "fmt"

// pointNames gives the representative data points a stable lower-snake name
// for use by config files and CLI flags, independent of Go identifier names.
var pointNames = map[string]PointID{
	"wind_speed":             WindSpeed,
	"rotor_rpm":              RotorRPM,
	"generator_rpm":          GeneratorRPM,
	"grid_voltage_l1":        GridVoltageL1,
	"grid_voltage_l2":        GridVoltageL2,
	"grid_voltage_l3":        GridVoltageL3,
	"grid_current_l1":        GridCurrentL1,
	"grid_current_l2":        GridCurrentL2,
	"grid_current_l3":        GridCurrentL3,
	"grid_power":             GridPower,
	"grid_var":               GridVAR,
	"grid_voltage":           GridVoltage,
	"grid_current":           GridCurrent,
	"system_production":      SystemProduction,
	"generator1_production":  Generator1Prod,
	"controller_time":        ControllerTime,
	"current_status_code":    CurrentStatusCode,
	"event_stack_status":     EventStackStatus,
	"remote_display":         RemoteDisplay,
	"serial_number":          SerialNumberPoint,
}

// LookupPoint resolves a name (as used in pointNames) to its PointID.
func LookupPoint(name string) (PointID, error) {
	p, ok := pointNames[name]
	if !ok {
		return 0, fmt.Errorf("datapoint: unknown point name %q", name)
	}
	return p, nil
}

// PointNames returns every known point name, for CLI help text.
func PointNames() []string {
	out := make([]string, 0, len(pointNames))
	for name := range pointNames {
		out = append(out, name)
	}
	return out
}

// averagingNames mirrors Averaging.String but accepts the inverse lookup.
var averagingNames = map[string]Averaging{
	"current": Current,
	"20ms":    Ms20,
	"100ms":   Ms100,
	"1s":      S1,
	"30s":     S30,
	"1min":    Min1,
	"10min":   Min10,
	"30min":   Min30,
	"1hr":     Hr1,
	"24hr":    Hr24,
}

// LookupAveraging resolves a name (as produced by Averaging.String) to its
// Averaging value.
func LookupAveraging(name string) (Averaging, error) {
	a, ok := averagingNames[name]
	if !ok {
		return 0, fmt.Errorf("datapoint: unknown averaging %q", name)
	}
	return a, nil
}
